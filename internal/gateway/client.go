// Package gateway talks to the marketplace REST backend.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/middleware/requestid"
)

const maxErrorBody = 64 << 10

// Observer receives upstream call timings.
type Observer interface {
	ObserveUpstream(upstream, operation string, status int, duration time.Duration)
}

// Config configures the backend client.
type Config struct {
	BaseURL      string
	ServiceToken string
	Timeout      time.Duration
	EnquiryPath  string
	HTTPClient   *http.Client
	Observer     Observer
	Logger       *zap.Logger
}

// Client is a JSON client for the backend REST API.
type Client struct {
	baseURL      string
	serviceToken string
	enquiryPath  string
	http         *http.Client
	observer     Observer
	logger       *zap.Logger
}

// StatusError carries the raw upstream answer behind a normalised error.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: unexpected status %d", e.StatusCode)
}

// New constructs a Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.EnquiryPath == "" {
		cfg.EnquiryPath = "/api/enquiry/"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		enquiryPath:  cfg.EnquiryPath,
		http:         cfg.HTTPClient,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
	}
}

type call struct {
	operation string
	method    string
	path      string
	query     url.Values
	token     string
	body      interface{}
}

// do executes the call and decodes a 2xx body into dest when dest is non-nil.
func (c *Client) do(ctx context.Context, in call, dest interface{}) error {
	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("backend: encode %s body: %w", in.operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return fmt.Errorf("backend: build %s request: %w", in.operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := in.token
	if token == "" {
		token = c.serviceToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(in.operation, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.logger.Warn("backend request failed", zap.String("operation", in.operation), zap.String("path", in.path), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()
	c.observe(in.operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("backend returned error", zap.String("operation", in.operation), zap.Int("status", resp.StatusCode))
		return normalise(resp.StatusCode, raw)
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return appErrors.Wrap(fmt.Errorf("decode %s response: %w", in.operation, err), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	return nil
}

func (c *Client) observe(operation string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream("backend", operation, status, d)
	}
}

// normalise maps an upstream failure onto the local error taxonomy. The
// message prefers "detail", then "non_field_errors", then the first field key.
func normalise(status int, raw []byte) error {
	message, fields := parseErrorBody(raw)

	var base *appErrors.Error
	switch {
	case status == http.StatusBadRequest:
		base = appErrors.ErrValidation
	case status == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case status == http.StatusConflict:
		base = appErrors.ErrConflict
	default:
		base = appErrors.ErrUpstream
	}

	out := appErrors.WithFields(base, message, fields)
	if len(out.Fields) == 0 {
		out.Fields = nil
	}
	out.Err = &StatusError{StatusCode: status, Body: raw}
	return out
}

func parseErrorBody(raw []byte) (string, map[string]string) {
	var body map[string]interface{}
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &body) != nil {
		return "", nil
	}

	fields := make(map[string]string)
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var message, nonField, firstField string
	for _, key := range keys {
		text := firstMessage(body[key])
		if text == "" {
			continue
		}
		switch key {
		case "detail", "message", "error":
			if message == "" {
				message = text
			}
		case "non_field_errors":
			nonField = text
		default:
			fields[key] = text
			if firstField == "" {
				firstField = text
			}
		}
	}

	switch {
	case message != "":
	case nonField != "":
		message = nonField
	default:
		message = firstField
	}
	return message, fields
}

func firstMessage(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []interface{}:
		for _, item := range val {
			if text := firstMessage(item); text != "" {
				return text
			}
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if text := firstMessage(val[k]); text != "" {
				return text
			}
		}
	}
	return ""
}

// listEnvelope accepts both bare arrays and paginated {count, results} bodies.
type listEnvelope[T any] struct {
	Count   int
	Results []T
}

func (l *listEnvelope[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &l.Results); err != nil {
			return err
		}
		l.Count = len(l.Results)
		return nil
	}
	var paged struct {
		Count   int `json:"count"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &paged); err != nil {
		return err
	}
	l.Count, l.Results = paged.Count, paged.Results
	if l.Count == 0 {
		l.Count = len(l.Results)
	}
	return nil
}
