// Package postal is a client for the India Post pincode directory
// (api.postalpincode.in) and endpoints sharing its response shape.
package postal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// StatusSuccess is the Status value of a successful lookup.
const StatusSuccess = "Success"

var (
	// ErrNoRecords is returned when the directory answers without a usable post office.
	ErrNoRecords = errors.New("postal: no records found")
	// ErrStateEndpointMissing is returned for state lookups when no template is configured.
	ErrStateEndpointMissing = errors.New("postal: state endpoint not configured")
)

// StatusError reports a non-2xx answer from the directory.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("postal: unexpected status %d", e.StatusCode)
}

// PostOffice is one entry in a lookup answer.
type PostOffice struct {
	Name           string `json:"Name"`
	BranchType     string `json:"BranchType"`
	DeliveryStatus string `json:"DeliveryStatus"`
	Circle         string `json:"Circle"`
	District       string `json:"District"`
	Division       string `json:"Division"`
	Region         string `json:"Region"`
	Block          string `json:"Block"`
	State          string `json:"State"`
	Country        string `json:"Country"`
	Pincode        string `json:"Pincode"`
}

// Answer is a single element of the directory's response array.
type Answer struct {
	Message    string       `json:"Message"`
	Status     string       `json:"Status"`
	PostOffice []PostOffice `json:"PostOffice"`
}

// Place is the resolved location of a pincode.
type Place struct {
	Pincode string
	State   string
	City    string
	Areas   []string
}

// Config configures the client.
type Config struct {
	BaseURL string
	// StateURL is a template with {state} and {code} placeholders.
	StateURL string
	Timeout  time.Duration
}

// Client queries the pincode directory over fasthttp.
type Client struct {
	baseURL  string
	stateURL string
	timeout  time.Duration
	http     *fasthttp.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.postalpincode.in"
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		stateURL: cfg.StateURL,
		timeout:  cfg.Timeout,
		http: &fasthttp.Client{
			Name:                "teacherhub-gateway",
			MaxIdleConnDuration: time.Minute,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
	}
}

// ByPincode resolves a 6 digit pincode.
func (c *Client) ByPincode(ctx context.Context, code string) (*Place, error) {
	answer, err := c.get(ctx, c.baseURL+"/pincode/"+url.PathEscape(code))
	if err != nil {
		return nil, err
	}
	return resolve(code, answer)
}

// ByPincodeInState resolves a pincode through the configured state-specific endpoint.
func (c *Client) ByPincodeInState(ctx context.Context, state, code string) (*Place, error) {
	if c.stateURL == "" {
		return nil, ErrStateEndpointMissing
	}
	target := strings.NewReplacer(
		"{state}", url.PathEscape(strings.ToLower(strings.TrimSpace(state))),
		"{code}", url.PathEscape(code),
	).Replace(c.stateURL)
	answer, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	return resolve(code, answer)
}

// ByBranchName searches post offices by branch name.
func (c *Client) ByBranchName(ctx context.Context, name string) ([]PostOffice, error) {
	answer, err := c.get(ctx, c.baseURL+"/postoffice/"+url.PathEscape(strings.TrimSpace(name)))
	if err != nil {
		return nil, err
	}
	if answer.Status != StatusSuccess || len(answer.PostOffice) == 0 {
		return nil, ErrNoRecords
	}
	return answer.PostOffice, nil
}

func (c *Client) get(ctx context.Context, target string) (*Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("postal: request %s: %w", target, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{StatusCode: code}
	}

	var answers []Answer
	if err := json.Unmarshal(resp.Body(), &answers); err != nil {
		return nil, fmt.Errorf("postal: decode response: %w", err)
	}
	if len(answers) == 0 {
		return nil, ErrNoRecords
	}
	return &answers[0], nil
}

func resolve(code string, answer *Answer) (*Place, error) {
	if answer.Status != StatusSuccess || len(answer.PostOffice) == 0 {
		return nil, ErrNoRecords
	}
	first := answer.PostOffice[0]
	place := &Place{
		Pincode: code,
		State:   first.State,
		City:    first.District,
		Areas:   make([]string, 0, len(answer.PostOffice)),
	}
	seen := make(map[string]struct{}, len(answer.PostOffice))
	for _, office := range answer.PostOffice {
		name := strings.TrimSpace(office.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		place.Areas = append(place.Areas, name)
	}
	if place.State == "" || place.City == "" || len(place.Areas) == 0 {
		return nil, ErrNoRecords
	}
	return place, nil
}
