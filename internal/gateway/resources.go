package gateway

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

const (
	backupPath  = "/api/admin/backup/"
	restorePath = "/api/admin/restore/"
)

func resourcePath(resource models.Resource, id string) (string, error) {
	base, ok := resource.Path()
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "unknown resource "+string(resource))
	}
	if id == "" {
		return base, nil
	}
	return base + url.PathEscape(strings.TrimSpace(id)) + "/", nil
}

// List returns one page of a resource collection and the reported total.
func (c *Client) List(ctx context.Context, token string, resource models.Resource, query url.Values) ([]models.Record, int, error) {
	path, err := resourcePath(resource, "")
	if err != nil {
		return nil, 0, err
	}
	var out listEnvelope[models.Record]
	if err := c.do(ctx, call{operation: "list_" + string(resource), method: http.MethodGet, path: path, query: query, token: token}, &out); err != nil {
		return nil, 0, err
	}
	return out.Results, out.Count, nil
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, token string, resource models.Resource, id string) (models.Record, error) {
	path, err := resourcePath(resource, id)
	if err != nil {
		return nil, err
	}
	var out models.Record
	if err := c.do(ctx, call{operation: "get_" + string(resource), method: http.MethodGet, path: path, token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a record to the collection.
func (c *Client) Create(ctx context.Context, token string, resource models.Resource, body models.Record) (models.Record, error) {
	path, err := resourcePath(resource, "")
	if err != nil {
		return nil, err
	}
	var out models.Record
	if err := c.do(ctx, call{operation: "create_" + string(resource), method: http.MethodPost, path: path, token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update partially updates a record.
func (c *Client) Update(ctx context.Context, token string, resource models.Resource, id string, body models.Record) (models.Record, error) {
	path, err := resourcePath(resource, id)
	if err != nil {
		return nil, err
	}
	var out models.Record
	if err := c.do(ctx, call{operation: "update_" + string(resource), method: http.MethodPatch, path: path, token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, token string, resource models.Resource, id string) error {
	path, err := resourcePath(resource, id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{operation: "delete_" + string(resource), method: http.MethodDelete, path: path, token: token}, nil)
}

// SetPasskeyStatus approves or rejects a passkey request.
func (c *Client) SetPasskeyStatus(ctx context.Context, token, id string, status models.PasskeyStatus) (models.Record, error) {
	return c.Update(ctx, token, models.ResourcePasskeys, id, models.Record{"status": string(status)})
}

// backupEntry decodes either a bare file name or a backup object.
type backupEntry models.Backup

func (b *backupEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &b.Name)
	}
	var raw struct {
		Name      string     `json:"name"`
		File      string     `json:"file"`
		Size      int64      `json:"size"`
		CreatedAt *time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	b.Name = raw.Name
	if b.Name == "" {
		b.Name = raw.File
	}
	b.Size, b.CreatedAt = raw.Size, raw.CreatedAt
	return nil
}

// ListBackups returns the snapshots held by the backend.
func (c *Client) ListBackups(ctx context.Context, token string) ([]models.Backup, error) {
	var out listEnvelope[backupEntry]
	if err := c.do(ctx, call{operation: "list_backups", method: http.MethodGet, path: backupPath, token: token}, &out); err != nil {
		return nil, err
	}
	backups := make([]models.Backup, 0, len(out.Results))
	for _, entry := range out.Results {
		backups = append(backups, models.Backup(entry))
	}
	return backups, nil
}

// CreateBackup asks the backend to snapshot the database.
func (c *Client) CreateBackup(ctx context.Context, token string) (*models.Backup, error) {
	var out backupEntry
	if err := c.do(ctx, call{operation: "create_backup", method: http.MethodPost, path: backupPath, token: token, body: map[string]string{}}, &out); err != nil {
		return nil, err
	}
	backup := models.Backup(out)
	return &backup, nil
}

// RestoreBackup restores the named snapshot.
func (c *Client) RestoreBackup(ctx context.Context, token, name string) error {
	return c.do(ctx, call{
		operation: "restore_backup",
		method:    http.MethodPost,
		path:      restorePath,
		token:     token,
		body:      map[string]string{"backup": name},
	}, nil)
}
