package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

const classCategoryPath = "/api/public/classcategory/"

// ClassCategories lists class categories with their subjects.
func (c *Client) ClassCategories(ctx context.Context) ([]models.ClassCategory, error) {
	var out listEnvelope[models.ClassCategory]
	if err := c.do(ctx, call{operation: "class_categories", method: http.MethodGet, path: classCategoryPath}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
