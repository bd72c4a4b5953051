package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

// CreateEnquiry posts a wizard submission with the service token.
func (c *Client) CreateEnquiry(ctx context.Context, enquiry models.Enquiry) (*models.EnquiryReceipt, error) {
	var receipt models.EnquiryReceipt
	err := c.do(ctx, call{
		operation: "create_enquiry",
		method:    http.MethodPost,
		path:      c.enquiryPath,
		body:      enquiry,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
