package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

const (
	publicTeacherPath = "/api/new/teacher/"
	adminTeacherPath  = "/api/admin/allTeacher/"
)

// TeacherQuery builds teacher search parameters. Array values become
// repeated keys and ranges become key_min / key_max pairs.
type TeacherQuery struct {
	values url.Values
}

// NewTeacherQuery returns an empty query.
func NewTeacherQuery() *TeacherQuery {
	return &TeacherQuery{values: url.Values{}}
}

// WizardQuery builds the public search issued when the visitor leaves the location step.
func WizardQuery(categoryName string, subjectNames []string, pincode, area string) *TeacherQuery {
	return NewTeacherQuery().
		Set("class_category", categoryName).
		Set("subject", strings.Join(subjectNames, ",")).
		Set("pincode", pincode).
		Set("area", area)
}

// Set assigns a single value, skipping blanks.
func (q *TeacherQuery) Set(key, value string) *TeacherQuery {
	if value = strings.TrimSpace(value); value != "" {
		q.values.Set(key, value)
	}
	return q
}

// Add appends values as repeated keys.
func (q *TeacherQuery) Add(key string, values ...string) *TeacherQuery {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			q.values.Add(key, v)
		}
	}
	return q
}

// Range sets key_min and key_max for the non-nil bounds.
func (q *TeacherQuery) Range(key string, min, max *float64) *TeacherQuery {
	if min != nil {
		q.values.Set(key+"_min", strconv.FormatFloat(*min, 'f', -1, 64))
	}
	if max != nil {
		q.values.Set(key+"_max", strconv.FormatFloat(*max, 'f', -1, 64))
	}
	return q
}

// Values returns a copy of the encoded parameters.
func (q *TeacherQuery) Values() url.Values {
	out := make(url.Values, len(q.values))
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode renders the query string.
func (q *TeacherQuery) Encode() string {
	return q.values.Encode()
}

// SearchTeachers runs the public teacher search.
func (c *Client) SearchTeachers(ctx context.Context, q *TeacherQuery) ([]models.TeacherRecord, error) {
	var out listEnvelope[models.TeacherRecord]
	err := c.do(ctx, call{
		operation: "search_teachers",
		method:    http.MethodGet,
		path:      publicTeacherPath,
		query:     q.Values(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SearchAdminTeachers runs the admin teacher search with the caller's token.
func (c *Client) SearchAdminTeachers(ctx context.Context, token string, q *TeacherQuery) ([]models.TeacherRecord, int, error) {
	var out listEnvelope[models.TeacherRecord]
	err := c.do(ctx, call{
		operation: "admin_search_teachers",
		method:    http.MethodGet,
		path:      adminTeacherPath,
		query:     q.Values(),
		token:     token,
	}, &out)
	if err != nil {
		return nil, 0, err
	}
	return out.Results, out.Count, nil
}
