package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV     = "csv"
	ExportFormatPDF     = "pdf"
	ExportFormatDataURI = "datauri"
)

const exportPageSize = 1000

// exportColumns fixes the columns per exportable resource. Keys may use
// dots to reach into nested objects.
var exportColumns = map[models.Resource][]export.Column{
	models.ResourceRecruiters: {
		{Key: "id", Label: "ID"},
		{Key: "user.Fname", Label: "First Name"},
		{Key: "user.Lname", Label: "Last Name"},
		{Key: "user.email", Label: "Email"},
		{Key: "company_name", Label: "Company"},
		{Key: "contact", Label: "Contact"},
		{Key: "pincode", Label: "Pincode"},
		{Key: "city", Label: "City"},
		{Key: "state", Label: "State"},
	},
	models.ResourceInterviews: {
		{Key: "id", Label: "ID"},
		{Key: "user.email", Label: "Teacher"},
		{Key: "subject.subject_name", Label: "Subject"},
		{Key: "class_category.name", Label: "Class Category"},
		{Key: "time", Label: "Scheduled At"},
		{Key: "status", Label: "Status"},
		{Key: "link", Label: "Link"},
	},
}

var exportTitles = map[models.Resource]string{
	models.ResourceRecruiters: "Recruiters",
	models.ResourceInterviews: "Interviews",
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	DataURI(data export.Dataset) (string, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type exportLister interface {
	List(ctx context.Context, token string, resource models.Resource, query url.Values) ([]models.Record, int, error)
}

// ExportResult is a rendered export.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	DataURI     string
	Rows        int
}

// ExportService renders admin lists as CSV, PDF or a CSV data URI.
type ExportService struct {
	lister exportLister
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(lister exportLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{lister: lister, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Exportable reports whether a resource has a column set.
func Exportable(resource models.Resource) bool {
	_, ok := exportColumns[resource]
	return ok
}

// Export fetches the resource list and renders it in the requested format.
func (s *ExportService) Export(ctx context.Context, token string, resource models.Resource, format string) (*ExportResult, error) {
	columns, ok := exportColumns[resource]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "resource "+string(resource)+" cannot be exported")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	records, _, err := s.lister.List(ctx, token, resource, url.Values{"page_size": {strconv.Itoa(exportPageSize)}})
	if err != nil {
		return nil, err
	}
	dataset := BuildDataset(exportTitles[resource], columns, records)
	base := fmt.Sprintf("%s-%s", resource, s.now().UTC().Format("20060102-150405"))

	result := &ExportResult{Rows: len(dataset.Rows)}
	switch format {
	case ExportFormatCSV:
		result.Data, err = s.csv.Render(dataset)
		result.Filename, result.ContentType = base+".csv", "text/csv; charset=utf-8"
	case ExportFormatPDF:
		result.Data, err = s.pdf.Render(dataset)
		result.Filename, result.ContentType = base+".pdf", "application/pdf"
	case ExportFormatDataURI:
		result.DataURI, err = s.csv.DataURI(dataset)
		result.Filename, result.ContentType = base+".csv", "text/plain; charset=utf-8"
	default:
		msg := "format must be csv, pdf or datauri"
		return nil, appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"format": msg})
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("export rendered", zap.String("resource", string(resource)), zap.String("format", format), zap.Int("rows", result.Rows))
	return result, nil
}

// BuildDataset flattens records into the given columns.
func BuildDataset(title string, columns []export.Column, records []models.Record) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			row[col.Key] = stringify(lookup(rec, col.Key))
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: title, Columns: columns, Rows: rows}
}

func lookup(rec map[string]interface{}, key string) interface{} {
	var current interface{} = rec
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
