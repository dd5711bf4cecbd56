package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/nrb-complaints-api/internal/dto"
	"github.com/noah-isme/nrb-complaints-api/internal/models"
	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
	"github.com/noah-isme/nrb-complaints-api/pkg/export"
)

type complaintLister interface {
	ListAll(ctx context.Context) ([]models.ComplaintView, error)
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportService renders the admin complaint listing as a downloadable file.
type ExportService struct {
	complaints complaintLister
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService wires the exporter. Nil renderers fall back to the
// default CSV and PDF implementations.
func NewExportService(complaints complaintLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{complaints: complaints, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders every complaint in the requested format.
func (s *ExportService) Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error) {
	format = dto.ExportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = dto.ExportCSV
	}
	if format != dto.ExportCSV && format != dto.ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	views, err := s.complaints.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retrieve complaints")
	}

	table := complaintTable(views)
	filename := fmt.Sprintf("complaints-%s.%s", s.now().UTC().Format("20060102-150405"), format)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case dto.ExportPDF:
		data, err = s.pdf.Render(table)
		contentType = "application/pdf"
	default:
		data, err = s.csv.Render(table)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("complaints exported", zap.String("format", string(format)), zap.Int("rows", len(views)))
	return &dto.ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

func complaintTable(views []models.ComplaintView) export.Table {
	table := export.Table{
		Title:   "Nairobi County Complaints",
		Headers: []string{"ID", "Submitted At", "Status", "Reporter", "Description", "Images"},
		Widths:  []float64{0.6, 1.6, 1, 1.8, 4, 2},
		Rows:    make([][]string, 0, len(views)),
	}
	for _, v := range views {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.SubmittedAt.UTC().Format("2006-01-02 15:04"),
			string(v.Status),
			v.UserEmail,
			v.Description,
			strings.Join(v.Images, "\n"),
		})
	}
	return table
}
