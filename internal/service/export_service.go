package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
	"github.com/studiofit/class-booking-api/pkg/export"
)

// ExportFormat selects the roster rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type rosterReader interface {
	ListApprovedByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error)
}

type classFinder interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
}

// ExportResult carries rendered bytes plus metadata for the download headers.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders class rosters as CSV or PDF downloads.
type ExportService struct {
	enrollments rosterReader
	classes     classFinder
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService builds the roster export service.
func NewExportService(enrollments rosterReader, classes classFinder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		classes:     classes,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Roster exports the approved roster of a class in the requested format.
func (s *ExportService) Roster(ctx context.Context, classID string, format ExportFormat) (*ExportResult, error) {
	session, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	roster, err := s.enrollments.ListApprovedByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Status", "Requested At", "Reviewed At"},
		Rows:    make([]map[string]string, 0, len(roster)),
	}
	for _, entry := range roster {
		reviewedAt := ""
		if entry.ReviewedAt != nil {
			reviewedAt = entry.ReviewedAt.Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":      entry.StudentName,
			"Status":       string(entry.Status),
			"Requested At": entry.EnrolledAt.Format(time.RFC3339),
			"Reviewed At":  reviewedAt,
		})
	}

	base := fmt.Sprintf("roster-%s-%s", strings.ToLower(string(session.Discipline)), session.ScheduledAt.Format("2006-01-02"))
	title := fmt.Sprintf("%s roster %s", session.Discipline, session.ScheduledAt.Format("2006-01-02 15:04"))

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}
