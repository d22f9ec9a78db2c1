// Package surveys forwards RapidPro flow results to e-mail and Google Sheets.
package surveys

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/repository/sheets"
	"github.com/mamadbah2/wa-relay/pkg/clients/mailer"
)

// EmailSubject is used for every survey e-mail.
const EmailSubject = "New RapidPro Message"

// Column tokens that read from the contact or flow instead of the results map.
const (
	ColumnURN  = "@urn"
	ColumnName = "@name"
	ColumnFlow = "@flow"
)

var (
	// ErrEmailDisabled is returned when no SMTP relay is configured.
	ErrEmailDisabled = errors.New("survey e-mail is not configured")
	// ErrSheetDisabled is returned when no spreadsheet is configured.
	ErrSheetDisabled = errors.New("survey sheet is not configured")
)

// DefaultColumns is the onboarding survey layout used when neither
// configuration nor the sheet header names the columns.
var DefaultColumns = []string{
	"customer_full_name", "address", "customer_nrc", ColumnURN, "email",
	"buiness_name", "business_type", "crop_type", "documentation",
	"market_for_crops", "financing_requirements", "farm_hectorage",
	"mechanization_requirement", "mechanization_type", "water_resources",
}

// Service sends flow results to the configured destinations.
type Service struct {
	mailer  mailer.Sender
	sheet   sheets.Repository
	columns []string
	logger  *zap.Logger
}

// NewService builds a survey forwarder. A nil mailer or sheet disables that destination.
func NewService(m mailer.Sender, sheet sheets.Repository, columns []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{mailer: m, sheet: sheet, columns: columns, logger: logger}
}

// SendEmail mails a readable summary of the results.
func (s *Service) SendEmail(ctx context.Context, results models.FlowResults) error {
	if s.mailer == nil {
		return ErrEmailDisabled
	}

	if err := s.mailer.Send(ctx, EmailSubject, EmailBody(results)); err != nil {
		s.logger.Error("failed to send survey email", zap.String("flow", results.Flow.Name), zap.Error(err))
		return &models.CollaboratorUnavailableError{Collaborator: "smtp", Err: err}
	}

	s.logger.Info("survey email sent", zap.String("flow", results.Flow.Name), zap.String("contact", results.Contact.URN))
	return nil
}

// AppendToSheet writes one row of results to the survey sheet.
func (s *Service) AppendToSheet(ctx context.Context, results models.FlowResults) error {
	if s.sheet == nil {
		return ErrSheetDisabled
	}

	columns, err := s.resolveColumns(ctx)
	if err != nil {
		return &models.CollaboratorUnavailableError{Collaborator: "sheets", Err: err}
	}

	if err := s.sheet.AppendRow(ctx, Row(columns, results)); err != nil {
		s.logger.Error("failed to append survey row", zap.String("flow", results.Flow.Name), zap.Error(err))
		return &models.CollaboratorUnavailableError{Collaborator: "sheets", Err: err}
	}

	s.logger.Info("survey row appended", zap.String("flow", results.Flow.Name), zap.Int("columns", len(columns)))
	return nil
}

func (s *Service) resolveColumns(ctx context.Context) ([]string, error) {
	if len(s.columns) > 0 {
		return s.columns, nil
	}

	header, err := s.sheet.Header(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet header: %w", err)
	}
	if len(header) == 0 {
		return DefaultColumns, nil
	}
	return header, nil
}

// Row lays out results in column order. Missing results become empty cells.
func Row(columns []string, results models.FlowResults) []any {
	row := make([]any, 0, len(columns))
	for _, column := range columns {
		switch column {
		case ColumnURN:
			row = append(row, results.Contact.URN)
		case ColumnName:
			row = append(row, results.Contact.Name)
		case ColumnFlow:
			row = append(row, results.Flow.Name)
		default:
			row = append(row, results.Results[column].Value)
		}
	}
	return row
}

// EmailBody renders flow, contact and each result on its own line, keys sorted.
func EmailBody(results models.FlowResults) string {
	var b strings.Builder
	if results.Flow.Name != "" {
		fmt.Fprintf(&b, "Flow: %s\n", results.Flow.Name)
	}
	if results.Contact.URN != "" || results.Contact.Name != "" {
		fmt.Fprintf(&b, "Contact: %s %s\n", results.Contact.Name, results.Contact.URN)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(results.Results))
	for key := range results.Results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, results.Results[key].Value)
	}
	return b.String()
}
