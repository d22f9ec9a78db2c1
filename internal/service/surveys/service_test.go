package surveys

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

type fakeMailer struct {
	subject, body string
	err           error
}

func (f *fakeMailer) Send(_ context.Context, subject, body string) error {
	f.subject, f.body = subject, body
	return f.err
}

type fakeSheet struct {
	header    []string
	headerErr error
	rows      [][]any
	err       error
}

func (f *fakeSheet) AppendRow(_ context.Context, values []any) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeSheet) Header(context.Context) ([]string, error) {
	return f.header, f.headerErr
}

func results() models.FlowResults {
	return models.FlowResults{
		Contact: models.FlowContact{UUID: "c-1", URN: "whatsapp:26090000000", Name: "Chanda"},
		Flow:    models.Flow{UUID: "f-1", Name: "Onboarding"},
		Results: map[string]models.FlowResult{
			"customer_full_name": {Value: "Chanda Mwale", Category: "All Responses"},
			"email":              {Value: "chanda@example.org"},
			"crop_type":          {Value: "Maize"},
		},
	}
}

func TestSendEmail(t *testing.T) {
	m := &fakeMailer{}
	svc := NewService(m, nil, nil, nil)

	require.NoError(t, svc.SendEmail(context.Background(), results()))
	assert.Equal(t, "New RapidPro Message", m.subject)
	assert.Equal(t, "Flow: Onboarding\nContact: Chanda whatsapp:26090000000\n\n"+
		"crop_type: Maize\ncustomer_full_name: Chanda Mwale\nemail: chanda@example.org\n", m.body)
}

func TestSendEmail_Failure(t *testing.T) {
	svc := NewService(&fakeMailer{err: errors.New("dial tcp: i/o timeout")}, nil, nil, nil)

	err := svc.SendEmail(context.Background(), results())
	var cerr *models.CollaboratorUnavailableError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "smtp", cerr.Collaborator)
}

func TestSendEmail_Disabled(t *testing.T) {
	svc := NewService(nil, nil, nil, nil)
	assert.ErrorIs(t, svc.SendEmail(context.Background(), results()), ErrEmailDisabled)
}

func TestAppendToSheet_ConfiguredColumns(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(nil, sheet, []string{"customer_full_name", ColumnURN, "address", ColumnFlow, ColumnName}, nil)

	require.NoError(t, svc.AppendToSheet(context.Background(), results()))
	require.Len(t, sheet.rows, 1)
	assert.Equal(t, []any{"Chanda Mwale", "whatsapp:26090000000", "", "Onboarding", "Chanda"}, sheet.rows[0])
}

func TestAppendToSheet_HeaderColumns(t *testing.T) {
	sheet := &fakeSheet{header: []string{"email", "crop_type"}}
	svc := NewService(nil, sheet, nil, nil)

	require.NoError(t, svc.AppendToSheet(context.Background(), results()))
	assert.Equal(t, []any{"chanda@example.org", "Maize"}, sheet.rows[0])
}

func TestAppendToSheet_DefaultColumns(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(nil, sheet, nil, nil)

	require.NoError(t, svc.AppendToSheet(context.Background(), results()))
	row := sheet.rows[0]
	require.Len(t, row, len(DefaultColumns))
	assert.Equal(t, "Chanda Mwale", row[0])
	assert.Equal(t, "whatsapp:26090000000", row[3])
	assert.Equal(t, "Maize", row[7])
}

func TestAppendToSheet_Failures(t *testing.T) {
	var cerr *models.CollaboratorUnavailableError

	svc := NewService(nil, &fakeSheet{err: errors.New("403")}, []string{"email"}, nil)
	require.True(t, errors.As(svc.AppendToSheet(context.Background(), results()), &cerr))
	assert.Equal(t, "sheets", cerr.Collaborator)

	svc = NewService(nil, &fakeSheet{headerErr: errors.New("404")}, nil, nil)
	require.True(t, errors.As(svc.AppendToSheet(context.Background(), results()), &cerr))

	svc = NewService(nil, nil, nil, nil)
	assert.ErrorIs(t, svc.AppendToSheet(context.Background(), results()), ErrSheetDisabled)
}
