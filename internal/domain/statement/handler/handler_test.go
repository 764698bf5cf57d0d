package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/service"
)

const bankCSV = `Txn Date,Description,Debit Amount,Credit Amount,Balance
01-04-2024,UPI/AMAZON/SHOPPING,500.00,,"9,500.00"
02-04-2024,"NEFT/ACME, INC/SALARY",,"50,000.00","59,500.00"
03-04-2024,OPENING BALANCE,,,"59,500.00"
`

func newTestHandler(t *testing.T) *StatementHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	norm := normalizer.New(normalizer.Config{IDStrategy: normalizer.IDStrategySequential})
	svc := service.New(norm, insights.NewLocalGenerator("INR", logger), service.Config{}, logger)
	return NewStatementHandler(svc, logger, 0)
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/statements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestHandler(t).Routes(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload_BankStatement(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rec := serve(routes, uploadRequest(t, "file", "statement.csv", bankCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Ledger struct {
			Shape        string `json:"shape"`
			DroppedRows  int    `json:"droppedRows"`
			Transactions []struct {
				TransactionID string `json:"transactionId"`
				Sender        string `json:"sender"`
				Receiver      string `json:"receiver"`
				Type          string `json:"type"`
			} `json:"transactions"`
		} `json:"ledger"`
		Insights map[string]json.RawMessage `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "bank_statement", body.Ledger.Shape)
	assert.Equal(t, 1, body.Ledger.DroppedRows)
	require.Len(t, body.Ledger.Transactions, 2)
	assert.Equal(t, "debit", body.Ledger.Transactions[0].Type)
	assert.Equal(t, "AMAZON", body.Ledger.Transactions[0].Receiver)
	assert.Equal(t, "ACME, INC", body.Ledger.Transactions[1].Sender)
	for _, key := range []string{"chart_insights", "monthly_trends", "top_merchants", "anomalies", "summary", "reports", "suggestions"} {
		assert.Contains(t, body.Insights, key)
	}

	rec = serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// statementWorkbook builds an .xlsx with a bank preamble above the header row.
func statementWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"STATEMENT OF ACCOUNT"},
		{"Account Name", "DEEPAK"},
		{},
		{"Txn Date", "Value Date", "Description", "Ref No./Cheque No.", "Debit Amount", "Credit Amount", "Balance"},
		{"05-04-2024", "05-04-2024", "UPI/ZOMATO/FOOD", "UPI-1", "349.00", "", "9,651.00"},
		{"06-04-2024", "06-04-2024", "UPI/RAHUL SHARMA/RENT SHARE", "UPI-2", "", "8,000.00", "17,651.00"},
		{"", "", "** END OF STATEMENT **", "", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.String()
}

func TestUpload_Workbook(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rec := serve(routes, uploadRequest(t, "file", "april.xlsx", statementWorkbook(t)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Ledger struct {
			Sheet        string `json:"sheet"`
			DroppedRows  int    `json:"droppedRows"`
			Transactions []struct {
				Date     string `json:"date"`
				Sender   string `json:"sender"`
				Receiver string `json:"receiver"`
				Category string `json:"category"`
				Type     string `json:"type"`
			} `json:"transactions"`
		} `json:"ledger"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "Sheet1", body.Ledger.Sheet)
	assert.Equal(t, 1, body.Ledger.DroppedRows)
	require.Len(t, body.Ledger.Transactions, 2)
	assert.Equal(t, "05-04-2024", body.Ledger.Transactions[0].Date)
	assert.Equal(t, "ZOMATO", body.Ledger.Transactions[0].Receiver)
	assert.Equal(t, "FOOD", body.Ledger.Transactions[0].Category)
	assert.Equal(t, "RAHUL SHARMA", body.Ledger.Transactions[1].Sender)
	assert.Equal(t, "DEEPAK", body.Ledger.Transactions[1].Receiver)
	assert.Equal(t, "credit", body.Ledger.Transactions[1].Type)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		msg    string
	}{
		{
			name: "header not found",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "bad.csv", "Date,Narration,Withdrawal\n01-04-2024,UPI/A/B,5\n")
			},
			status: http.StatusUnprocessableEntity,
			msg:    normalizer.ErrHeaderNotFound.Error(),
		},
		{
			name: "empty sheet",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "empty.csv", "\n")
			},
			status: http.StatusUnprocessableEntity,
			msg:    service.ErrEmptySheet.Error(),
		},
		{
			name: "unsupported format",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "statement.pdf", "%PDF-1.4")
			},
			status: http.StatusUnsupportedMediaType,
		},
		{
			name: "corrupt workbook",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "statement.xlsx", "not a zip")
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "attachment", "statement.csv", bankCSV)
			},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := newTestHandler(t).Routes()
			rec := serve(routes, tt.req(t))
			assert.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body.Error)
			}

			rec = serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current", nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(normalizer.New(normalizer.DefaultConfig()), insights.NewLocalGenerator("", logger), service.Config{}, logger)
	h := NewStatementHandler(svc, logger, 1024)

	rec := serve(h.Routes(), uploadRequest(t, "file", "big.csv", strings.Repeat("a,b,c\n", 1000)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestExport(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rec := serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current/export.csv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(routes, uploadRequest(t, "file", "statement.csv", bankCSV))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `statement-normalized.csv`)

	var rows []statement.CSVRow
	require.NoError(t, gocsv.UnmarshalString(rec.Body.String(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "00000001", rows[0].TransactionID)
	assert.Equal(t, "500", rows[0].Amount)
	assert.Equal(t, "UPI/AMAZON/SHOPPING", rows[0].Description)
	assert.Equal(t, "credit", rows[1].Type)
}

func TestExport_XLSX(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rec := serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current/export.xlsx", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(routes, uploadRequest(t, "file", "statement.csv", bankCSV))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `statement-normalized.xlsx`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(statement.XLSXSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, statement.XLSXHeaders, rows[0])
	assert.Equal(t, "00000001", rows[1][1])
	assert.Equal(t, "500", rows[1][5])
	assert.Equal(t, "credit", rows[2][6])
}

func TestReset(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rec := serve(routes, uploadRequest(t, "file", "statement.csv", bankCSV))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(routes, httptest.NewRequest(http.MethodDelete, "/api/statements/current", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(routes, httptest.NewRequest(http.MethodGet, "/api/statements/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
