// Package handler exposes the statement import service over HTTP.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
)

// DefaultMaxUpload caps multipart uploads at 32 MiB.
const DefaultMaxUpload int64 = 32 << 20

// Importer is the part of the import service the handler drives.
type Importer interface {
	Import(ctx context.Context, filename string, r io.Reader) (*service.Result, error)
	Current() (*service.Result, bool)
	Reset()
}

// StatementHandler serves the statement endpoints.
type StatementHandler struct {
	svc       Importer
	logger    *slog.Logger
	maxUpload int64
}

// NewStatementHandler creates a handler. maxUpload <= 0 selects DefaultMaxUpload.
func NewStatementHandler(svc Importer, logger *slog.Logger, maxUpload int64) *StatementHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatementHandler{svc: svc, logger: logger, maxUpload: maxUpload}
}

// RegisterRoutes sets up the HTTP routes.
func (h *StatementHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/statements", h.handleUpload)
	mux.HandleFunc("GET /api/statements/current", h.handleCurrent)
	mux.HandleFunc("GET /api/statements/current/export.csv", h.handleExport(csvExport))
	mux.HandleFunc("GET /api/statements/current/export.xlsx", h.handleExport(xlsxExport))
	mux.HandleFunc("DELETE /api/statements/current", h.handleReset)
	mux.HandleFunc("GET /api/health", h.handleHealth)
}

// Routes returns a mux with every statement route registered.
func (h *StatementHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func (h *StatementHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatementHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxUpload))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded, use form field 'file'")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	result, err := h.svc.Import(r.Context(), filename, file)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("statement upload failed",
				slog.String("filename", filename),
				slog.Any("error", err),
			)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *StatementHandler) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	result, ok := h.svc.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no statement uploaded")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *StatementHandler) handleReset(w http.ResponseWriter, _ *http.Request) {
	h.svc.Reset()
	w.WriteHeader(http.StatusNoContent)
}

type exportFormat struct {
	ext         string
	contentType string
	write       func(io.Writer, *statement.Ledger) error
}

var (
	csvExport  = exportFormat{ext: ".csv", contentType: "text/csv; charset=utf-8", write: statement.WriteCSV}
	xlsxExport = exportFormat{
		ext:         ".xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		write:       statement.WriteXLSX,
	}
)

func (h *StatementHandler) handleExport(format exportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		result, ok := h.svc.Current()
		if !ok {
			writeError(w, http.StatusNotFound, "no statement uploaded")
			return
		}

		ledger := result.Ledger
		var buf bytes.Buffer
		if err := format.write(&buf, ledger); err != nil {
			h.logger.Error("failed to export statement", slog.String("format", format.ext), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to export statement")
			return
		}

		name := strings.TrimSuffix(ledger.Filename, filepath.Ext(ledger.Filename)) + "-normalized" + format.ext
		w.Header().Set("Content-Type", format.contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		_, _ = w.Write(buf.Bytes())
	}
}

// errorStatus maps import errors to a status and a message safe to show users.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, normalizer.ErrHeaderNotFound):
		return http.StatusUnprocessableEntity, normalizer.ErrHeaderNotFound.Error()
	case errors.Is(err, service.ErrEmptySheet):
		return http.StatusUnprocessableEntity, service.ErrEmptySheet.Error()
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported file type, upload .xlsx or .csv"
	case errors.Is(err, sheet.ErrNoSheets), errors.Is(err, sheet.ErrUnreadable):
		return http.StatusUnprocessableEntity, "the file could not be read as a spreadsheet"
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict, service.ErrSuperseded.Error()
	default:
		return http.StatusInternalServerError, "failed to import statement"
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
