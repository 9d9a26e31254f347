package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/report"
	"github.com/sells-group/facade-energy/internal/solar"
	"github.com/sells-group/facade-energy/internal/validation"
)

// errorBody is the error envelope: {"error":[{"msg":"..."}]}.
type errorBody struct {
	Error []validation.FieldError `json:"error"`
}

// writeJSON encodes v before committing the status. An encoding failure is
// reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Int("status", status), zap.Error(err))
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(errorBody{Error: []validation.FieldError{{Msg: "Internal server error"}}}) //nolint:errcheck
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: []validation.FieldError{{Msg: msg}}})
}

// writeError maps an error to its HTTP status and envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr})
	case eris.Is(err, model.ErrBuildingNotFound):
		writeMessage(w, http.StatusNotFound, "Building not found")
	case eris.Is(err, solar.ErrUnknownCity):
		zap.L().Error("city passed validation but is missing from tables",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		zap.L().Warn("analysis timed out", zap.String("path", r.URL.Path))
		writeMessage(w, http.StatusInternalServerError, "Analysis timed out")
	default:
		zap.L().Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return validation.Errors{{Msg: "Invalid JSON body"}}
	}
	return nil
}

func writeWorkbook(w http.ResponseWriter, r *http.Request, f *xlsx.File, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := report.Write(f, w); err != nil {
		zap.L().Error("failed to stream workbook", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
