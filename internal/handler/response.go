package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const quotaHint = "upgrade your plan or wait for tomorrow's reset to place more orders"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto an HTTP status. Anything that is not
// a known service error is logged and reported as 500.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrOutOfRange),
		errors.Is(err, service.ErrEmptyOrder):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrQuotaExceeded):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": err.Error(),
			"hint":  quotaHint,
		})
	case errors.Is(err, service.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		log.Errorw("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// dateParam reads ?date=YYYY-MM-DD, defaulting to today.
func dateParam(r *http.Request, today func() domain.DateOnly) (domain.DateOnly, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return today(), nil
	}
	return domain.ParseDate(raw)
}

func intParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func int64Param(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func nopIfNil(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
