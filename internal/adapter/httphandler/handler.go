package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/shopcore/internal/adapter/api"
	"github.com/niksmo/shopcore/internal/core/domain"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	} else {
		log.Warn("request rejected", "err", err)
	}
	writeJSON(w, log, code, Error{Error: errorText(code, err)})
}

func badRequest(w http.ResponseWriter, log *slog.Logger, msg string, err error) {
	log.Warn(msg, "err", err)
	writeJSON(w, log, http.StatusBadRequest, Error{Error: msg})
}

func statusCode(err error) int {
	var se *api.StatusError
	switch {
	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidCriteria):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLineNotFound), api.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, api.ErrNetwork),
		errors.Is(err, api.ErrBadResponse),
		errors.As(err, &se):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorText hides internal details of server side failures.
func errorText(code int, err error) string {
	switch code {
	case http.StatusBadRequest, http.StatusConflict:
		return rootCause(err).Error()
	case http.StatusNotFound:
		return "not found"
	case http.StatusBadGateway:
		return "upstream unavailable"
	}
	return http.StatusText(code)
}

// rootCause returns the domain sentinel when err wraps one.
func rootCause(err error) error {
	for _, target := range []error{
		domain.ErrInvalidProduct,
		domain.ErrInvalidQuantity,
		domain.ErrInvalidCriteria,
		domain.ErrEmptyCart,
	} {
		if errors.Is(err, target) {
			return target
		}
	}
	return err
}
