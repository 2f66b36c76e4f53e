// Package response writes JSON bodies and API errors.
package response

import (
	"encoding/json"
	"net/http"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
	"github.com/dtroode/authsession/internal/api/http/dto"
	"github.com/dtroode/authsession/internal/logger"
)

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// Error renders err. Anything that is not an APIError becomes an opaque 500.
func Error(w http.ResponseWriter, log *logger.Logger, err error) {
	apiErr, ok := apiErrors.As(err)
	if !ok || apiErr.Kind == apiErrors.KindInternal {
		log.Error("HTTP: internal error",
			"error", err.Error())
		apiErr = apiErrors.NewErrInternalServerError(err)
	}

	JSON(w, apiErr.HTTPCode, dto.ErrorBody{
		StatusCode: apiErr.HTTPCode,
		Message:    apiErr.Message,
		Error:      http.StatusText(apiErr.HTTPCode),
	})
}
