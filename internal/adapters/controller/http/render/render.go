package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	playground "github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Bodies for 503 and 502 name only the failure kind. The wrapped detail goes to the log.
const (
	unavailableMessage = "temporarily unavailable, retry the request"
	upstreamMessage    = "upstream service failed"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// File writes data as a download named filename.
func File(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Status maps a domain error onto its HTTP status code.
func Status(err error) int {
	var validationErrs playground.ValidationErrors
	switch {
	case errors.Is(err, errorz.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, errorz.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errorz.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errorz.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errorz.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errorz.ErrInvalidInput), errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, errorz.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, errorz.ErrExternalFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Unexpected, transient and upstream errors are
// logged and replaced by a generic message.
func Error(w http.ResponseWriter, logger *types.Logger, r *http.Request, err error) {
	status := Status(err)
	resp := errorResponse{Error: err.Error()}

	var validationErrs playground.ValidationErrors
	if errors.As(err, &validationErrs) {
		resp.Error = "invalid request body"
		for _, fieldErr := range validationErrs {
			resp.Fields = append(resp.Fields, strings.ToLower(fieldErr.Field()))
		}
	}

	switch status {
	case http.StatusInternalServerError:
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		resp.Error = http.StatusText(status)
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
		logger.Warnf("%s %s: %v", r.Method, r.URL.Path, err)
		resp.Error = unavailableMessage
	case http.StatusTooManyRequests:
		w.Header().Set("Retry-After", "1")
		logger.Warnf("%s %s: %v", r.Method, r.URL.Path, err)
	case http.StatusBadGateway:
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		resp.Error = upstreamMessage
	}

	JSON(w, status, resp)
}

// Decode reads a JSON body into v and validates it.
func Decode(r *http.Request, validate *playground.Validate, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errorz.Invalid("body", "is not valid JSON: "+err.Error())
	}
	return validate.Struct(v)
}

// Upload reads a single multipart file field.
func Upload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<10)
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, errorz.Invalid(field, "is missing or too large")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, errorz.Invalid(field, "could not be read")
	}
	if int64(len(data)) > maxBytes {
		return nil, errorz.Invalid(field, "is too large")
	}
	return data, nil
}
