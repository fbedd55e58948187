package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/julianstephens/fastwell/internal/api"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorBody{
		Message: api.Messages{msg},
		Error:   http.StatusText(status),
	})
}

// writeError maps service errors onto status codes and the shared error body
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		body := api.ErrorBody{
			Message: api.Messages{ve.Message},
			Error:   http.StatusText(http.StatusBadRequest),
		}
		for _, is := range ve.Issues {
			body.Details = append(body.Details, api.ErrorDetail{
				Field:   is.Field,
				Value:   is.Value,
				Reason:  is.Reason,
				Message: detailMessage(is),
			})
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}

	var re *apperrors.RemoteError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.As(err, &re):
		writeMessage(w, re.StatusCode, re.Message)
	default:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func detailMessage(is apperrors.Issue) string {
	if is.Value != "" {
		return is.Field + " " + is.Value + ": " + is.Reason
	}
	return is.Field + ": " + is.Reason
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	defer r.Body.Close()
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apperrors.NewValidation("invalid request body: " + err.Error())
	}
	return nil
}
