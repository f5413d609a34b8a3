package http

import (
	"errors"
	"net/http"
	"shortlink-backend/internal/service"

	"github.com/go-chi/render"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	urlRequiredResponse = ErrorResponse{
		Error:   "URL is required",
		Message: "Please provide a valid URL to shorten",
	}
	invalidBodyResponse = ErrorResponse{
		Error:   "Bad Request",
		Message: "Request body must be a JSON object",
	}
	notFoundResponse = ErrorResponse{
		Error:   "Not Found",
		Message: "The requested resource was not found",
	}
	methodNotAllowedResponse = ErrorResponse{
		Error:   "Method Not Allowed",
		Message: "The requested method is not supported for this resource",
	}
	panicResponse = ErrorResponse{
		Error:   "Internal Server Error",
		Message: "Something went wrong",
	}
)

// errorFor maps service errors to a status and body. fallback is the message
// returned for unexpected errors, whose details are never sent to clients.
func errorFor(err error, fallback string) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrInvalidValidity),
		errors.Is(err, service.ErrInvalidShortcode),
		errors.Is(err, service.ErrShortcodeTaken):
		return http.StatusBadRequest, ErrorResponse{Error: "Bad Request", Message: err.Error()}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Not Found", Message: err.Error()}
	case errors.Is(err, service.ErrExpired):
		return http.StatusGone, ErrorResponse{Error: "Gone", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error", Message: fallback}
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) int {
	status, body := errorFor(err, fallback)
	writeJSON(w, r, status, body)
	return status
}
