package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"review-room/internal/model"
	"review-room/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// writeError maps service and repository errors onto the JSON error
// envelope. Unknown errors become a generic 500 with no internal detail.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	case errors.Is(err, model.ErrEmailTaken):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Email already in use"
		body.Details = "email"
	case errors.Is(err, model.ErrUsernameTaken):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Username already taken"
		body.Details = "username"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	case errors.Is(err, model.ErrInvalidResetToken):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Token is invalid or has expired"
	case errors.Is(err, model.ErrReviewNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Review not found"
	case errors.Is(err, model.ErrReviewExists):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "You have already reviewed this movie"
	case errors.Is(err, model.ErrMovieNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Movie not found"
	case errors.Is(err, model.ErrUpstreamUnavailable):
		status = http.StatusServiceUnavailable
		body.Code = "SERVICE_UNAVAILABLE"
		body.Message = "Movie catalog is temporarily unavailable"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
