package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Password reset errors
	ErrInvalidResetToken = errors.New("reset token is invalid or has expired")

	// Review related errors
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("review already exists for this movie")

	// Movie catalog errors
	ErrMovieNotFound       = errors.New("movie not found")
	ErrUpstreamUnavailable = errors.New("movie catalog is unavailable")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
