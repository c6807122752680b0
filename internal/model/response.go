package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// ResetRequestedResponse is deliberately generic so the endpoint does not
// reveal whether the email is registered. ResetToken is populated only
// outside production.
type ResetRequestedResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}
