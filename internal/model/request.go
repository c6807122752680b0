package model

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts the identifier as either "identifier" (email or
// username) or the older "email" field.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type CreateReviewRequest struct {
	MovieID int64  `json:"movie_id"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// UpdateReviewRequest uses pointers so a field left out of the body keeps its
// current value.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}
