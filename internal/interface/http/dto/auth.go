package dto

import "time"

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email" example:"admin@library.test"`
	Password string `json:"password" example:"Passw0rd!"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Email    string `json:"email" example:"admin@library.test"`
	Password string `json:"password" example:"Passw0rd!"`
	FullName string `json:"fullName" example:"Ada Lovelace"`
}

// SessionResponse describes the signed-in user. The token itself stays on
// the server.
type SessionResponse struct {
	Email     string    `json:"email" example:"admin@library.test"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginHint tells a logged-out client where to authenticate.
type LoginHint struct {
	Message  string `json:"message,omitempty"`
	LoginURL string `json:"loginUrl" example:"/auth/login"`
}
