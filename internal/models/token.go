package models

import "time"

// TokenResponse is returned by the auth endpoints after a successful
// login, signup, or federated callback.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
}
