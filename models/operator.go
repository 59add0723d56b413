package models

import "time"

// Operator is a back-office user allowed to send notifications.
type Operator struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// LoginRequest is the body of an operator login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the operator token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Operator  Operator  `json:"operator"`
}
