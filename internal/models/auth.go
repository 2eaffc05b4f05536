package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims represents custom JWT claims
type JWTClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	ClinicID uuid.UUID `json:"clinic_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller of a mutating operation. Permission
// checks always take the actor explicitly; nothing reaches into ambient
// global state.
type Actor struct {
	UserID   uuid.UUID
	ClinicID uuid.UUID
	Role     string
}
