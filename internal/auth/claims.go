package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	// TokenTypeUser identifies admin/staff sessions issued against credentials.
	TokenTypeUser TokenType = "USER"
	// TokenTypeLot identifies operator sessions obtained by exchanging an
	// active lot's code. Lot tokens carry no user identity at all.
	TokenTypeLot TokenType = "LOT"
)

// UserClaims is the claims shape for admin/staff tokens.
type UserClaims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	TokenType TokenType `json:"token_type"`
}

// LotClaims is the claims shape for lot-scoped operator tokens.
// Invariant: everything an operator does is scoped to exactly this lot;
// there is no way to widen the scope without a fresh code exchange.
type LotClaims struct {
	jwt.RegisteredClaims

	LotID     string    `json:"lot_id"`
	TokenType TokenType `json:"type"`
}
