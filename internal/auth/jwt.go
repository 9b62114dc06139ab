package auth

import (
	"errors"
	"time"

	"harvest-intake/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Manager struct {
	userSecret []byte
	lotSecret  []byte
	issuer     string
	audience   string
	userTTL    time.Duration
	lotTTL     time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.LotSecret == "" {
		return nil, errors.New("LOT_SECRET is required")
	}

	return &Manager{
		userSecret: []byte(cfg.JWTSecret),
		lotSecret:  []byte(cfg.LotSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		userTTL:    cfg.UserTokenTTL,
		lotTTL:     cfg.LotTokenTTL,
	}, nil
}

/* ===================== ISSUE TOKENS ===================== */

func (m *Manager) IssueUserToken(now time.Time, userID, email string, isAdmin bool) (string, error) {
	claims := UserClaims{
		RegisteredClaims: m.registered(now, m.userTTL),
		UserID:           userID,
		Email:            email,
		IsAdmin:          isAdmin,
		TokenType:        TokenTypeUser,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.userSecret)
}

func (m *Manager) IssueLotToken(now time.Time, lotID string) (string, error) {
	claims := LotClaims{
		RegisteredClaims: m.registered(now, m.lotTTL),
		LotID:            lotID,
		TokenType:        TokenTypeLot,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.lotSecret)
}

// LotTokenTTL exposes the configured lot token lifetime for response bodies.
func (m *Manager) LotTokenTTL() time.Duration { return m.lotTTL }

/* ===================== VERIFY TOKENS ===================== */

func (m *Manager) VerifyUser(tokenString string, now time.Time) (UserClaims, error) {
	var claims UserClaims
	if err := m.parseAndValidate(tokenString, m.userSecret, &claims, now); err != nil {
		return UserClaims{}, err
	}

	if claims.TokenType != TokenTypeUser {
		return UserClaims{}, errors.New("token_type mismatch")
	}
	if claims.UserID == "" {
		return UserClaims{}, errors.New("user_id missing")
	}
	return claims, nil
}

func (m *Manager) VerifyLot(tokenString string, now time.Time) (LotClaims, error) {
	var claims LotClaims
	if err := m.parseAndValidate(tokenString, m.lotSecret, &claims, now); err != nil {
		return LotClaims{}, err
	}

	if claims.TokenType != TokenTypeLot {
		return LotClaims{}, errors.New("token type mismatch")
	}
	if claims.LotID == "" {
		return LotClaims{}, errors.New("lot_id missing")
	}
	return claims, nil
}

/* ===================== INTERNAL ===================== */

func (m *Manager) parseAndValidate(tokenString string, secret []byte, claims jwt.Claims, now time.Time) error {
	// Validation runs against the caller's clock, not the wall clock, so
	// middleware and tests control the instant a token is judged at.
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	})
	return err
}

func (m *Manager) registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Audience:  audienceOrNil(m.audience),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
