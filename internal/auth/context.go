package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxEmail
	ctxIsAdmin
	ctxLotID
)

// ActorLotOperator is the audit actor recorded for lot-token mutations.
// Operator sessions are anonymous; the lot is the identity.
const ActorLotOperator = "lot_operator"

// WithUser stores an authenticated user identity in context.
func WithUser(ctx context.Context, userID, email string, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxEmail, email)
	ctx = context.WithValue(ctx, ctxIsAdmin, isAdmin)
	return ctx
}

// WithLot stores a lot-token scope in context.
func WithLot(ctx context.Context, lotID string) context.Context {
	return context.WithValue(ctx, ctxLotID, lotID)
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func Email(ctx context.Context) (string, error) {
	v := ctx.Value(ctxEmail)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("email not in context")
}

func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(ctxIsAdmin).(bool)
	return v
}

// LotID returns the lot scope of a lot-token session. User sessions have none.
func LotID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxLotID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("lot_id not in context")
}

// Actor resolves the audit actor for the current request: the user id for
// user sessions, "lot_operator" for lot sessions.
func Actor(ctx context.Context) (string, error) {
	if uid, err := UserID(ctx); err == nil {
		return uid, nil
	}
	if _, err := LotID(ctx); err == nil {
		return ActorLotOperator, nil
	}
	return "", errors.New("no identity in context")
}
