package userctx

import "context"

type contextKey string

const (
	userIDContextKey   contextKey = "user_id"
	familyIDContextKey contextKey = "family_id"
)

// Identity used when auth is disabled.
const (
	DefaultUserID   = "default"
	DefaultFamilyID = "default"
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

func WithFamilyID(ctx context.Context, familyID string) context.Context {
	return context.WithValue(ctx, familyIDContextKey, familyID)
}

func GetFamilyID(ctx context.Context) (string, bool) {
	familyID, ok := ctx.Value(familyIDContextKey).(string)
	return familyID, ok && familyID != ""
}

// WithIdentity stores both the user and the family the request acts for.
func WithIdentity(ctx context.Context, userID, familyID string) context.Context {
	return WithFamilyID(WithUserID(ctx, userID), familyID)
}
