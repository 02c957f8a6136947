package admincontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// AdminContextKey is the request context key for the authenticated admin ID.
type AdminContextKey struct{}

// WithAdminID stores the admin scope in the context.
func WithAdminID(ctx context.Context, adminID snowflake.ID) context.Context {
	return context.WithValue(ctx, AdminContextKey{}, adminID)
}

// AdminIDFromContext returns the admin scope from context, if set.
func AdminIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	switch typed := ctx.Value(AdminContextKey{}).(type) {
	case snowflake.ID:
		return typed, true
	case int64:
		return snowflake.ID(typed), true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
