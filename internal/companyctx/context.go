package companyctx

import (
	"context"
	"strings"
)

// CompanyContextKey is the request context key for the active company identifier.
type CompanyContextKey struct{}

// WithCompanyID stores the company identifier in the context.
func WithCompanyID(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, CompanyContextKey{}, strings.TrimSpace(companyID))
}

// CompanyIDFromContext returns the company identifier from context, if set.
// The identifier is the tenant partition key; it is phone-number-shaped but
// never validated as a real phone number.
func CompanyIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(CompanyContextKey{}).(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
