package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

const cashierHeader = "X-Cashier"

// DefaultCashier is attributed when a request carries no cashier header.
const DefaultCashier = "unknown"

type contextKey string

const ctxCashier contextKey = "cashier"

// Actor reads the cashier identity from the request header and threads it
// through the context and the request log fields.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cashier := strings.TrimSpace(r.Header.Get(cashierHeader))
			if cashier == "" {
				cashier = DefaultCashier
			}

			ctx := WithCashier(r.Context(), cashier)
			if logg != nil {
				ctx = logg.WithCashier(ctx, cashier)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithCashier(ctx context.Context, cashier string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCashier, cashier)
}

func CashierFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultCashier
	}
	if v, ok := ctx.Value(ctxCashier).(string); ok && v != "" {
		return v
	}
	return DefaultCashier
}
