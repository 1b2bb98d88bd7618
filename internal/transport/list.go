package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/rpc"
	"github.com/go-chi/chi/v5"
)

type listKey struct{}

// ListResolver resolves a list from its capability token.
type ListResolver interface {
	Resolve(ctx context.Context, token string) (*list.List, error)
}

// ListFromContext returns the resolved list from context, if present.
func ListFromContext(ctx context.Context) (*list.List, bool) {
	l, ok := ctx.Value(listKey{}).(*list.List)
	return l, ok
}

// ListMiddleware resolves the {token} URL parameter. Possessing the token is
// the only access check.
func ListMiddleware(resolver ListResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := chi.URLParam(r, "token")
			l, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, list.ErrListNotFound) {
					apiErr := rpc.MapError(err)
					WriteErrorStatus(w, http.StatusNotFound, nil, ErrApplication, apiErr.Message, apiErr)
					return
				}
				WriteErrorStatus(w, http.StatusInternalServerError, nil, ErrInternal, "internal error", nil)
				return
			}

			ctx := context.WithValue(r.Context(), listKey{}, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
