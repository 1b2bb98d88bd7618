package transport

import (
	"context"
	"net/http"
	"strings"
)

// ParticipantHeader carries the display name of the person editing a list.
const ParticipantHeader = "X-Participant"

type participantKey struct{}

// ParticipantFromContext returns the participant name from context, if present.
func ParticipantFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(participantKey{}).(string)
	return name, ok
}

// ParticipantMiddleware extracts X-Participant and stores it in context.
func ParticipantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(ParticipantHeader))
		if name != "" {
			ctx := context.WithValue(r.Context(), participantKey{}, name)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}
