package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// MatchIDField is the structured logging field correlating every line of one match.
const MatchIDField = "match_id"

type scopeKey struct{}

// matchScope is what WithMatch binds to a context.
type matchScope struct {
	id     string
	logger *Logger
}

// WithMatch binds a match identifier, and a child of base that stamps it on every line,
// to ctx. A blank matchID is replaced by a fresh one.
func WithMatch(ctx context.Context, base *Logger, matchID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id := strings.TrimSpace(matchID)
	if id == "" {
		id = NewMatchID()
	}
	if base == nil {
		base = L()
	}
	return context.WithValue(ctx, scopeKey{}, matchScope{id: id, logger: base.With(String(MatchIDField, id))})
}

// LoggerFromContext returns the match logger bound to ctx, or the global logger.
func LoggerFromContext(ctx context.Context) *Logger {
	if scope, ok := scopeOf(ctx); ok {
		return scope.logger
	}
	return L()
}

// MatchIDFromContext returns the match identifier bound to ctx, or "".
func MatchIDFromContext(ctx context.Context) string {
	scope, _ := scopeOf(ctx)
	return scope.id
}

func scopeOf(ctx context.Context) (matchScope, bool) {
	if ctx == nil {
		return matchScope{}, false
	}
	scope, ok := ctx.Value(scopeKey{}).(matchScope)
	return scope, ok
}

// NewMatchID returns 8 random bytes as hex, or the clock in base 36 if the system
// source fails.
func NewMatchID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf[:])
}
