package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	shared *zap.Logger
	once   sync.Once
)

// New builds the process-wide zap logger. The first call decides the
// configuration; later calls return the same instance. Production gets JSON
// output, everything else a colored console encoder.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		shared, err = cfg.Build()
	})
	return shared, err
}

// RequestIDKey marks the request identifier on a context.Context.
type RequestIDKey struct{}

// RequestIDFromContext extracts the request identifier, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey{}).(string)
	return id
}

// WithContext returns the shared logger carrying the context's request id.
func WithContext(ctx context.Context) *zap.Logger {
	if shared == nil {
		fallback, _ := zap.NewDevelopment()
		return fallback
	}
	id := RequestIDFromContext(ctx)
	if id == "" {
		return shared
	}
	return shared.With(zap.String("request_id", id))
}

// MaskEmail hides the local part of an address beyond its first three
// characters: john.doe@example.com becomes joh***@example.com.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	local, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return "***"
	}
	if len(local) <= 3 {
		return local + "***@" + domain
	}
	return local[:3] + "***@" + domain
}

// MaskIP keeps the first two IPv4 octets or the first four IPv6 groups and
// blanks the rest, enough to group log lines by network without storing the
// full address.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if octets := strings.Split(ip, "."); len(octets) == 4 {
		return octets[0] + "." + octets[1] + ".*.*"
	}
	if groups := strings.Split(ip, ":"); len(groups) >= 4 {
		return strings.Join(groups[:4], ":") + ":*:*:*:*"
	}
	return "***"
}
