package rpc

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type userKey struct{}

// UserID returns the authenticated caller, or "" on public methods.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

func bearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
			return strings.TrimSpace(v[7:])
		}
	}
	return ""
}

// AuthInterceptor authenticates every call except the full method names in
// public, and maps handler errors to gRPC statuses.
func AuthInterceptor(provider identity.Provider, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(public))
	for _, m := range public {
		open[m] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !open[info.FullMethod] {
			token := bearer(ctx)
			if token == "" {
				return nil, Status(domain.ErrAuthRequired)
			}
			p, err := provider.Authenticate(ctx, token)
			if err != nil {
				return nil, Status(err)
			}
			ctx = context.WithValue(ctx, userKey{}, p.UserID)
		}
		resp, err := handler(ctx, req)
		return resp, Status(err)
	}
}

func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Warn("rpc failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("rpc completed", fields...)
		}
		return resp, err
	}
}

// WithToken attaches a bearer token to an outgoing call.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
