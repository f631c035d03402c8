package handler

import (
	"context"

	"golang.org/x/time/rate"

	"apitutor/internal/app/realtime"
	"apitutor/internal/app/user"
	"apitutor/internal/configs"
	"apitutor/internal/pkg/limiter"
)

// AppDeps holds everything the handlers need. It is built once in main and shared by all routes.
type AppDeps struct {
	Config *configs.AppConfig
	Store  *user.Store
	Hub    *realtime.Hub

	// WriteLimiter guards the mutating REST routes.
	WriteLimiter *limiter.IPRateLimiter

	// ConnectLimiter guards the WebSocket handshake.
	ConnectLimiter *limiter.IPRateLimiter
}

// NewAppDeps wires the per-IP limiters from cfg. The limiters' sweep loops stop when ctx is done.
func NewAppDeps(ctx context.Context, cfg *configs.AppConfig, store *user.Store, hub *realtime.Hub) *AppDeps {
	return &AppDeps{
		Config:         cfg,
		Store:          store,
		Hub:            hub,
		WriteLimiter:   limiter.NewIPRateLimiter(ctx, rate.Limit(cfg.WriteRate), cfg.WriteBurst),
		ConnectLimiter: limiter.NewIPRateLimiter(ctx, rate.Limit(cfg.WSConnectRate), cfg.WSConnectBurst),
	}
}
