/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleWebSocket, which rate limits the handshake, upgrades the connection,
registers the client with the hub and runs its pumps.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"apitutor/internal/app/realtime"
	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/limiter"
	"apitutor/internal/pkg/logx"
	"apitutor/internal/pkg/randx"
	"apitutor/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.ConnectLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", limiter.ClientIP(r))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written an HTTP error response.
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := realtime.NewClient(deps.Hub, conn, randx.MustConnectionID())

		go client.WritePump()

		if !deps.Hub.Register(client) {
			logx.Info("WebSocket connection refused: hub is shutting down.", "socket_id", client.ID())
			return
		}

		logx.Info("WebSocket connection established", "socket_id", client.ID(), "ip", limiter.ClientIP(r))

		client.ReadPump()
	}
}
