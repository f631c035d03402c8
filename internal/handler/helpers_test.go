package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"apitutor/internal/app/realtime"
	"apitutor/internal/app/user"
	"apitutor/internal/configs"
	"apitutor/internal/pkg/resp"
)

// envelope mirrors resp.Envelope with data left raw for per-test decoding.
type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Timestamp  string          `json:"timestamp"`
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:    "test",
		Port:           4000,
		AllowedOrigins: []string{},
		WriteRate:      1000,
		WriteBurst:     1000,
		WSConnectRate:  1000,
		WSConnectBurst: 1000,
	}
}

func newTestDeps(t *testing.T, cfg *configs.AppConfig, seed ...user.User) *AppDeps {
	t.Helper()
	hub := realtime.NewHub()
	t.Cleanup(hub.Shutdown)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewAppDeps(ctx, cfg, user.NewStore(seed...), hub)
}

func newTestRouter(t *testing.T, seed ...user.User) http.Handler {
	t.Helper()
	return Router(newTestDeps(t, testConfig(), seed...))
}

// do performs one request against h. A non-nil body is sent as JSON.
func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, target, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w, decodeEnvelope(t, w)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, w.Code, env.StatusCode)

	_, err := time.Parse(resp.TimestampFormat, env.Timestamp)
	require.NoError(t, err, "timestamp %q", env.Timestamp)

	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
