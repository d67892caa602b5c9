package app

import (
	"context"
	"io"
	"net"
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/core"
	chatlog "github.com/trinetra/chatsim-server/internal/log"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewHubUsesConfiguredProfiles(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSessions = 1
	logger := chatlog.NewWithWriter(io.Discard, "disabled", "json")

	hub, err := NewHub(&cfg, logger)
	require.NoError(t, err)
	defer hub.Shutdown()

	s, err := hub.Open(core.KindChatbot, "")
	require.NoError(t, err)
	assert.Equal(t, core.KindChatbot, s.Kind())

	_, err = hub.Open(core.KindChatRoom, "")
	assert.ErrorIs(t, err, core.ErrTooManySessions)
}

func TestNewHubRejectsInvalidProfile(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Chatbot.ReplyProbability = 2
	logger := chatlog.NewWithWriter(io.Discard, "disabled", "json")

	_, err := NewHub(&cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatbot profile")
}

func TestJWTConfig(t *testing.T) {
	cfg := config.Default()
	cfg.JWTSecret = "s3cret"
	cfg.JWTTTL = time.Hour

	jc := JWTConfig(&cfg)
	assert.Equal(t, []byte("s3cret"), jc.Secret)
	assert.Equal(t, cfg.JWTIssuer, jc.Issuer)
	assert.Equal(t, cfg.JWTAudience, jc.Audience)
	assert.Equal(t, time.Hour, jc.TTL)
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = freeAddr(t)
	cfg.ShutdownTimeout = time.Second
	logger := chatlog.NewWithWriter(io.Discard, "disabled", "json")

	application, err := New(&cfg, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := stdhttp.Get("http://" + cfg.Addr + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == stdhttp.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
