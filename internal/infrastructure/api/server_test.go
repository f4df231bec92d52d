package api

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archie-shopify-sync/internal/infrastructure/pubsub"
)

func TestServerShutdownEndsEventStreams(t *testing.T) {
	ps := pubsub.NewRunEventPubSub(zerolog.Nop())
	srv := NewServer("127.0.0.1:0", newTestServer(t, &fakeSyncService{}, ps))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/sync/acme.myshopify.com/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)
	require.Eventually(t, func() bool { return ps.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	started := time.Now()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.ErrorIs(t, <-served, http.ErrServerClosed)
	assert.Eventually(t, func() bool { return ps.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}
