package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func TestWSManager_BroadcastsAnalyses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewWSManager(nil, nil)
	m.Start(ctx)
	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	m.PublishAnalysis(domain.AnalysisRecord{ID: "a1", Target: "nas"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string                `json:"type"`
		Payload domain.AnalysisRecord `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "analysis", msg.Type)
	assert.Equal(t, "a1", msg.Payload.ID)
	assert.Equal(t, "nas", msg.Payload.Target)
}

func TestWSManager_OriginCheck(t *testing.T) {
	m := NewWSManager([]string{"http://dashboard.lan"}, nil)
	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	conn, _, err := dial(t, srv, "http://dashboard.lan")
	require.NoError(t, err)
	conn.Close()

	conn, _, err = dial(t, srv, srv.URL)
	require.NoError(t, err, "same host is accepted")
	conn.Close()

	_, resp, err := dial(t, srv, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWSManager_RemovesDisconnectedClients(t *testing.T) {
	m := NewWSManager(nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return m.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWSManager_PublishDoesNotBlockWhenQueueFull(t *testing.T) {
	m := NewWSManager(nil, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			m.PublishAnalysis(domain.AnalysisRecord{ID: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishAnalysis blocked without a running broadcaster")
	}
}

func TestWSManager_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewWSManager(nil, nil)
	m.Start(ctx)
	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return m.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
