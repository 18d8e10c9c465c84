package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(b, &msg))
	return msg
}

func TestPublishReachesClients(t *testing.T) {
	h := NewHub(WithLogger(zerolog.Nop()))
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, h.Publish("profile", map[string]float64{"fps": 60}))
	msg := readMessage(t, conn)
	assert.Equal(t, "profile", msg.Type)
	assert.Equal(t, map[string]any{"fps": float64(60)}, msg.Data)
}

func TestNewClientReceivesLatestMessage(t *testing.T) {
	h := NewHub(WithLogger(zerolog.Nop()))
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	assert.Equal(t, 0, h.Publish("programs", []string{"a", "b"}))
	conn := dial(t, srv)
	msg := readMessage(t, conn)
	assert.Equal(t, "programs", msg.Type)
	assert.Equal(t, []any{"a", "b"}, msg.Data)
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub(WithLogger(zerolog.Nop()), WithQueueSize(1))
	c := &client{send: make(chan []byte, 1)}
	h.clients[c] = true

	assert.Equal(t, 1, h.Publish("profile", 1))
	assert.Equal(t, 0, h.Publish("profile", 2), "full queue drops instead of blocking")
}

func TestHealthReportsLatest(t *testing.T) {
	h := NewHub(WithLogger(zerolog.Nop()))
	h.Publish("profile", map[string]int{"cycles": 3})

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "profile", body["profile"].Type)
}

func TestListenAndServeAndClose(t *testing.T) {
	h := NewHub(WithLogger(zerolog.Nop()))
	addr, err := h.ListenAndServe("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, h.Close(ctx))
}
