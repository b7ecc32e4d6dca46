package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"economy_server/internal/dispatch"
	"economy_server/internal/domain"
	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLifecycle struct {
	mu     sync.Mutex
	starts int
	ends   int
}

func (l *countingLifecycle) Start(p domain.Player) service.SessionStart {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts++
	return service.SessionStart{Player: p}
}

func (l *countingLifecycle) End(domain.Player) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ends++
}

func (l *countingLifecycle) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starts, l.ends
}

func newTestServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-test-secret")
	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, p domain.Player) *websocket.Conn {
	t.Helper()
	tok, err := service.GenerateJWT(p, time.Hour)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readType(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(msg, &m))
		if m["type"] == want {
			return m
		}
	}
}

func TestHubPresenceAndNotify(t *testing.T) {
	life := &countingLifecycle{}
	hub := NewHub(life)
	url := newTestServer(t, hub)
	p := domain.Player{ID: uuid.New(), Name: "steve"}

	first := dial(t, url, p)
	ready := readType(t, first, MsgReady)
	assert.NotNil(t, ready["session"])
	assert.True(t, hub.IsOnline(p.ID))

	second := dial(t, url, p)
	ready = readType(t, second, MsgReady)
	assert.Nil(t, ready["session"])
	starts, _ := life.counts()
	assert.Equal(t, 1, starts)

	hub.Notify(p.ID, domain.Event{Type: domain.EventSale, Message: "sold"})
	assert.Equal(t, "sold", readType(t, first, string(domain.EventSale))["message"])
	assert.Equal(t, "sold", readType(t, second, string(domain.EventSale))["message"])

	require.NoError(t, first.WriteJSON(InboundMessage{Type: MsgPing}))
	readType(t, first, MsgPong)

	_ = first.Close()
	require.Eventually(t, func() bool { return hub.Connections(p.ID) == 1 }, 2*time.Second, 10*time.Millisecond)
	_, ends := life.counts()
	assert.Equal(t, 0, ends)

	_ = second.Close()
	require.Eventually(t, func() bool { return !hub.IsOnline(p.ID) }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { _, e := life.counts(); return e == 1 }, 2*time.Second, 10*time.Millisecond)
}

type countingRunner struct {
	loop *dispatch.Loop
	mu   sync.Mutex
	n    int
}

func (r *countingRunner) Do(ctx context.Context, fn func() error) error {
	r.mu.Lock()
	r.n++
	r.mu.Unlock()
	return r.loop.Do(ctx, fn)
}

func (r *countingRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func TestSessionLifecycleRunsOnLoop(t *testing.T) {
	life := &countingLifecycle{}
	hub := NewHub(life)
	loop := dispatch.NewLoop(0)
	go loop.Run()
	runner := &countingRunner{loop: loop}
	hub.SetRunner(runner)
	url := newTestServer(t, hub)
	p := domain.Player{ID: uuid.New(), Name: "alex"}

	conn := dial(t, url, p)
	readType(t, conn, MsgReady)
	starts, _ := life.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, runner.calls())

	require.NoError(t, loop.Stop(context.Background()))
	_ = conn.Close()
	require.Eventually(t, func() bool { _, e := life.counts(); return e == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, runner.calls(), "end is attempted on the loop, then runs directly once it has stopped")
}

func TestHandleWSRejectsMissingToken(t *testing.T) {
	hub := NewHub(nil)
	url := newTestServer(t, hub)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=bogus", nil)
	require.Error(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestNotifyOfflineIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Notify(uuid.New(), domain.Event{Type: domain.EventSale})
	assert.Equal(t, 0, hub.Online())
}
