package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"economy_server/internal/app"
	"economy_server/internal/clock"
	"economy_server/internal/config"
	"economy_server/internal/domain"
	"economy_server/internal/game"
	httpserver "economy_server/internal/http"
	"economy_server/internal/http/handlers"
	"economy_server/internal/repository"
	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	app   *app.App
	clk   *clock.Manual
	store *repository.MemoryStore
	url   string
}

func startServer(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("e2e-secret")

	cfg := &config.Config{Economy: config.DefaultEconomy(), FlushInterval: time.Hour}
	clk := clock.NewManual(time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC))
	store := repository.NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a := app.Build(ctx, cfg, store, app.Options{
		Clock:     clk,
		Scheduler: clk,
		Flipper:   game.FlipFunc(func() bool { return true }),
	})
	a.Start(ctx)
	t.Cleanup(func() { _ = a.StopLoop(context.Background()) })

	r := gin.New()
	httpserver.RegisterRoutes(r, a.Handler(), httpserver.RouteConfig{
		Health: handlers.NewHealthHandler(store, config.BackendMemory, "e2e"),
		Hub:    a.Hub,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &env{app: a, clk: clk, store: store, url: srv.URL}
}

type client struct {
	domain.Player
	token string
	conn  *websocket.Conn
}

func (e *env) connect(t *testing.T, name string) *client {
	t.Helper()
	p := domain.Player{ID: uuid.New(), Name: name}
	tok, err := service.GenerateJWT(p, time.Hour)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(e.url, "http") + "/ws?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &client{Player: p, token: tok, conn: conn}
	c.await(t, "ready")
	return c
}

// await reads pushed messages until one of the given type arrives.
func (c *client) await(t *testing.T, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, c.conn.SetReadDeadline(deadline))
		_, msg, err := c.conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		var obj map[string]any
		require.NoError(t, json.Unmarshal(msg, &obj))
		if obj["type"] == typ {
			return obj
		}
	}
}

func (e *env) post(t *testing.T, c *client, path, payload string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.url+path, strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

// drain waits until every callback queued on the loop so far has run.
func (e *env) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, e.app.Loop.Do(context.Background(), func() error { return nil }))
}

func TestE2E_CoinflipOverWebSocket(t *testing.T) {
	e := startServer(t)
	a := e.connect(t, "Alpha")
	b := e.connect(t, "Bravo")

	hundred := decimal.NewFromInt(100)
	require.True(t, e.app.Ledger.Get(a.ID).Equal(hundred), "starting balance granted on connect")

	code, body := e.post(t, a, "/api/v1/coinflip", `{"target":"bravo","amount":"50"}`)
	require.Equal(t, http.StatusOK, code, body)
	b.await(t, string(domain.EventChallengeReceived))

	code, body = e.post(t, b, "/api/v1/coinflip/accept", "")
	require.Equal(t, http.StatusOK, code, body)
	a.await(t, string(domain.EventFlipStarted))

	assert.True(t, e.app.Ledger.Get(a.ID).Equal(decimal.NewFromInt(50)), "stakes escrowed")
	assert.True(t, e.app.Ledger.Get(b.ID).Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, e.app.Wagers.InFlight())

	e.clk.Advance(3 * time.Second)
	e.drain(t)

	a.await(t, string(domain.EventFlipResult))
	assert.True(t, e.app.Ledger.Get(a.ID).Equal(decimal.NewFromInt(150)))
	assert.True(t, e.app.Ledger.Get(b.ID).Equal(decimal.NewFromInt(50)))
	assert.True(t, e.app.Ledger.Get(a.ID).Add(e.app.Ledger.Get(b.ID)).Equal(decimal.NewFromInt(200)), "coins conserved")
	assert.Equal(t, 0, e.app.Wagers.InFlight())

	require.NoError(t, e.app.Flush(context.Background()))
	raw, err := e.store.Load(context.Background(), repository.DocBalances)
	require.NoError(t, err)
	var doc domain.BalancesDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.True(t, doc.Balances[a.ID].Equal(decimal.NewFromInt(150)))
}

func TestE2E_ChallengeExpires(t *testing.T) {
	e := startServer(t)
	a := e.connect(t, "Alpha")
	b := e.connect(t, "Bravo")

	code, body := e.post(t, a, "/api/v1/coinflip", `{"target":"Bravo","amount":"10"}`)
	require.Equal(t, http.StatusOK, code, body)

	e.clk.Advance(61 * time.Second)
	e.drain(t)
	a.await(t, string(domain.EventChallengeExpired))

	code, _ = e.post(t, b, "/api/v1/coinflip/accept", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 0, e.app.Wagers.PendingCount())
}

func TestE2E_RestartRestoresState(t *testing.T) {
	e := startServer(t)
	a := e.connect(t, "Alpha")
	require.NoError(t, e.app.Flush(context.Background()))

	cfg := &config.Config{Economy: config.DefaultEconomy()}
	again := app.Build(context.Background(), cfg, e.store, app.Options{Inline: true})

	assert.True(t, again.Ledger.Get(a.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, again.Directory.ReceivedStartingBalance(a.ID), "starting balance is granted once")
	assert.Equal(t, "Alpha", again.Directory.Name(a.ID))
}
