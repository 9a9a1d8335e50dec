package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artfain/dat-exchange/core"
)

func TestWebSocketFeedDeliversLedgerEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := EventBus.New()
	exchange := core.NewExchange("node-test", zerolog.Nop(), bus)
	hub, err := NewHub(bus, zerolog.Nop())
	require.NoError(t, err)

	router := gin.New()
	NewServer(exchange, hub, zerolog.Nop()).Register(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The handler registers the connection right after the upgrade; wait
	// for it before committing the mutation that triggers the broadcast.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err = exchange.CreateWallet("alice", 1000)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt core.Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, core.EventWalletCreated, evt.Type)
}

func TestWebSocketDisconnectedClientIsDropped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := EventBus.New()
	exchange := core.NewExchange("node-test", zerolog.Nop(), bus)
	hub, err := NewHub(bus, zerolog.Nop())
	require.NoError(t, err)

	router := gin.New()
	NewServer(exchange, hub, zerolog.Nop()).Register(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}
