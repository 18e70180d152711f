package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsTestServer(h *WSHandler) *httptest.Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/receipts/:id", h.HandleWS)
	return httptest.NewServer(router)
}

func dialReceipt(serverURL, receiptID string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/receipts/" + receiptID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	return conn, err
}

func TestBroadcastUpdateOnlyReachesWatchedReceipt(t *testing.T) {
	h := NewWSHandler()
	server := wsTestServer(h)
	defer server.Close()

	watcher, err := dialReceipt(server.URL, "r1")
	require.NoError(t, err)
	defer watcher.Close()

	bystander, err := dialReceipt(server.URL, "r2")
	require.NoError(t, err)
	defer bystander.Close()

	time.Sleep(100 * time.Millisecond)
	h.BroadcastUpdate("r1", "receipt_updated", "user-1")

	watcher.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := watcher.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "receipt_updated")
	assert.Contains(t, string(msg), "user-1")

	bystander.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = bystander.ReadMessage()
	assert.Error(t, err, "client watching another receipt must not receive the broadcast")
}

func TestHandleWSPinsSessionsUnderConcurrentConnects(t *testing.T) {
	h := NewWSHandler()
	server := wsTestServer(h)
	defer server.Close()

	const clients = 16
	conns := make([]*websocket.Conn, clients)
	errs := make([]error, clients)

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conns[i], errs[i] = dialReceipt(server.URL, fmt.Sprintf("r%d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < clients; i++ {
		require.NoError(t, errs[i])
		defer conns[i].Close()
	}
	time.Sleep(200 * time.Millisecond)

	// Each receipt gets its own event; every client must see exactly the one
	// for the receipt it dialed, regardless of upgrade interleaving.
	for i := 0; i < clients; i++ {
		h.BroadcastUpdate(fmt.Sprintf("r%d", i), fmt.Sprintf("update-%d", i), "user")
	}

	for i := 0; i < clients; i++ {
		conns[i].SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conns[i].ReadMessage()
		require.NoErrorf(t, err, "client %d received no broadcast", i)
		assert.Contains(t, string(msg), fmt.Sprintf(`"update-%d"`, i))

		conns[i].SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, _, err = conns[i].ReadMessage()
		assert.Errorf(t, err, "client %d received a broadcast for another receipt", i)
	}
}
