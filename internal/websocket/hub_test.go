package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frota/internal/auth"
	"frota/internal/middleware"
	"frota/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoardServer(t *testing.T) (*Hub, *httptest.Server, *auth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer([]byte("ws-secret"), time.Hour, 24*time.Hour)
	gate := middleware.NewGate(issuer, middleware.CookieSettings{Name: "sess"})

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, gate, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv, issuer
}

func tokenWith(t *testing.T, issuer *auth.Issuer, grants ...string) string {
	t.Helper()
	_, token, err := issuer.Issue(auth.Identity{UserID: 2, Login: "board"}, auth.NewGrantSet(grants), false)
	require.NoError(t, err)
	return token
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeWs_BroadcastsRideEvents(t *testing.T) {
	hub, srv, issuer := newBoardServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, tokenWith(t, issuer, "Rides:View")), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishRideEvent(service.RideEventCompleted, service.RideResponse{ID: 42, ClientName: "Acme"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, service.RideEventCompleted, event.Type)
	assert.Equal(t, uint(42), event.Ride.ID)
	assert.Equal(t, "Acme", event.Ride.ClientName)
}

func TestServeWs_Rejections(t *testing.T) {
	_, srv, issuer := newBoardServer(t)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"no ride grant", tokenWith(t, issuer, "Clients:View"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestPublishRideEvent_NeverBlocks(t *testing.T) {
	hub := NewHub(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.PublishRideEvent(service.RideEventUpdated, service.RideResponse{ID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked without a running hub")
	}
}

func TestServeWs_AfterShutdownDoesNotHang(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer([]byte("ws-secret"), time.Hour, 24*time.Hour)
	gate := middleware.NewGate(issuer, middleware.CookieSettings{Name: "sess"})
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	served := make(chan struct{}, 4)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, gate, c)
		served <- struct{}{}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	token := tokenWith(t, issuer, "Rides:View")

	viewer, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer viewer.Close()
	<-served
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// the connected viewer is closed by the hub
	_ = viewer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = viewer.ReadMessage()
	assert.Error(t, err)

	late, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer late.Close()

	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade after shutdown blocked")
	}
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
