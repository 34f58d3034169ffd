package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHubDeliversToUserSockets(t *testing.T) {
	hub := NewHub()

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		hub.ServeHTTP(c, c.Query("user"))
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?user=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections("u1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("socket was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.SendToUser("u2", "notification.created", map[string]string{"id": "other"})
	hub.SendToUser("u1", "notification.created", map[string]string{"id": "n1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Type != "notification.created" || event.Payload["id"] != "n1" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestSendToUserWithoutSockets(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	hub.SendToUser("nobody", "notification.created", nil)
	if hub.Connections("nobody") != 0 {
		t.Fatal("expected no connections")
	}
}
