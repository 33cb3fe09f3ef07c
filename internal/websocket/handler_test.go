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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickpoll/internal/config"
	"quickpoll/internal/live"
	"quickpoll/internal/poll"
	"quickpoll/internal/router"
	"quickpoll/pkg/types"
)

type nopStore struct{}

func (nopStore) UpsertRoom(context.Context, *poll.Room) error { return nil }

func (nopStore) DeleteRoom(context.Context, string) error { return nil }

func (nopStore) LookupMemberInfo(context.Context, []string, map[string]bool) (map[string]types.MemberInfo, error) {
	return map[string]types.MemberInfo{}, nil
}

func newTestHandler(t *testing.T) (*Handler, *poll.Suite) {
	t.Helper()
	suite := poll.NewSuite()
	registry := live.NewRegistry()
	broadcaster := live.NewBroadcaster(registry, suite)
	eventRouter := router.NewRouter(suite, nopStore{}, registry, broadcaster, []string{"teach"})

	cfg := &config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   5 * time.Second,
		BufferSize:     16,
		AuthUserHeader: "X-Auth-User",
	}
	return NewHandler(eventRouter, cfg), suite
}

func dial(t *testing.T, serverURL, username string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http")
	header := http.Header{"X-Auth-User": []string{username}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var message map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &message))
	return message
}

func TestRejectsMissingAuthHeader(t *testing.T) {
	handler, _ := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJoinRoomOverSocket(t *testing.T) {
	handler, suite := newTestHandler(t)
	room, err := suite.AddRoom("demo", "Demo", "teach", "")
	require.NoError(t, err)
	widget := poll.NewTextWidget("q")
	widget.SetVisible(true)
	room.AddWidget(widget)

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	conn := dial(t, server.URL, "alice")
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":    1,
		"event": "joinRoom",
		"data":  map[string]string{"roomId": "demo"},
	}))

	message := readMessage(t, conn)
	assert.Equal(t, "response", message["event"])
	assert.Equal(t, float64(1), message["id"])

	data := message["data"].(map[string]interface{})
	assert.Equal(t, "success", data["status"])
	layout := data["roomLayout"].(map[string]interface{})
	assert.Equal(t, "demo", layout["id"])
	// Student projection carries no author field.
	_, hasAuthor := layout["author"]
	assert.False(t, hasAuthor)

	sessionID, joined := room.MemberSession("alice")
	assert.True(t, joined)
	assert.NotEmpty(t, sessionID)
}

func TestTeacherFlowOverSocket(t *testing.T) {
	handler, suite := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	conn := dial(t, server.URL, "teach")
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":    1,
		"event": "createRoom",
		"data":  map[string]string{},
	}))

	message := readMessage(t, conn)
	assert.Equal(t, "response", message["event"])
	roomID, ok := message["data"].(string)
	require.True(t, ok)
	assert.True(t, suite.HasRoom(roomID))
}

func TestDisconnectLeavesRooms(t *testing.T) {
	handler, suite := newTestHandler(t)
	room, err := suite.AddRoom("demo", "Demo", "teach", "")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	conn := dial(t, server.URL, "alice")
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":    1,
		"event": "joinRoom",
		"data":  map[string]string{"roomId": "demo"},
	}))
	readMessage(t, conn)
	require.Equal(t, 1, room.ActiveMemberCount())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return room.ActiveMemberCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
