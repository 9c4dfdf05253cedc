package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-coordinator/domain/room"
	"github.com/example/room-coordinator/internal/config"
	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/gateway"
	"github.com/example/room-coordinator/modules/rooms"
)

// storePort implements rooms.RoomsPort directly on a RoomStore, bypassing
// the request-reply plumbing so handlers can be exercised in-process.
type storePort struct {
	store *rooms.RoomStore
	gen   *rooms.CodeGenerator
}

func newStorePort(t *testing.T) *storePort {
	t.Helper()
	gen, err := rooms.NewCodeGenerator()
	require.NoError(t, err)
	return &storePort{store: rooms.NewRoomStore(0), gen: gen}
}

func (p *storePort) CreateRoom(_ context.Context, userID, username string) (string, error) {
	for i := 0; i < rooms.DefaultCodeAttempts; i++ {
		code := p.gen.Generate()
		if p.store.CreateRoom(code, userID, username) {
			return code, nil
		}
	}
	return "", rooms.ErrCodeExhausted
}

func (p *storePort) JoinRoom(_ context.Context, username, userID, roomCode string) ([]room.ConnectedUser, error) {
	return p.store.JoinRoom(roomCode, userID, username)
}

func (p *storePort) ConnectedUsers(_ context.Context, roomCode string) ([]room.ConnectedUser, error) {
	return p.store.ConnectedUsers(roomCode), nil
}

func (p *storePort) RoomMessages(_ context.Context, roomCode string) ([]room.Message, bool, error) {
	messages, found := p.store.Messages(roomCode)
	return messages, found, nil
}

func (p *storePort) AppendMessage(_ context.Context, msg room.Message) (bool, error) {
	return p.store.AppendMessage(msg), nil
}

func (p *storePort) Associate(_ context.Context, userID, connID string) error {
	p.store.Associate(userID, connID)
	return nil
}

func (p *storePort) Dissociate(_ context.Context, connID string) (string, bool, error) {
	userID, found := p.store.Dissociate(connID)
	return userID, found, nil
}

func newTestModule(t *testing.T) (*Module, *storePort) {
	t.Helper()
	port := newStorePort(t)

	m := NewModule(config.Config{Port: "0", CORSAllowedOrigins: "*"})
	m.rooms = port
	m.hub = broadcast.NewHub()
	m.gateway = gateway.NewModule()
	m.buildApp()

	return m, port
}

func postJSON(t *testing.T, m *Module, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.App().Test(req)
	require.NoError(t, err)
	return resp
}

func getPath(t *testing.T, m *Module, path string) *http.Response {
	t.Helper()
	resp, err := m.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateRoom(t *testing.T) {
	m, port := newTestModule(t)

	resp := postJSON(t, m, "/api/createRoom", CreateRoomRequest{
		UserID: "u1", Username: "Alice",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[CreateRoomResponse](t, resp)
	require.NotEmpty(t, body.RoomCode)
	assert.Contains(t, body.RoomCode, "-")
	assert.True(t, port.store.HasRoom(body.RoomCode))
}

func TestCreateRoom_MissingIdentity(t *testing.T) {
	tests := []struct {
		name string
		body CreateRoomRequest
	}{
		{"missing userId", CreateRoomRequest{Username: "Alice"}},
		{"missing username", CreateRoomRequest{UserID: "u1"}},
		{"empty body", CreateRoomRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, port := newTestModule(t)

			resp := postJSON(t, m, "/api/createRoom", tt.body)

			// 404, not 400: clients of the original service key off this.
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			body := decodeBody[ErrorResponse](t, resp)
			assert.Equal(t, missingIdentityMessage, body.Error)
			assert.Zero(t, port.store.RoomCount())
		})
	}
}

func TestCreateRoom_InvalidBody(t *testing.T) {
	m, _ := newTestModule(t)

	req := httptest.NewRequest(http.MethodPost, "/api/createRoom",
		strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.App().Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJoinRoom(t *testing.T) {
	m, port := newTestModule(t)
	code, err := port.CreateRoom(context.Background(), "u1", "Alice")
	require.NoError(t, err)

	resp := postJSON(t, m, "/api/joinRoom", JoinRoomRequest{
		Username: "Bob", UserID: "u2", RoomCode: code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	users := port.store.ConnectedUsers(code)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Username)
	assert.Equal(t, "Bob", users[1].Username)
}

func TestJoinRoom_UnknownRoom(t *testing.T) {
	m, _ := newTestModule(t)

	resp := postJSON(t, m, "/api/joinRoom", JoinRoomRequest{
		Username: "Bob", UserID: "u2", RoomCode: "nope",
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "Room nope does not exist.", body.Error)
}

func TestJoinRoom_MissingArguments(t *testing.T) {
	m, _ := newTestModule(t)

	resp := postJSON(t, m, "/api/joinRoom", JoinRoomRequest{
		Username: "Bob", RoomCode: "x",
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, missingArgumentsMessage, body.Error)
}

func TestConnectedUsers(t *testing.T) {
	m, port := newTestModule(t)
	code, err := port.CreateRoom(context.Background(), "u1", "Alice")
	require.NoError(t, err)

	resp := getPath(t, m, "/api/connectedUsers/"+code)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[ConnectedUsersResponse](t, resp)
	require.Len(t, body.Users, 1)
	assert.Equal(t, "u1", body.Users[0].UserID)
}

func TestConnectedUsers_UnknownRoom(t *testing.T) {
	m, _ := newTestModule(t)

	resp := getPath(t, m, "/api/connectedUsers/nope")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[]}`, string(raw), "unknown rooms report an empty list")
}

func TestRoomMessages(t *testing.T) {
	m, port := newTestModule(t)
	ctx := context.Background()
	code, err := port.CreateRoom(ctx, "u1", "Alice")
	require.NoError(t, err)

	t.Run("known room empty history", func(t *testing.T) {
		resp := getPath(t, m, "/api/roomMessages/"+code)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"roomMessages":[]}`, string(raw))
	})

	t.Run("unknown room omits the field", func(t *testing.T) {
		resp := getPath(t, m, "/api/roomMessages/nope")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(raw))
	})

	t.Run("history in order", func(t *testing.T) {
		for _, text := range []string{"first", "second"} {
			_, err := port.AppendMessage(ctx, room.Message{
				Username: "Alice", Message: text, Code: code,
			})
			require.NoError(t, err)
		}

		resp := getPath(t, m, "/api/roomMessages/"+code)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[RoomMessagesResponse](t, resp)
		require.NotNil(t, body.RoomMessages)
		require.Len(t, *body.RoomMessages, 2)
		assert.Equal(t, "first", (*body.RoomMessages)[0].Message)
		assert.Equal(t, "second", (*body.RoomMessages)[1].Message)
	})
}

// TestRoomLifecycle walks one room through creation, a second member
// joining, chat history, and the surviving queries after activity.
func TestRoomLifecycle(t *testing.T) {
	m, port := newTestModule(t)
	ctx := context.Background()

	created := decodeBody[CreateRoomResponse](t,
		postJSON(t, m, "/api/createRoom", CreateRoomRequest{UserID: "alice-id", Username: "Alice"}))
	require.NotEmpty(t, created.RoomCode)

	joinResp := postJSON(t, m, "/api/joinRoom", JoinRoomRequest{
		Username: "Bob", UserID: "bob-id", RoomCode: created.RoomCode,
	})
	require.Equal(t, http.StatusOK, joinResp.StatusCode)

	for _, msg := range []room.Message{
		{Username: "Alice", Message: "hi Bob", Code: created.RoomCode},
		{Username: "Bob", Message: "hi Alice", Code: created.RoomCode},
	} {
		stored, err := port.AppendMessage(ctx, msg)
		require.NoError(t, err)
		assert.True(t, stored)
	}

	users := decodeBody[ConnectedUsersResponse](t,
		getPath(t, m, "/api/connectedUsers/"+created.RoomCode))
	require.Len(t, users.Users, 2)
	assert.Equal(t, []room.ConnectedUser{
		{UserID: "alice-id", Username: "Alice"},
		{UserID: "bob-id", Username: "Bob"},
	}, users.Users)

	history := decodeBody[RoomMessagesResponse](t,
		getPath(t, m, "/api/roomMessages/"+created.RoomCode))
	require.NotNil(t, history.RoomMessages)
	require.Len(t, *history.RoomMessages, 2)
	assert.Equal(t, "hi Bob", (*history.RoomMessages)[0].Message)
	assert.Equal(t, "Bob", (*history.RoomMessages)[1].Username)
}

func TestHealthEndpoint(t *testing.T) {
	m, _ := newTestModule(t)

	resp := getPath(t, m, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
}
