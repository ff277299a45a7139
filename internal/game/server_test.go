package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
	"github.com/jacl-coder/BaseDefender-Server/internal/protocol"
	"github.com/jacl-coder/BaseDefender-Server/pkg/auth"
)

func newTestServer(t *testing.T) (*GameServer, *httptest.Server, *auth.Manager) {
	t.Helper()
	cfg := config.Default()
	tokens := auth.NewManager("secret", time.Hour)
	s := NewGameServer(&cfg, tokens)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		for _, room := range s.ListRooms() {
			room.Stop()
		}
	})
	return s, ts, tokens
}

func dialWS(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, codec protocol.Codec, typ string) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		msg, err := codec.Decode(data)
		require.NoError(t, err)
		if msg.Type == typ {
			return msg
		}
	}
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoomsEndpoint(t *testing.T) {
	s, ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/rooms", "application/json", strings.NewReader(`{"name":"solo"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var info models.RoomInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "solo", info.Name)
	assert.Equal(t, 1, info.MaxPlayers)

	room, ok := s.GetRoom(info.ID)
	require.True(t, ok)
	assert.Equal(t, Arena{Width: 1280, Height: 720}, room.Arena())

	list, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer list.Body.Close()
	var infos []models.RoomInfo
	require.NoError(t, json.NewDecoder(list.Body).Decode(&infos))
	assert.Len(t, infos, 1)
}

func TestRoomLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxRoomCount = 1
	s := NewGameServer(&cfg, nil)
	t.Cleanup(func() {
		for _, room := range s.ListRooms() {
			room.Stop()
		}
	})

	_, err := s.CreateRoom("a", Arena{})
	require.NoError(t, err)
	_, err = s.CreateRoom("b", Arena{})
	assert.ErrorIs(t, err, ErrTooManyRooms)
	assert.Equal(t, 1, s.RoomCount())
}

func TestWSRejectsMissingToken(t *testing.T) {
	_, ts, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSRejectsUnknownCodec(t *testing.T) {
	_, ts, tokens := newTestServer(t)
	token, _, err := tokens.IssueGuest("alice")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?codec=xml&token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWSPlayFlowJSON(t *testing.T) {
	_, ts, tokens := newTestServer(t)
	token, _, err := tokens.IssueGuest("alice")
	require.NoError(t, err)
	codec := protocol.JSONCodec{}
	conn := dialWS(t, ts, "token="+token)

	send := func(typ string, payload any) {
		data, err := codec.Encode(typ, payload)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	}

	send(protocol.MsgStart, nil)
	errMsg := readUntil(t, conn, codec, protocol.MsgError)
	var e protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &e))
	assert.Equal(t, "not_in_room", e.Code)

	send(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Width: 800, Height: 600})
	joined := readUntil(t, conn, codec, protocol.MsgRoomJoined)
	var rj protocol.RoomJoinedPayload
	require.NoError(t, json.Unmarshal(joined.Payload, &rj))
	assert.Equal(t, "alice", rj.Room.Name)
	assert.Equal(t, 800.0, rj.Width)

	send(protocol.MsgStart, nil)
	state := readUntil(t, conn, codec, protocol.MsgState)
	var frame protocol.StateFrame
	require.NoError(t, json.Unmarshal(state.Payload, &frame))
	assert.Equal(t, 1, frame.Wave)
	assert.Equal(t, 400.0, frame.Base.Position.X)
}

func TestWSMsgpackCodec(t *testing.T) {
	_, ts, tokens := newTestServer(t)
	token, _, err := tokens.IssueGuest("bob")
	require.NoError(t, err)
	codec := protocol.MsgpackCodec{}
	conn := dialWS(t, ts, "codec=msgpack&token="+token)

	data, err := codec.Encode(protocol.MsgCreateRoom, nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		frameType, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, frameType)

		msg, err := codec.Decode(raw)
		require.NoError(t, err)
		if msg.Type == protocol.MsgRoomJoined {
			return
		}
	}
}
