package services

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

	"nutridiary/models"
)

func TestRealtimeHub_BroadcastsAuthState(t *testing.T) {
	hub := NewRealtimeHub()
	hub.Broadcast(models.InitialAuthState())

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(&WSClient{Conn: conn})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() models.UserAuthState {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var s models.UserAuthState
		require.NoError(t, json.Unmarshal(msg, &s))
		return s
	}

	assert.True(t, read().Loading, "new clients get the latest state")

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	loggedIn := true
	states := make(chan models.UserAuthState, 1)
	states <- models.UserAuthState{LoggedIn: &loggedIn, FullyRegistered: true}
	close(states)
	hub.Follow(states)

	s := read()
	assert.True(t, s.IsLoggedIn())
	assert.True(t, s.FullyRegistered)
}

func TestRealtimeHub_StaleReplayIsDropped(t *testing.T) {
	upgrader := websocket.Upgrader{}
	clients := make(chan *WSClient, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		clients <- &WSClient{Conn: conn}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	c := <-clients

	// A broadcast overtakes the replay captured at registration.
	require.NoError(t, c.deliver(2, []byte(`"newer"`)))
	require.NoError(t, c.deliver(1, []byte(`"older"`)))
	require.NoError(t, c.deliver(3, []byte(`"newest"`)))

	var got []string
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		got = append(got, string(msg))
	}
	assert.Equal(t, []string{`"newer"`, `"newest"`}, got)
}
