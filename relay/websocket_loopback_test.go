package relay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestWebsocketLoopbackRelaysToRegisteredClient(t *testing.T) {
	r := NewWebsocketLoopback(nil)
	received := make(chan []byte, 4)
	r.SetReceiver(func(d []byte) { received <- d })

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	defer r.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	var pk [32]byte
	pk[0] = 0xAA

	// the first envelope a client sends registers it for its public key
	require.NoError(t, client.WriteJSON(relayEnvelope{To: pk, Data: []byte("hello relay")}))
	select {
	case d := <-received:
		require.Equal(t, []byte("hello relay"), d)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never saw the registration envelope")
	}

	require.NoError(t, r.SendTo(context.Background(), pk, []byte("oob handshake bytes")))

	var env relayEnvelope
	require.NoError(t, client.ReadJSON(&env))
	require.Equal(t, pk, env.To)
	require.Equal(t, []byte("oob handshake bytes"), env.Data)
}

func TestWebsocketLoopbackUnknownKeyErrors(t *testing.T) {
	r := NewWebsocketLoopback(nil)
	var pk [32]byte
	pk[0] = 1
	require.Error(t, r.SendTo(context.Background(), pk, []byte("x")))
}
