package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebsocketConnRoundTripsBinaryFrames(t *testing.T) {
	l := &wsListener{accept: make(chan Conn), closed: make(chan struct{}), server: &http.Server{}}
	srv := httptest.NewServer(http.HandlerFunc(l.handleUpgrade))
	defer srv.Close()
	defer l.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var serverConn Conn
	select {
	case serverConn = <-l.accept:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to accept the upgrade")
	}

	if err := client.WriteMessage(websocket.BinaryMessage, []byte("hello from client")); err != nil {
		t.Fatalf("client write: %v", err)
	}
	got, err := serverConn.ReadPacket()
	if err != nil {
		t.Fatalf("server ReadPacket: %v", err)
	}
	if string(got) != "hello from client" {
		t.Errorf("server received %q, want %q", got, "hello from client")
	}

	if err := serverConn.WritePacket([]byte("hello from server")); err != nil {
		t.Fatalf("server WritePacket: %v", err)
	}
	_, reply, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if string(reply) != "hello from server" {
		t.Errorf("client received %q, want %q", reply, "hello from server")
	}

	if serverConn.RemoteAddr == "" {
		t.Error("RemoteAddr should be populated from the HTTP request")
	}
}

func TestWsListenerCloseUnblocksAccept(t *testing.T) {
	l := &wsListener{accept: make(chan Conn), closed: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	close(l.closed)

	select {
	case err := <-done:
		if err == nil {
			t.Error("Accept should return an error once the listener is closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Accept did not unblock after Close")
	}
}
