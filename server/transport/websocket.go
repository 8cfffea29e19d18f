package transport

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsListener implements Listener over a websocket upgrade endpoint. Clients
// connect with a plain HTTP GET that is upgraded to a websocket, and every
// subsequent message is one binary protocol frame.
type wsListener struct {
	upgrader websocket.Upgrader
	server   *http.Server

	mu     sync.Mutex
	accept chan Conn
	closed chan struct{}
}

// ListenConfig configures a websocket Listener.
type ListenConfig struct {
	// Address is the address to bind the HTTP server to, for example
	// ":7777".
	Address string
	// Path is the HTTP path clients upgrade from. Defaults to "/ws".
	Path string
}

// Listen starts an HTTP server on conf.Address and returns a Listener that
// yields one Conn per accepted websocket upgrade.
func (conf ListenConfig) Listen() (Listener, error) {
	path := conf.Path
	if path == "" {
		path = "/ws"
	}
	l := &wsListener{
		accept: make(chan Conn),
		closed: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, l.handleUpgrade)
	l.server = &http.Server{Addr: conf.Address, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	return l, nil
}

func (l *wsListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := wsConn(conn, r.RemoteAddr)
	select {
	case l.accept <- c:
	case <-l.closed:
		_ = conn.Close()
	}
}

func (l *wsListener) Accept() (Conn, error) {
	select {
	case c := <-l.accept:
		return c, nil
	case <-l.closed:
		return Conn{}, fmt.Errorf("transport: listener closed")
	}
}

func (l *wsListener) Disconnect(conn Conn, reason string) error {
	_ = conn.WritePacket([]byte(reason))
	return conn.Close()
}

func (l *wsListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return l.server.Close()
}

// wsConn adapts a *websocket.Conn to the transport-agnostic Conn value.
func wsConn(conn *websocket.Conn, remoteAddr string) Conn {
	var writeMu sync.Mutex
	return Conn{
		ReadPacket: func() ([]byte, error) {
			_, data, err := conn.ReadMessage()
			return data, err
		},
		WritePacket: func(b []byte) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return conn.WriteMessage(websocket.BinaryMessage, b)
		},
		Close:      conn.Close,
		RemoteAddr: remoteAddr,
	}
}
