package transport

import (
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// DialWebsocket connects to a websocket serving the protocol.
func DialWebsocket(wsURL string) (*websocket.Conn, error) {
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// ServeFunc serves one connection until it returns.
type ServeFunc func(io.ReadWriteCloser) error

// WebsocketHandler serves one websocket connection at a time; further
// connections are closed immediately while one is being served.
func WebsocketHandler(serve ServeFunc) http.Handler {
	busy := make(chan struct{}, 1)
	return websocket.Handler(func(conn *websocket.Conn) {
		select {
		case busy <- struct{}{}:
		default:
			glog.Warningf("websocket %s rejected: busy", conn.Request().RemoteAddr)
			conn.Close()
			return
		}
		defer func() { <-busy }()
		conn.PayloadType = websocket.BinaryFrame
		glog.Infof("websocket %s connected", conn.Request().RemoteAddr)
		if err := serve(conn); err != nil {
			glog.Infof("websocket %s closed: %v", conn.Request().RemoteAddr, err)
		}
	})
}
