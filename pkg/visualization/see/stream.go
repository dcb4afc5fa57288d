package see

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/physlab/physview.go/pkg/framework"
)

// Stream serves frames to websocket clients. It is both a Publisher and
// a background Runnable hosting the HTTP listener.
type Stream struct {
	Addr string

	lock  sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewStream creates a stream listening on addr.
func NewStream(addr string) *Stream {
	return &Stream{Addr: addr, conns: make(map[*websocket.Conn]struct{})}
}

// Run implements Runnable.
func (s *Stream) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("frame stream on %s", ln.Addr())
	srv := &http.Server{Handler: websocket.Handler(s.serve)}
	return fx.RunWithContextCloser(ctx, ln, func() error {
		err := srv.Serve(ln)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
}

func (s *Stream) serve(conn *websocket.Conn) {
	s.lock.Lock()
	s.conns[conn] = struct{}{}
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		delete(s.conns, conn)
		s.lock.Unlock()
		conn.Close()
	}()
	// drain until the client goes away; frames flow the other way
	var discard []byte
	for {
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			return
		}
	}
}

// Publish implements Publisher. A client too slow to keep up is
// dropped.
func (s *Stream) Publish(frame []byte) error {
	s.lock.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.lock.Unlock()
	for _, conn := range conns {
		if err := websocket.Message.Send(conn, frame); err != nil {
			glog.V(2).Infof("stream client dropped: %v", err)
			conn.Close()
		}
	}
	return nil
}
