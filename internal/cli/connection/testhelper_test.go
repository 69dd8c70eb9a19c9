package connection

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeServer answers each request line with reply(line).
type fakeServer struct {
	ln      net.Listener
	reply   func(line string) string
	accepts atomic.Int32

	mu    sync.Mutex
	lines []string
	conns []net.Conn
}

func newFakeServer(t *testing.T, reply func(line string) string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, reply: reply}
	go s.serve()
	t.Cleanup(func() {
		ln.Close()
		s.dropAll()
	})
	return s
}

func (s *fakeServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *fakeServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.accepts.Add(1)
		s.mu.Lock()
		s.conns = append(s.conns, c)
		s.mu.Unlock()
		go s.handle(c)
	}
}

func (s *fakeServer) handle(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		s.mu.Lock()
		s.lines = append(s.lines, line)
		s.mu.Unlock()
		if _, err := c.Write([]byte(s.reply(line))); err != nil {
			return
		}
	}
}

// dropAll closes every accepted connection.
func (s *fakeServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
}

func (s *fakeServer) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}
