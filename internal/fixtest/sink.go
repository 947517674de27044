package fixtest

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

type SinkOpts struct {
	// Keep retains every decoded message. Leave it off for long runs.
	Keep bool

	// OnMessage is called from the connection's goroutine for every decoded
	// message.
	OnMessage func(*Message)

	ReadBufferSize int
}

// Sink is a TCP listener which decodes and counts every message it receives.
type Sink struct {
	opts SinkOpts
	ln   net.Listener

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	msgs   []*Message
	count  int
	bytes  int64
	err    error
	closed bool

	wg sync.WaitGroup
}

func NewSink(addr string, opts SinkOpts) (*Sink, error) {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = 64 * 1024
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Sink{
		opts:  opts,
		ln:    ln,
		conns: make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return s, nil
}

func (s *Sink) Addr() *net.TCPAddr {
	return s.ln.Addr().(*net.TCPAddr)
}

func (s *Sink) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Sink) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	b := make([]byte, s.opts.ReadBufferSize)
	var pending []byte
	for {
		n, err := conn.Read(b)
		if n > 0 {
			pending = append(pending, b[:n]...)
			var msgs [][]byte
			msgs, pending = Split(pending)
			s.record(msgs, n)

			// copy the tail so the consumed prefix can be collected
			pending = append(pending[:0:0], pending...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.setErr(err)
			}
			if len(pending) > 0 {
				s.setErr(ErrIncomplete)
			}
			return
		}
	}
}

func (s *Sink) record(raw [][]byte, n int) {
	decoded := make([]*Message, 0, len(raw))
	for _, r := range raw {
		m, err := Decode(append([]byte(nil), r...))
		if err != nil {
			s.setErr(err)
			continue
		}
		decoded = append(decoded, m)
	}

	s.mu.Lock()
	s.bytes += int64(n)
	s.count += len(decoded)
	if s.opts.Keep {
		s.msgs = append(s.msgs, decoded...)
	}
	s.mu.Unlock()

	if s.opts.OnMessage != nil {
		for _, m := range decoded {
			s.opts.OnMessage(m)
		}
	}
}

func (s *Sink) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Err returns the first decode or read error seen on any connection.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Sink) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

func (s *Sink) Messages() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Message(nil), s.msgs...)
}

// WaitFor polls until at least n messages were decoded or the timeout
// elapses.
func (s *Sink) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.Count() >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *Sink) Close() error {
	s.mu.Lock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	err := s.ln.Close()
	s.wg.Wait()
	return err
}
