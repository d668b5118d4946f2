package finsudp

import (
	"errors"
	"net"
	"net/netip"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/go-fins/fins"
	"github.com/arloliu/go-fins/logger"
)

func TestMain(m *testing.M) {
	level, err := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logger.InfoLevel
	}
	logger.SetLevel(level)

	os.Exit(m.Run())
}

// replyFunc builds the datagrams a stub sends back for a decoded command.
// frame is the raw request, cmd is nil if the request couldn't be decoded.
type replyFunc func(cmd fins.Command, frame []byte) [][]byte

// plcStub is a loopback UDP responder emulating a controller.
type plcStub struct {
	conn *net.UDPConn

	mu       sync.Mutex
	memory   map[fins.MemoryArea]map[uint16]uint16
	requests [][]byte
	reply    replyFunc

	received chan []byte
}

// newPLCStub starts a stub on an ephemeral loopback port. A nil reply answers memory and
// controller data commands from the stub memory.
func newPLCStub(t *testing.T, reply replyFunc) *plcStub {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("newPLCStub: %v", err)
	}

	s := &plcStub{
		conn:     conn,
		memory:   make(map[fins.MemoryArea]map[uint16]uint16),
		received: make(chan []byte, 512),
	}
	if reply == nil {
		reply = s.answer
	}
	s.reply = reply

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.serve()
	}()

	t.Cleanup(func() {
		_ = conn.Close()
		<-done
	})

	return s
}

func (s *plcStub) Port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *plcStub) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4([4]byte{127, 0, 0, 1}), uint16(s.Port())) //nolint:gosec // port from LocalAddr
}

func (s *plcStub) setReply(reply replyFunc) {
	s.mu.Lock()
	s.reply = reply
	s.mu.Unlock()
}

func (s *plcStub) set(area fins.MemoryArea, address uint16, words ...uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memory[area] == nil {
		s.memory[area] = make(map[uint16]uint16)
	}
	for i, w := range words {
		s.memory[area][address+uint16(i)] = w //nolint:gosec // test addresses are small
	}
}

func (s *plcStub) get(area fins.MemoryArea, address uint16) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.memory[area][address]
}

// Requests returns a copy of every request received so far.
func (s *plcStub) Requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]byte, len(s.requests))
	copy(out, s.requests)

	return out
}

func (s *plcStub) serve() {
	buf := make([]byte, fins.MaxFrameSize)
	for {
		n, from, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			continue
		}

		frame := append([]byte(nil), buf[:n]...)

		s.mu.Lock()
		s.requests = append(s.requests, frame)
		reply := s.reply
		s.mu.Unlock()

		select {
		case s.received <- frame:
		default:
		}

		cmd, _ := fins.DecodeCommand(frame)
		for _, out := range reply(cmd, frame) {
			_, _ = s.conn.WriteToUDPAddrPort(out, from)
		}
	}
}

// answer is the default reply function, it serves reads and writes from the stub memory.
func (s *plcStub) answer(cmd fins.Command, _ []byte) [][]byte {
	switch c := cmd.(type) {
	case *fins.IdentityReadCommand:
		payload := fins.NewControllerIdentityPayload(fins.ControllerIdentity{Model: "CJ2M-CPU31", Version: "02.01"})
		return [][]byte{fins.NewResponseFrame(*c.Header(), 0, 0, payload)}

	case *fins.MemoryReadCommand:
		words := make([]uint16, c.Count)
		for i := range words {
			words[i] = s.get(c.Area, c.Address+uint16(i)) //nolint:gosec // bounded by Count
		}

		return [][]byte{fins.NewResponseFrame(*c.Header(), 0, 0, fins.NewWordsPayload(words))}

	case *fins.MemoryWriteCommand:
		s.set(c.Area, c.Address, c.Words...)
		return [][]byte{fins.NewResponseFrame(*c.Header(), 0, 0, nil)}
	}

	return nil
}

// newTestPool creates a pool bound to loopback with short timeouts suitable for tests.
func newTestPool(t *testing.T, opts ...PoolOption) *Pool {
	t.Helper()

	defaults := []PoolOption{
		WithReceiveTimeout(100 * time.Millisecond),
		WithLocalAddr("127.0.0.1"),
	}

	cfg, err := NewPoolConfig(append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestPool: %v", err)
	}

	p, err := NewPool(cfg)
	if err != nil {
		t.Fatalf("newTestPool: %v", err)
	}
	t.Cleanup(func() { _ = p.CloseAll() })

	return p
}

// openStub opens a session of p to stub with node address 0x0A.
func openStub(t *testing.T, p *Pool, stub *plcStub) Handle {
	t.Helper()

	h, err := p.Open("127.0.0.1", stub.Port(), TransportUDP, 0x0A)
	if err != nil {
		t.Fatalf("openStub: %v", err)
	}

	return h
}

// waitRequest waits until stub received a request.
func waitRequest(t *testing.T, stub *plcStub) []byte {
	t.Helper()

	select {
	case frame := <-stub.received:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("waitRequest: no request received")
		return nil
	}
}
