package finsudp

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/arloliu/go-fins/fins"
	"github.com/arloliu/go-fins/logger"
)

// Handle identifies an open session of a Pool.
type Handle int

// InvalidHandle is returned together with an error by Pool.Open.
const InvalidHandle Handle = -1

// Transport selects the transport of a session.
type Transport int

const (
	// TransportUDP is FINS/UDP.
	TransportUDP Transport = iota
	// TransportTCP is FINS/TCP, not supported.
	TransportTCP
)

func (t Transport) String() string {
	switch t {
	case TransportUDP:
		return "udp"
	case TransportTCP:
		return "tcp"
	default:
		return "Transport(" + strconv.Itoa(int(t)) + ")"
	}
}

// SessionInfo is a snapshot of an open session.
type SessionInfo struct {
	Handle Handle
	// Peer is the controller address replies must come from.
	Peer netip.AddrPort
	// Local is the ephemeral local address of the session socket.
	Local netip.AddrPort
	// Destination is the FINS address of the controller.
	Destination fins.Address
	// Source is the FINS address of the client.
	Source fins.Address
	// SequenceID is the service id of the last request sent.
	SequenceID byte
}

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotOpen
)

// session is one slot of a Pool.
//
// state is guarded by the pool mutex. All other fields are guarded by mu, which is held
// for the whole duration of an exchange.
type session struct {
	handle Handle
	state  slotState

	mu   sync.Mutex
	conn *net.UDPConn
	peer netip.AddrPort
	dest fins.Address
	src  fins.Address
	sid  byte

	receiveTimeout  time.Duration
	exchangeTimeout time.Duration

	logger  logger.Logger
	metrics *PoolMetrics
}

// bind creates the session socket and connects the session to peer. It must be called on a
// reserved slot.
func (s *session) bind(cfg *PoolConfig, metrics *PoolMetrics, peer netip.AddrPort, node byte) error {
	conn, err := net.ListenUDP("udp4", net.UDPAddrFromAddrPort(netip.AddrPortFrom(cfg.localAddr, 0)))
	if err != nil {
		return fmt.Errorf("%w: bind: %w", ErrSocket, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn = conn
	s.peer = peer
	s.dest = fins.Address{Network: 0x00, Node: node, Unit: 0x00}
	s.src = fins.Address{Network: 0x00, Node: cfg.sourceNode, Unit: 0x00}
	s.sid = 1
	s.receiveTimeout = cfg.receiveTimeout
	s.exchangeTimeout = cfg.exchangeTimeout
	s.logger = cfg.logger
	s.metrics = metrics

	return nil
}

// release closes the session socket. The caller must hold s.mu.
func (s *session) release() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.peer = netip.AddrPort{}

	if err != nil {
		return fmt.Errorf("%w: close: %w", ErrSocket, err)
	}

	return nil
}

// info returns a snapshot of the session. The caller must hold s.mu.
func (s *session) info() SessionInfo {
	var local netip.AddrPort
	if addr, ok := s.conn.LocalAddr().(*net.UDPAddr); ok {
		ap := addr.AddrPort()
		local = netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
	}

	return SessionInfo{
		Handle:      s.handle,
		Peer:        s.peer,
		Local:       local,
		Destination: s.dest,
		Source:      s.src,
		SequenceID:  s.sid,
	}
}

// resolvePeer resolves host and port to an IPv4 UDP address.
func resolvePeer(host string, port int) (netip.AddrPort, error) {
	if port <= 0 || port > 65535 {
		return netip.AddrPort{}, fmt.Errorf("%w: port %d out of range [1, 65535]", ErrSocket, port)
	}

	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: resolve %q: %w", ErrSocket, host, err)
	}

	ap := addr.AddrPort()

	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}
