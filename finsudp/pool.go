package finsudp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/go-fins/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Pool manages the sessions to remote controllers.
//
// Sessions live in slots that are allocated in chunks and never released, so a handle stays
// valid from Open until Close. Closed slots are reused by later opens, lowest handle first.
//
// All methods are safe for concurrent use. The pool mutex only covers slot bookkeeping, it
// is never held while a session waits for the network.
type Pool struct {
	cfg     *PoolConfig
	logger  logger.Logger
	metrics *PoolMetrics

	mu     sync.Mutex
	slots  []*session
	closed bool

	// index maps the handles of open sessions to their slots.
	index *xsync.MapOf[Handle, *session]
}

// NewPool creates an empty pool. The slots are allocated by the first Open.
func NewPool(cfg *PoolConfig) (*Pool, error) {
	if cfg == nil {
		return nil, ErrPoolConfigNil
	}

	p := &Pool{
		cfg:     cfg,
		logger:  cfg.logger,
		metrics: &PoolMetrics{},
		index:   xsync.NewMapOf[Handle, *session](),
	}

	if cfg.metricsSet != nil {
		p.metrics.Register(cfg.metricsSet, cfg.name)
	}

	return p, nil
}

// Open creates a session to the controller at host:port with FINS node address node.
//
// It binds an ephemeral local UDP port for the session. TransportTCP is rejected with
// ErrUnsupportedTransport. Resolve and bind failures return ErrSocket.
func (p *Pool) Open(host string, port int, transport Transport, node byte) (Handle, error) {
	if transport != TransportUDP {
		return InvalidHandle, fmt.Errorf("%w: %s", ErrUnsupportedTransport, transport)
	}

	peer, err := resolvePeer(host, port)
	if err != nil {
		return InvalidHandle, err
	}

	s, err := p.reserve()
	if err != nil {
		return InvalidHandle, err
	}

	if err := s.bind(p.cfg, p.metrics, peer, node); err != nil {
		p.unreserve(s)
		p.logger.Error("finsudp: failed to open session", "host", host, "port", port, "error", err)

		return InvalidHandle, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		s.mu.Lock()
		_ = s.release()
		s.mu.Unlock()
		p.unreserve(s)

		return InvalidHandle, ErrPoolClosed
	}
	s.state = slotOpen
	p.index.Store(s.handle, s)
	p.mu.Unlock()

	p.metrics.incSessionOpenCount()
	p.logger.Info("finsudp: session opened", "handle", s.handle, "peer", peer, "node", node)

	return s.handle, nil
}

// reserve returns the lowest free slot, growing the pool by one chunk if every slot is taken.
func (p *Pool) reserve() (*session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	for _, s := range p.slots {
		if s.state == slotFree {
			s.state = slotReserved
			return s, nil
		}
	}

	first := len(p.slots)
	for i := range p.cfg.chunkSize {
		p.slots = append(p.slots, &session{handle: Handle(first + i)})
	}

	if p.logger.Level() == logger.DebugLevel {
		p.logger.Debug("finsudp: pool grown", "cap", len(p.slots))
	}

	s := p.slots[first]
	s.state = slotReserved

	return s, nil
}

func (p *Pool) unreserve(s *session) {
	p.mu.Lock()
	s.state = slotFree
	p.mu.Unlock()
}

// Close closes the session h and frees its slot for reuse.
//
// It returns ErrSessionBusy if an exchange is in flight on the session, and
// ErrInvalidHandle if h is not open.
func (p *Pool) Close(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.openSlot(h)
	if err != nil {
		return err
	}

	if !s.mu.TryLock() {
		return fmt.Errorf("%w: handle %d", ErrSessionBusy, h)
	}
	defer s.mu.Unlock()

	p.index.Delete(h)
	s.state = slotFree
	p.metrics.incSessionCloseCount()

	if err := s.release(); err != nil {
		p.logger.Error("finsudp: failed to close session socket", "handle", h, "error", err)
		return err
	}

	p.logger.Info("finsudp: session closed", "handle", h)

	return nil
}

// CloseAll closes every open session and rejects further opens.
//
// In-flight exchanges are waited for, they are bounded by the receive timeouts. The pool
// mutex is released before waiting, so other pool methods don't block meanwhile.
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	p.closed = true

	open := make([]*session, 0, len(p.slots))
	for _, s := range p.slots {
		if s.state != slotOpen {
			continue
		}

		p.index.Delete(s.handle)
		s.state = slotFree
		open = append(open, s)
	}
	p.mu.Unlock()

	var errs error
	for _, s := range open {
		s.mu.Lock()
		p.metrics.incSessionCloseCount()
		if err := s.release(); err != nil {
			errs = errors.Join(errs, err)
		}
		s.mu.Unlock()
	}

	return errs
}

// SessionInfo returns a snapshot of the session h.
func (p *Pool) SessionInfo(h Handle) (SessionInfo, error) {
	s, err := p.acquire(h)
	if err != nil {
		return SessionInfo{}, err
	}
	defer s.mu.Unlock()

	return s.info(), nil
}

// Len returns the number of open sessions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, s := range p.slots {
		if s.state == slotOpen {
			n++
		}
	}

	return n
}

// Cap returns the number of allocated slots.
func (p *Pool) Cap() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.slots)
}

// GetMetrics returns the metrics of the pool.
func (p *Pool) GetMetrics() *PoolMetrics {
	return p.metrics
}

// openSlot returns the open slot of h. The caller must hold p.mu.
func (p *Pool) openSlot(h Handle) (*session, error) {
	if h < 0 || int(h) >= len(p.slots) || p.slots[h].state != slotOpen {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}

	return p.slots[h], nil
}

// acquire locks the session h for an exchange. The caller must unlock s.mu.
//
// The lookup doesn't take the pool mutex. A session closed between lookup and lock is
// detected by its released socket.
func (p *Pool) acquire(h Handle) (*session, error) {
	s, ok := p.index.Load(h)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}

	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}

	return s, nil
}
