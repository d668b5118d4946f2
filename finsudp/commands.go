package finsudp

import (
	"github.com/arloliu/go-fins/fins"
)

// ReadControllerIdentity reads the model and version of the controller of session h.
func (p *Pool) ReadControllerIdentity(h Handle) (*fins.ControllerIdentity, error) {
	s, err := p.acquire(h)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	cmd := fins.NewIdentityReadCommand(s.dest, s.src)

	resp, err := s.send(cmd)
	if err != nil {
		return nil, err
	}

	return resp.ControllerIdentity()
}

// ReadMemory reads count words starting at address of the memory area identified by the
// letter area (A, C, D, H or W, case-insensitive).
func (p *Pool) ReadMemory(h Handle, area byte, address uint16, count uint16) ([]uint16, error) {
	code, err := fins.ParseMemoryArea(area)
	if err != nil {
		return nil, err
	}

	s, err := p.acquire(h)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	cmd, err := fins.NewMemoryReadCommand(s.dest, s.src, code, address, count)
	if err != nil {
		return nil, err
	}

	resp, err := s.send(cmd)
	if err != nil {
		return nil, err
	}

	return resp.Words(int(count))
}

// WriteMemory writes words starting at address of the memory area identified by the
// letter area (A, C, D, H or W, case-insensitive).
func (p *Pool) WriteMemory(h Handle, area byte, address uint16, words []uint16) error {
	code, err := fins.ParseMemoryArea(area)
	if err != nil {
		return err
	}

	s, err := p.acquire(h)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	cmd, err := fins.NewMemoryWriteCommand(s.dest, s.src, code, address, words)
	if err != nil {
		return err
	}

	_, err = s.send(cmd)

	return err
}

// ReadFloat is reserved for floating-point memory access and returns fins.ErrNotImplemented.
func (p *Pool) ReadFloat(_ Handle, _ byte, _ uint16, _ uint16) ([]float32, error) {
	return nil, fins.ErrNotImplemented
}

// WriteFloat is reserved for floating-point memory access and returns fins.ErrNotImplemented.
func (p *Pool) WriteFloat(_ Handle, _ byte, _ uint16, _ []float32) error {
	return fins.ErrNotImplemented
}

// ReadBitMemory is reserved for bit access and returns fins.ErrNotImplemented.
func (p *Pool) ReadBitMemory(_ Handle, _ byte, _ uint16, _ byte, _ uint16) ([]bool, error) {
	return nil, fins.ErrNotImplemented
}

// WriteBitMemory is reserved for bit access and returns fins.ErrNotImplemented.
func (p *Pool) WriteBitMemory(_ Handle, _ byte, _ uint16, _ byte, _ []bool) error {
	return fins.ErrNotImplemented
}

// send runs an exchange for cmd and checks that the reply comes from the addressed node.
// The caller must hold s.mu.
func (s *session) send(cmd fins.Command) (*fins.Response, error) {
	frame, err := cmd.MarshalBinary()
	if err != nil {
		return nil, err
	}

	resp, err := s.exchange(frame, cmd.ReplyMinLen())
	if err != nil {
		return nil, err
	}

	if err := resp.CheckSource(*cmd.Header()); err != nil {
		s.metrics.incExchangeErrCount()
		s.logger.Warn("finsudp: reply from unexpected node", "handle", s.handle, "error", err)

		return nil, err
	}

	return resp, nil
}
