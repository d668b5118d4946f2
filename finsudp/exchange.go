package finsudp

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/arloliu/go-fins/fins"
	"github.com/arloliu/go-fins/internal/pool"
	"github.com/arloliu/go-fins/logger"
)

// exchange sends frame to the peer and waits for the matching reply.
// The caller must hold s.mu.
//
// The frame's sequence id is overwritten with the next sequence id of the session.
// Datagrams from other senders and replies with another sequence id are discarded.
// A reply larger than fins.MaxFrameSize fails with fins.ErrReplyTooLong.
func (s *session) exchange(frame []byte, replyMinLen int) (*fins.Response, error) {
	s.metrics.incExchangeCount()

	resp, err := s.roundTrip(frame, replyMinLen)
	if err != nil {
		s.metrics.incExchangeErrCount()
		if errors.Is(err, ErrReceiveTimeout) {
			s.metrics.incTimeoutCount()
		}

		return nil, err
	}

	return resp, nil
}

func (s *session) roundTrip(frame []byte, replyMinLen int) (*fins.Response, error) {
	s.sid++
	sid := s.sid
	fins.SetSequenceID(frame, sid)

	if s.logger.Level() == logger.DebugLevel {
		s.logger.Debug("finsudp: send request", "handle", s.handle, "peer", s.peer, "sid", sid, "len", len(frame))
	}

	n, err := s.conn.WriteToUDPAddrPort(frame, s.peer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSend, err)
	}
	s.metrics.addSendBytes(n)
	if n != len(frame) {
		return nil, fmt.Errorf("%w: wrote %d of %d bytes", ErrSend, n, len(frame))
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	var exchangeDeadline time.Time
	if s.exchangeTimeout > 0 {
		exchangeDeadline = time.Now().Add(s.exchangeTimeout)
	}

	for {
		deadline := time.Now().Add(s.receiveTimeout)
		if !exchangeDeadline.IsZero() && exchangeDeadline.Before(deadline) {
			deadline = exchangeDeadline
		}
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReceive, err)
		}

		n, from, err := s.conn.ReadFromUDPAddrPort(buf[:])
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, fmt.Errorf("%w: sid %d", ErrReceiveTimeout, sid)
			}

			return nil, fmt.Errorf("%w: %w", ErrReceive, err)
		}

		data := buf[:n]

		if !samePeer(from, s.peer) {
			s.metrics.incDiscardedPeerCount()
			s.logger.Warn("finsudp: datagram from another peer discarded",
				"handle", s.handle, "peer", s.peer, "from", from, "len", n)

			continue
		}

		// a reply too short to carry a sequence id is left to the length check below
		if n >= fins.HeaderSize && fins.SequenceID(data) != sid {
			s.metrics.incDiscardedSeqCount()
			s.logger.Warn("finsudp: delayed reply discarded",
				"handle", s.handle, "peer", s.peer, "sid", sid, "replySID", fins.SequenceID(data))

			continue
		}

		if s.logger.Level() == logger.DebugLevel {
			s.logger.Debug("finsudp: reply received", "handle", s.handle, "sid", sid, "len", n)
		}
		s.metrics.addRecvBytes(n)

		if n > fins.MaxFrameSize {
			return nil, fmt.Errorf("%w: datagram exceeds %d bytes", fins.ErrReplyTooLong, fins.MaxFrameSize)
		}

		return validateReply(data, replyMinLen)
	}
}

// validateReply decodes an accepted reply and checks its length and response codes.
func validateReply(data []byte, replyMinLen int) (*fins.Response, error) {
	resp, err := fins.DecodeResponse(data)
	if err != nil {
		return nil, err
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	if len(data) < replyMinLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", fins.ErrReplyTooShort, len(data), replyMinLen)
	}

	return resp, nil
}

func samePeer(a netip.AddrPort, b netip.AddrPort) bool {
	return a.Port() == b.Port() && a.Addr().Unmap() == b.Addr().Unmap()
}
