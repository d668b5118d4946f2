package finsudp

import "errors"

// Sentinel errors of the UDP client.
var (
	// Session errors.
	ErrSocket         = errors.New("finsudp: socket error")
	ErrSend           = errors.New("finsudp: send error")
	ErrReceive        = errors.New("finsudp: receive error")
	ErrReceiveTimeout = errors.New("finsudp: receive timeout")

	// Pool errors.
	ErrInvalidHandle        = errors.New("finsudp: invalid handle")
	ErrSessionBusy          = errors.New("finsudp: session has an exchange in flight")
	ErrPoolClosed           = errors.New("finsudp: pool is closed")
	ErrUnsupportedTransport = errors.New("finsudp: unsupported transport")
	ErrPoolConfigNil        = errors.New("finsudp: pool config is nil")
)
