package finsudp

import (
	"testing"

	"github.com/arloliu/go-fins/fins"
	"github.com/stretchr/testify/require"
)

func TestPool_ReadMemory(t *testing.T) {
	require := require.New(t)

	stub := newPLCStub(t, nil)
	stub.set(fins.AreaCIO, 100, 1, 2)

	p := newTestPool(t)
	h := openStub(t, p, stub)

	words, err := p.ReadMemory(h, 'C', 100, 2)
	require.NoError(err)
	require.Equal([]uint16{1, 2}, words)

	// lower-case letters select the same area
	words, err = p.ReadMemory(h, 'c', 101, 1)
	require.NoError(err)
	require.Equal([]uint16{2}, words)

	frame := stub.Requests()[0]
	require.Len(frame, 18)
	require.Equal([]byte{0x80, 0x00, 0x02, 0x00, 0x0A, 0x00, 0x00, 0x63, 0x00}, frame[:9])
	require.Equal([]byte{0x01, 0x01, 0xB0, 0x00, 0x64, 0x00, 0x00, 0x02}, frame[10:])
}

func TestPool_WriteMemory(t *testing.T) {
	require := require.New(t)

	stub := newPLCStub(t, nil)
	p := newTestPool(t)
	h := openStub(t, p, stub)

	require.NoError(p.WriteMemory(h, 'C', 101, []uint16{42}))

	frame := stub.Requests()[0]
	require.Len(frame, 20)
	require.Equal([]byte{0x00, 0x2A}, frame[18:])
	require.Equal(uint16(42), stub.get(fins.AreaCIO, 101))

	words, err := p.ReadMemory(h, 'C', 101, 1)
	require.NoError(err)
	require.Equal([]uint16{42}, words)
}

func TestPool_ReadControllerIdentity(t *testing.T) {
	require := require.New(t)

	stub := newPLCStub(t, nil)
	p := newTestPool(t)
	h := openStub(t, p, stub)

	id, err := p.ReadControllerIdentity(h)
	require.NoError(err)
	require.Equal("CJ2M-CPU31", id.Model)
	require.Equal("02.01", id.Version)

	frame := stub.Requests()[0]
	require.Len(frame, 13)
	require.Equal([]byte{0x05, 0x01, 0x00}, frame[10:])
}

func TestPool_ReadControllerIdentity_ShortPayload(t *testing.T) {
	stub := newPLCStub(t, func(cmd fins.Command, _ []byte) [][]byte {
		return [][]byte{fins.NewResponseFrame(*cmd.Header(), 0, 0, []byte("CJ2M"))}
	})
	p := newTestPool(t)
	h := openStub(t, p, stub)

	_, err := p.ReadControllerIdentity(h)
	require.ErrorIs(t, err, fins.ErrReplyTooShort)
}

func TestPool_ReadControllerIdentity_SourceMismatch(t *testing.T) {
	stub := newPLCStub(t, func(cmd fins.Command, _ []byte) [][]byte {
		req := *cmd.Header()
		req.DA1 = 0x0B
		payload := fins.NewControllerIdentityPayload(fins.ControllerIdentity{Model: "CJ2M-CPU31", Version: "02.01"})

		return [][]byte{fins.NewResponseFrame(req, 0, 0, payload)}
	})
	p := newTestPool(t)
	h := openStub(t, p, stub)

	_, err := p.ReadControllerIdentity(h)
	require.ErrorIs(t, err, fins.ErrSourceAddressMismatch)
}

func TestPool_InvalidArguments(t *testing.T) {
	require := require.New(t)

	stub := newPLCStub(t, nil)
	p := newTestPool(t)
	h := openStub(t, p, stub)

	_, err := p.ReadMemory(h, 'X', 0, 1)
	require.ErrorIs(err, fins.ErrInvalidMemoryArea)

	err = p.WriteMemory(h, 'Z', 0, []uint16{1})
	require.ErrorIs(err, fins.ErrInvalidMemoryArea)

	_, err = p.ReadMemory(h, 'D', 0, 0)
	require.ErrorIs(err, fins.ErrInvalidArgument)

	err = p.WriteMemory(h, 'D', 0, nil)
	require.ErrorIs(err, fins.ErrInvalidArgument)

	require.Empty(stub.Requests(), "invalid commands are not sent")

	info, err := p.SessionInfo(h)
	require.NoError(err)
	require.Equal(byte(1), info.SequenceID)
}

func TestPool_NotImplemented(t *testing.T) {
	require := require.New(t)

	stub := newPLCStub(t, nil)
	p := newTestPool(t)
	h := openStub(t, p, stub)

	_, err := p.ReadFloat(h, 'D', 0, 1)
	require.ErrorIs(err, fins.ErrNotImplemented)
	require.ErrorIs(p.WriteFloat(h, 'D', 0, []float32{1.5}), fins.ErrNotImplemented)
	_, err = p.ReadBitMemory(h, 'W', 0, 3, 1)
	require.ErrorIs(err, fins.ErrNotImplemented)
	require.ErrorIs(p.WriteBitMemory(h, 'W', 0, 3, []bool{true}), fins.ErrNotImplemented)

	require.Empty(stub.Requests())
}
