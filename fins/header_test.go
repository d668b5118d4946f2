package fins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPLC    = Address{Network: 0x00, Node: 0x0A, Unit: 0x00}
	testClient = Address{Network: 0x00, Node: DefaultSourceNode, Unit: 0x00}
)

func TestNewRequestHeader(t *testing.T) {
	t.Parallel()

	h := NewRequestHeader(testPLC, testClient, MRCMemoryArea, SRCMemoryRead)

	assert.Equal(t, byte(0x80), h.ICF)
	assert.Equal(t, byte(0x00), h.RSV)
	assert.Equal(t, byte(0x02), h.GCT)
	assert.Equal(t, testPLC, h.Destination())
	assert.Equal(t, testClient, h.Source())
	assert.Equal(t, byte(0x00), h.SID, "sid is assigned at send time")
	assert.False(t, h.IsResponse())
}

func TestHeader_AppendDecode(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	h := NewRequestHeader(testPLC, testClient, MRCControllerData, SRCControllerDataRead)
	h.SID = 0x42

	buf := h.AppendTo([]byte{0xFF})
	require.Len(buf, 1+HeaderSize)
	require.Equal(byte(0xFF), buf[0], "existing bytes preserved")
	require.Equal([]byte{
		0x80, 0x00, 0x02,
		0x00, 0x0A, 0x00,
		0x00, 0x63, 0x00,
		0x42, 0x05, 0x01,
	}, buf[1:])

	decoded, err := DecodeHeader(buf[1:])
	require.NoError(err)
	require.Equal(h, decoded)
}

func TestDecodeHeader_Short(t *testing.T) {
	t.Parallel()

	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrInvalidFrame)
}

func TestSequenceID(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	frame := NewRequestHeader(testPLC, testClient, MRCMemoryArea, SRCMemoryRead).AppendTo(nil)
	require.Equal(byte(0), SequenceID(frame))

	SetSequenceID(frame, 0xFE)
	require.Equal(byte(0xFE), SequenceID(frame))
	require.Equal(byte(0xFE), frame[9])

	short := []byte{1, 2, 3}
	SetSequenceID(short, 0x10)
	require.Equal([]byte{1, 2, 3}, short)
	require.Equal(byte(0), SequenceID(short))
}

func TestAddress_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.10.0", testPLC.String())
}
