package fins

import (
	"fmt"
)

const (
	// HeaderSize is the size of the FINS header in bytes, including the command code.
	HeaderSize = 12
	// ResponseCodeSize is the size of the main and sub response codes.
	ResponseCodeSize = 2
	// MinResponseSize is the minimum size of a valid reply.
	MinResponseSize = HeaderSize + ResponseCodeSize
	// MaxFrameSize is the largest FINS/UDP frame in bytes.
	MaxFrameSize = 2012

	// sidOffset is the position of the service id (sequence id) within a frame.
	sidOffset = 9
)

// Information control field (ICF) bits.
const (
	// ICFGatewayBit is always set, gateway use is allowed.
	ICFGatewayBit byte = 0x80
	// ICFResponseBit marks a response frame.
	ICFResponseBit byte = 0x40
	// ICFNoReplyBit marks a command that doesn't expect a reply.
	ICFNoReplyBit byte = 0x01

	// ICFRequest is the ICF of every command sent by this client.
	ICFRequest = ICFGatewayBit
	// ICFResponse is the ICF of a reply.
	ICFResponse = ICFGatewayBit | ICFResponseBit
)

const (
	// DefaultGatewayCount is the permissible number of gateways (GCT).
	DefaultGatewayCount byte = 0x02
	// DefaultSourceNode is the node address the client identifies itself with (SA1).
	DefaultSourceNode byte = 0x63
)

// Command codes, main request code (MRC) followed by sub request code (SRC).
const (
	MRCMemoryArea      byte = 0x01
	SRCMemoryRead      byte = 0x01
	SRCMemoryWrite     byte = 0x02
	SRCMemoryFill      byte = 0x03
	SRCMemoryMultiRead byte = 0x04
	SRCMemoryTransfer  byte = 0x05

	MRCControllerData     byte = 0x05
	SRCControllerDataRead byte = 0x01
	SRCConnectionDataRead byte = 0x02
)

// Address is a FINS network address.
type Address struct {
	// Network is the network address, 0 for the local network.
	Network byte
	// Node is the node address of the controller or client.
	Node byte
	// Unit is the unit address, 0 for the CPU unit.
	Unit byte
}

// String returns the address as network.node.unit.
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Network, a.Node, a.Unit)
}

// Header is the 12-byte header present in every command and response.
type Header struct {
	ICF byte // information control field
	RSV byte // reserved
	GCT byte // gateway count
	DNA byte // destination network
	DA1 byte // destination node
	DA2 byte // destination unit
	SNA byte // source network
	SA1 byte // source node
	SA2 byte // source unit
	SID byte // service id, the sequence id echoed by the controller
	MRC byte // main request code
	SRC byte // sub request code
}

// NewRequestHeader creates a command header from dest to src for the given command code.
// The service id is left zero, it is assigned when the frame is sent.
func NewRequestHeader(dest Address, src Address, mrc byte, subCode byte) Header {
	return Header{
		ICF: ICFRequest,
		RSV: 0x00,
		GCT: DefaultGatewayCount,
		DNA: dest.Network,
		DA1: dest.Node,
		DA2: dest.Unit,
		SNA: src.Network,
		SA1: src.Node,
		SA2: src.Unit,
		MRC: mrc,
		SRC: subCode,
	}
}

// Destination returns the destination address of the header.
func (h Header) Destination() Address {
	return Address{Network: h.DNA, Node: h.DA1, Unit: h.DA2}
}

// Source returns the source address of the header.
func (h Header) Source() Address {
	return Address{Network: h.SNA, Node: h.SA1, Unit: h.SA2}
}

// IsResponse reports whether the response bit of ICF is set.
func (h Header) IsResponse() bool {
	return h.ICF&ICFResponseBit != 0
}

// AppendTo appends the 12 header bytes to buf and returns the extended slice.
func (h Header) AppendTo(buf []byte) []byte {
	return append(buf,
		h.ICF, h.RSV, h.GCT,
		h.DNA, h.DA1, h.DA2,
		h.SNA, h.SA1, h.SA2,
		h.SID, h.MRC, h.SRC,
	)
}

// DecodeHeader decodes the first HeaderSize bytes of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrInvalidFrame, HeaderSize, len(data))
	}

	return Header{
		ICF: data[0],
		RSV: data[1],
		GCT: data[2],
		DNA: data[3],
		DA1: data[4],
		DA2: data[5],
		SNA: data[6],
		SA1: data[7],
		SA2: data[8],
		SID: data[9],
		MRC: data[10],
		SRC: data[11],
	}, nil
}

// SequenceID returns the service id of an encoded frame, or 0 if the frame is too short.
func SequenceID(frame []byte) byte {
	if len(frame) <= sidOffset {
		return 0
	}

	return frame[sidOffset]
}

// SetSequenceID writes sid into an encoded frame. Frames shorter than a header are left untouched.
func SetSequenceID(frame []byte, sid byte) {
	if len(frame) <= sidOffset {
		return
	}
	frame[sidOffset] = sid
}
