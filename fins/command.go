package fins

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

const (
	// identityCommandSize is header + area selector.
	identityCommandSize = HeaderSize + 1
	// memoryCommandSize is header + area(1) + address(2) + bit(1) + count(2).
	memoryCommandSize = HeaderSize + 6

	// identityModelSize and identityVersionSize are the widths of the controller
	// model and version fields of a controller data read reply.
	identityModelSize   = 20
	identityVersionSize = 20
	identitySystemSize  = 40
	identityAreaSize    = 12

	// MaxReadWords is the largest number of words a single memory read reply can carry.
	MaxReadWords = (MaxFrameSize - MinResponseSize) / 2
	// MaxWriteWords is the largest number of words a single memory write command can carry.
	MaxWriteWords = (MaxFrameSize - memoryCommandSize) / 2
)

// Command is a typed FINS command.
//
// The concrete types are *IdentityReadCommand, *MemoryReadCommand and *MemoryWriteCommand.
type Command interface {
	encoding.BinaryMarshaler

	// Header returns the command header. Changes to the returned header are encoded by MarshalBinary.
	Header() *Header

	// ReplyMinLen returns the minimum length of a successful reply to the command.
	ReplyMinLen() int
}

// ensure command types implement the Command interface.
var (
	_ Command = (*IdentityReadCommand)(nil)
	_ Command = (*MemoryReadCommand)(nil)
	_ Command = (*MemoryWriteCommand)(nil)
)

// IdentityReadCommand is the controller data read command (0501).
type IdentityReadCommand struct {
	header Header
	// Area selects the controller data to read. 0x00 returns model, version and area data.
	Area byte
}

// NewIdentityReadCommand creates a controller data read command from src to dest.
func NewIdentityReadCommand(dest Address, src Address) *IdentityReadCommand {
	return &IdentityReadCommand{
		header: NewRequestHeader(dest, src, MRCControllerData, SRCControllerDataRead),
		Area:   0x00,
	}
}

func (c *IdentityReadCommand) Header() *Header { return &c.header }

// ReplyMinLen returns the length up to the end of the version field.
func (c *IdentityReadCommand) ReplyMinLen() int {
	return MinResponseSize + identityModelSize + identityVersionSize
}

// MarshalBinary encodes the command, 13 bytes.
func (c *IdentityReadCommand) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, identityCommandSize)
	buf = c.header.AppendTo(buf)
	buf = append(buf, c.Area)

	return buf, nil
}

// MemoryReadCommand is the memory area read command (0101) for word access.
type MemoryReadCommand struct {
	header  Header
	Area    MemoryArea
	Address uint16
	// Bit is the bit position, always 0 for word access.
	Bit   byte
	Count uint16
}

// NewMemoryReadCommand creates a memory area read command of count words starting at address.
func NewMemoryReadCommand(dest Address, src Address, area MemoryArea, address uint16, count uint16) (*MemoryReadCommand, error) {
	if !area.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidMemoryArea, byte(area))
	}
	if count == 0 || count > MaxReadWords {
		return nil, fmt.Errorf("%w: read count %d out of range [1, %d]", ErrInvalidArgument, count, MaxReadWords)
	}

	return &MemoryReadCommand{
		header:  NewRequestHeader(dest, src, MRCMemoryArea, SRCMemoryRead),
		Area:    area,
		Address: address,
		Count:   count,
	}, nil
}

func (c *MemoryReadCommand) Header() *Header { return &c.header }

// ReplyMinLen returns the length of a reply holding Count words.
func (c *MemoryReadCommand) ReplyMinLen() int {
	return MinResponseSize + 2*int(c.Count)
}

// MarshalBinary encodes the command, 18 bytes.
func (c *MemoryReadCommand) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, memoryCommandSize)
	buf = c.header.AppendTo(buf)
	buf = appendMemoryAddress(buf, c.Area, c.Address, c.Bit, c.Count)

	return buf, nil
}

// MemoryWriteCommand is the memory area write command (0102) for word access.
type MemoryWriteCommand struct {
	header  Header
	Area    MemoryArea
	Address uint16
	// Bit is the bit position, always 0 for word access.
	Bit   byte
	Words []uint16
}

// NewMemoryWriteCommand creates a memory area write command storing words starting at address.
func NewMemoryWriteCommand(dest Address, src Address, area MemoryArea, address uint16, words []uint16) (*MemoryWriteCommand, error) {
	if !area.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidMemoryArea, byte(area))
	}
	if len(words) == 0 || len(words) > MaxWriteWords {
		return nil, fmt.Errorf("%w: write count %d out of range [1, %d]", ErrInvalidArgument, len(words), MaxWriteWords)
	}

	cloned := make([]uint16, len(words))
	copy(cloned, words)

	return &MemoryWriteCommand{
		header:  NewRequestHeader(dest, src, MRCMemoryArea, SRCMemoryWrite),
		Area:    area,
		Address: address,
		Words:   cloned,
	}, nil
}

func (c *MemoryWriteCommand) Header() *Header { return &c.header }

// ReplyMinLen returns MinResponseSize, a write reply carries no payload.
func (c *MemoryWriteCommand) ReplyMinLen() int {
	return MinResponseSize
}

// MarshalBinary encodes the command, 18 bytes plus 2 bytes per word.
func (c *MemoryWriteCommand) MarshalBinary() ([]byte, error) {
	if len(c.Words) > MaxWriteWords {
		return nil, fmt.Errorf("%w: write count %d exceeds %d", ErrInvalidArgument, len(c.Words), MaxWriteWords)
	}

	buf := make([]byte, 0, memoryCommandSize+2*len(c.Words))
	buf = c.header.AppendTo(buf)
	buf = appendMemoryAddress(buf, c.Area, c.Address, c.Bit, uint16(len(c.Words))) //nolint:gosec // bounded by MaxWriteWords
	for _, w := range c.Words {
		buf = binary.BigEndian.AppendUint16(buf, w)
	}

	return buf, nil
}

func appendMemoryAddress(buf []byte, area MemoryArea, address uint16, bit byte, count uint16) []byte {
	buf = append(buf, byte(area))
	buf = binary.BigEndian.AppendUint16(buf, address)
	buf = append(buf, bit)
	buf = binary.BigEndian.AppendUint16(buf, count)

	return buf
}

// DecodeCommand decodes an encoded command frame, the inverse of Command.MarshalBinary.
//
// It returns ErrInvalidFrame for frames that are truncated, oversized, carry a response ICF
// or an unsupported command code.
func DecodeCommand(data []byte) (Command, error) {
	if len(data) > MaxFrameSize {
		return nil, fmt.Errorf("%w: frame length %d exceeds %d", ErrInvalidFrame, len(data), MaxFrameSize)
	}

	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if header.IsResponse() {
		return nil, fmt.Errorf("%w: response bit set in command", ErrInvalidFrame)
	}

	body := data[HeaderSize:]

	switch {
	case header.MRC == MRCControllerData && header.SRC == SRCControllerDataRead:
		if len(body) != 1 {
			return nil, fmt.Errorf("%w: controller data read body length %d", ErrInvalidFrame, len(body))
		}

		return &IdentityReadCommand{header: header, Area: body[0]}, nil

	case header.MRC == MRCMemoryArea && header.SRC == SRCMemoryRead:
		if len(body) != memoryCommandSize-HeaderSize {
			return nil, fmt.Errorf("%w: memory read body length %d", ErrInvalidFrame, len(body))
		}
		area, address, bit, count := decodeMemoryAddress(body)

		return &MemoryReadCommand{header: header, Area: area, Address: address, Bit: bit, Count: count}, nil

	case header.MRC == MRCMemoryArea && header.SRC == SRCMemoryWrite:
		if len(body) < memoryCommandSize-HeaderSize {
			return nil, fmt.Errorf("%w: memory write body length %d", ErrInvalidFrame, len(body))
		}
		area, address, bit, count := decodeMemoryAddress(body)

		payload := body[memoryCommandSize-HeaderSize:]
		if len(payload) != 2*int(count) {
			return nil, fmt.Errorf("%w: memory write carries %d bytes for %d words", ErrInvalidFrame, len(payload), count)
		}

		words := make([]uint16, count)
		for i := range words {
			words[i] = binary.BigEndian.Uint16(payload[2*i:])
		}

		return &MemoryWriteCommand{header: header, Area: area, Address: address, Bit: bit, Words: words}, nil
	}

	return nil, fmt.Errorf("%w: unsupported command %02X%02X", ErrInvalidFrame, header.MRC, header.SRC)
}

func decodeMemoryAddress(body []byte) (MemoryArea, uint16, byte, uint16) {
	return MemoryArea(body[0]), binary.BigEndian.Uint16(body[1:3]), body[3], binary.BigEndian.Uint16(body[4:6])
}
