package fins

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/go-fins/internal/util"
)

// Response is a decoded FINS reply.
type Response struct {
	header Header
	// MainCode is the main response code (MRES), 0 on success.
	MainCode byte
	// SubCode is the sub response code (SRES), 0 on success.
	SubCode byte
	// Payload holds the bytes following the response codes.
	Payload []byte
}

// ControllerIdentity is the result of a controller data read.
type ControllerIdentity struct {
	// Model is the controller model, e.g. "CJ2M-CPU31".
	Model string
	// Version is the controller firmware version.
	Version string
	// SystemData is reserved for system use. It is nil when the reply doesn't carry it.
	SystemData []byte
	// AreaData describes the memory areas of the controller. It is nil when the reply doesn't carry it.
	AreaData []byte
}

// DecodeResponse decodes a reply frame. The payload is copied, data can be reused by the caller.
//
// It returns ErrReplyTooShort if data is shorter than MinResponseSize.
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) < MinResponseSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrReplyTooShort, len(data), MinResponseSize)
	}

	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	return &Response{
		header:   header,
		MainCode: data[HeaderSize],
		SubCode:  data[HeaderSize+1],
		Payload:  util.CloneSlice(data[MinResponseSize:], 0),
	}, nil
}

// Header returns the header echoed by the controller.
func (r *Response) Header() Header {
	return r.header
}

// Err returns a *ResponseError if the reply carries a non-zero response code, nil otherwise.
func (r *Response) Err() error {
	if r.MainCode != 0 || r.SubCode != 0 {
		return &ResponseError{Main: r.MainCode, Sub: r.SubCode}
	}

	return nil
}

// CheckSource verifies that the reply comes from the node the request was sent to:
// the echoed source network, node and unit must equal the destination fields of req.
func (r *Response) CheckSource(req Header) error {
	if r.header.SNA != req.DNA || r.header.SA1 != req.DA1 || r.header.SA2 != req.DA2 {
		return fmt.Errorf("%w: expected %s, got %s", ErrSourceAddressMismatch, req.Destination(), r.header.Source())
	}

	return nil
}

// Words decodes the payload of a memory read reply as count big-endian words.
//
// It returns ErrWordCount if the payload doesn't hold exactly count words.
func (r *Response) Words(count int) ([]uint16, error) {
	if len(r.Payload) != 2*count {
		return nil, fmt.Errorf("%w: expected %d words, payload has %d bytes", ErrWordCount, count, len(r.Payload))
	}

	words := make([]uint16, count)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(r.Payload[2*i:])
	}

	return words, nil
}

// ControllerIdentity decodes the payload of a controller data read reply.
//
// The model and version fields are mandatory, system and area data are decoded when present.
func (r *Response) ControllerIdentity() (*ControllerIdentity, error) {
	p := r.Payload
	if len(p) < identityModelSize+identityVersionSize {
		return nil, fmt.Errorf("%w: controller data payload %d bytes, need %d",
			ErrReplyTooShort, len(p), identityModelSize+identityVersionSize)
	}

	id := &ControllerIdentity{
		Model:   util.CString(p[:identityModelSize]),
		Version: util.CString(p[identityModelSize : identityModelSize+identityVersionSize]),
	}

	p = p[identityModelSize+identityVersionSize:]
	if len(p) >= identitySystemSize {
		id.SystemData = util.CloneSlice(p[:identitySystemSize], 0)
		p = p[identitySystemSize:]

		if len(p) >= identityAreaSize {
			id.AreaData = util.CloneSlice(p[:identityAreaSize], 0)
		}
	}

	return id, nil
}

// NewResponseFrame builds the reply a controller sends for the request req.
//
// The source and destination fields are swapped, the service id and command code are echoed.
func NewResponseFrame(req Header, mres byte, sres byte, payload []byte) []byte {
	h := Header{
		ICF: ICFResponse,
		RSV: 0x00,
		GCT: DefaultGatewayCount,
		DNA: req.SNA,
		DA1: req.SA1,
		DA2: req.SA2,
		SNA: req.DNA,
		SA1: req.DA1,
		SA2: req.DA2,
		SID: req.SID,
		MRC: req.MRC,
		SRC: req.SRC,
	}

	buf := make([]byte, 0, MinResponseSize+len(payload))
	buf = h.AppendTo(buf)
	buf = append(buf, mres, sres)
	buf = append(buf, payload...)

	return buf
}

// NewControllerIdentityPayload encodes id as the payload of a controller data read reply.
// Model and version are truncated or NUL padded to their field widths.
func NewControllerIdentityPayload(id ControllerIdentity) []byte {
	buf := make([]byte, identityModelSize+identityVersionSize+identitySystemSize+identityAreaSize)
	copy(buf[:identityModelSize], id.Model)
	copy(buf[identityModelSize:identityModelSize+identityVersionSize], id.Version)
	copy(buf[identityModelSize+identityVersionSize:], id.SystemData)
	copy(buf[identityModelSize+identityVersionSize+identitySystemSize:], id.AreaData)

	return buf
}

// NewWordsPayload encodes words as the payload of a memory read reply.
func NewWordsPayload(words []uint16) []byte {
	buf := make([]byte, 0, 2*len(words))
	for _, w := range words {
		buf = binary.BigEndian.AppendUint16(buf, w)
	}

	return buf
}
