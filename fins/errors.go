package fins

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates that a caller supplied value can't be encoded.
	ErrInvalidArgument = errors.New("fins: invalid argument")

	// ErrInvalidMemoryArea indicates an unrecognized memory area letter.
	ErrInvalidMemoryArea = fmt.Errorf("%w: unrecognized memory area", ErrInvalidArgument)

	// ErrNotImplemented is reported by operations that are part of the command surface
	// but not supported yet, such as floating-point and bit access.
	ErrNotImplemented = errors.New("fins: not implemented")

	// ErrInvalidFrame indicates a byte buffer that is not a well-formed FINS command.
	ErrInvalidFrame = errors.New("fins: invalid frame")
)

var (
	// ErrProtocol is the common cause of every reply validation failure.
	ErrProtocol = errors.New("fins: protocol error")

	// ErrReplyTooShort indicates a reply shorter than the command requires.
	ErrReplyTooShort = fmt.Errorf("%w: reply too short", ErrProtocol)

	// ErrResponseCode indicates a reply carrying a non-zero main or sub response code.
	// The concrete error is a *ResponseError.
	ErrResponseCode = fmt.Errorf("%w: non-zero response code", ErrProtocol)

	// ErrReplyTooLong indicates a datagram larger than MaxFrameSize.
	ErrReplyTooLong = fmt.Errorf("%w: reply too long", ErrProtocol)

	// ErrWordCount indicates a memory read reply whose payload doesn't hold the requested number of words.
	ErrWordCount = fmt.Errorf("%w: word count mismatch", ErrProtocol)

	// ErrSourceAddressMismatch indicates that the addressing fields echoed by the controller
	// don't match the destination of the request.
	ErrSourceAddressMismatch = errors.New("fins: illegal source address in reply")
)

// ResponseError is returned when the controller answers with a non-zero end code.
type ResponseError struct {
	// Main is the main response code (MRES).
	Main byte
	// Sub is the sub response code (SRES).
	Sub byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("fins: response error, main=0x%02X sub=0x%02X", e.Main, e.Sub)
}

// Unwrap allows errors.Is(err, ErrResponseCode) and errors.Is(err, ErrProtocol).
func (e *ResponseError) Unwrap() error {
	return ErrResponseCode
}
