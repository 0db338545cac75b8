package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnderflow     = errors.New("protocol: buffer underflow")
	ErrOverflow      = errors.New("protocol: buffer overflow")
	ErrNotWritable   = errors.New("protocol: buffer not writable")
	ErrFrameTooLarge = errors.New("protocol: frame too large")
)

// UnrecognizedMessageTypeError reports a message type byte with no decoder.
type UnrecognizedMessageTypeError struct {
	Type byte
}

func (e *UnrecognizedMessageTypeError) Error() string {
	if e.Type >= 0x20 && e.Type < 0x7f {
		return fmt.Sprintf("protocol: unrecognized message type %q", rune(e.Type))
	}
	return fmt.Sprintf("protocol: unrecognized message type 0x%02x", e.Type)
}

// IsUnrecognizedMessageType reports whether err wraps an UnrecognizedMessageTypeError.
func IsUnrecognizedMessageType(err error) bool {
	var target *UnrecognizedMessageTypeError
	return errors.As(err, &target)
}

// IsFatal reports whether err must terminate the session it occurred on.
// Overflow and NotWritable are encode-side errors and never fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFrameTooLarge) ||
		errors.Is(err, ErrUnderflow) ||
		IsUnrecognizedMessageType(err)
}
