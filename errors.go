package ewah

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is the panic value (wrapped) raised by Set for
	// negative positions or positions above MaxPosition.
	ErrIndexOutOfRange = errors.New("ewah: index out of range")

	// ErrSizeCrossesWord is the panic value (wrapped) raised when
	// SetSizeInBitsWithinLastWord would move the size into another word.
	// Use SetSizeInBits to extend a bitmap.
	ErrSizeCrossesWord = errors.New("ewah: size change crosses the last word")

	// ErrBufferOverflow is the panic value (wrapped) raised when the word
	// buffer would have to grow past its configured maximum.
	ErrBufferOverflow = errors.New("ewah: buffer size limit exceeded")

	// ErrCorrupt is returned when serialized input is malformed.
	ErrCorrupt = errors.New("ewah: corrupt serialized bitmap")

	// ErrTooLarge is returned when serialized input declares more words than
	// the configured maximum buffer size.
	ErrTooLarge = errors.New("ewah: serialized bitmap too large")

	// ErrInvalidArgument is returned for invalid caller-supplied arguments.
	ErrInvalidArgument = errors.New("ewah: invalid argument")
)

// CorruptError describes which header field of a serialized bitmap failed
// validation.
//
// errors.Is(err, ErrCorrupt) reports true for every CorruptError.
type CorruptError struct {
	Field string
	Value int64
	cause error
}

func (e *CorruptError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %s=%d: %v", ErrCorrupt, e.Field, e.Value, e.cause)
	}
	return fmt.Sprintf("%v: %s=%d", ErrCorrupt, e.Field, e.Value)
}

// Unwrap exposes ErrCorrupt and the underlying cause, if any.
func (e *CorruptError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrCorrupt, e.cause}
	}
	return []error{ErrCorrupt}
}

func corrupt(field string, value int64) error {
	return &CorruptError{Field: field, Value: value}
}

func indexOutOfRange(i, limit int) error {
	return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, i, limit)
}
