package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnknownToken indicates a token ID with no vocabulary entry.
	ErrUnknownToken = errors.New("unknown token")

	// ErrInvalidUTF8 indicates decoded bytes that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

// LookupError reports a token ID missing from the vocabulary.
type LookupError struct {
	ID       int32
	Position int // Index of ID in the decoded sequence.
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("token %d at position %d: %v", e.ID, e.Position, ErrUnknownToken)
}

func (e *LookupError) Unwrap() error {
	return ErrUnknownToken
}

// DecodeError reports a decoded byte sequence that is not valid UTF-8.
type DecodeError struct {
	Offset int // Byte offset of the first invalid sequence.
	Bytes  []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoded %d bytes: %v at byte %d", len(e.Bytes), ErrInvalidUTF8, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidUTF8
}
