package serialization

import (
	"errors"
	"strings"
	"testing"
)

func validHeader() Header {
	return Header{
		FormatVersion: FormatVersion,
		VocabSize:     260,
		NumMerges:     3,
		SpecialTokens: []string{"<s>"},
	}
}

// TestValidateHeader_Valid verifies that a consistent header passes validation.
func TestValidateHeader_Valid(t *testing.T) {
	h := validHeader()
	if err := ValidateHeader(&h, 260*5+3*12); err != nil {
		t.Errorf("Expected no error for valid header, got: %v", err)
	}
}

// TestValidateHeader_Invalid detects inconsistent headers.
func TestValidateHeader_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(h *Header)
		dataSize int64
		wantType string
	}{
		{
			name:     "wrong format version",
			modify:   func(h *Header) { h.FormatVersion = 7 },
			dataSize: 10_000,
			wantType: "format_version",
		},
		{
			name:     "vocab smaller than bytes",
			modify:   func(h *Header) { h.VocabSize = 100 },
			dataSize: 10_000,
			wantType: "vocab_size",
		},
		{
			name:     "vocab too large",
			modify:   func(h *Header) { h.VocabSize = MaxVocabSize + 1 },
			dataSize: 10_000,
			wantType: "vocab_size",
		},
		{
			name:     "merge count mismatch",
			modify:   func(h *Header) { h.NumMerges = 4 },
			dataSize: 10_000,
			wantType: "num_merges",
		},
		{
			name: "too many special tokens",
			modify: func(h *Header) {
				h.SpecialTokens = make([]string, MaxSpecialTokens+1)
			},
			dataSize: 10_000,
			wantType: "too_many_special_tokens",
		},
		{
			name: "metadata too large",
			modify: func(h *Header) {
				h.Metadata = map[string]string{"blob": strings.Repeat("x", MaxMetadataSize+1)}
			},
			dataSize: 10_000,
			wantType: "metadata_too_large",
		},
		{
			name:     "data section too small",
			modify:   func(h *Header) {},
			dataSize: 260 * 4,
			wantType: "out_of_bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeader()
			tt.modify(&h)

			err := ValidateHeader(&h, tt.dataSize)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if validationErr.Type != tt.wantType {
				t.Errorf("Expected %s error, got %s", tt.wantType, validationErr.Type)
			}
		})
	}
}

// TestValidationError_Error verifies error message formatting.
func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Type: "vocab_size", Field: "vocab_size", Details: "too small"}
	if got := err.Error(); got != "vocab_size: vocab_size: too small" {
		t.Errorf("unexpected message %q", got)
	}

	err = &ValidationError{Type: "out_of_bounds", Details: "short"}
	if got := err.Error(); got != "out_of_bounds: short" {
		t.Errorf("unexpected message %q", got)
	}
}
