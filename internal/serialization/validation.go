package serialization

import (
	"fmt"

	"github.com/born-ml/bpe/internal/bpe"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxDataSize      = 1 << 32          // 4GB - maximum data section size
	MaxVocabSize     = 1 << 24          // Maximum number of vocabulary entries
	MaxTokenLen      = 1 << 16          // Maximum byte length of a single entry
	MaxSpecialTokens = 4096             // Maximum number of special tokens
	MaxMetadataSize  = 1 * 1024 * 1024  // 1MB - maximum metadata size
)

// ValidateHeader checks the JSON header against itself and against the size of
// the data section it describes.
func ValidateHeader(h *Header, dataSize int64) error {
	if h.FormatVersion != FormatVersion {
		return &ValidationError{
			Type:    "format_version",
			Field:   "format_version",
			Details: fmt.Sprintf("header says %d, file says %d", h.FormatVersion, FormatVersion),
		}
	}

	if len(h.SpecialTokens) > MaxSpecialTokens {
		return &ValidationError{
			Type:    "too_many_special_tokens",
			Field:   "special_tokens",
			Details: fmt.Sprintf("got %d, max %d", len(h.SpecialTokens), MaxSpecialTokens),
		}
	}

	if h.VocabSize < bpe.NumBytes || h.VocabSize > MaxVocabSize {
		return &ValidationError{
			Type:    "vocab_size",
			Field:   "vocab_size",
			Details: fmt.Sprintf("%d outside [%d, %d]", h.VocabSize, bpe.NumBytes, MaxVocabSize),
		}
	}

	if want := h.VocabSize - bpe.NumBytes - len(h.SpecialTokens); h.NumMerges != want {
		return &ValidationError{
			Type:  "num_merges",
			Field: "num_merges",
			Details: fmt.Sprintf("%d merges for vocab size %d with %d special tokens, want %d",
				h.NumMerges, h.VocabSize, len(h.SpecialTokens), want),
		}
	}

	metaSize := 0
	for k, v := range h.Metadata {
		metaSize += len(k) + len(v)
	}
	if metaSize > MaxMetadataSize {
		return &ValidationError{
			Type:    "metadata_too_large",
			Field:   "metadata",
			Details: fmt.Sprintf("%d bytes, max %d", metaSize, MaxMetadataSize),
		}
	}

	// Every entry needs at least its length prefix and every merge a full record.
	minData := int64(h.VocabSize)*4 + int64(h.NumMerges)*mergeRecordSize
	if minData > dataSize {
		return &ValidationError{
			Type:    "out_of_bounds",
			Details: fmt.Sprintf("header needs at least %d data bytes, data size is %d", minData, dataSize),
		}
	}

	return nil
}
