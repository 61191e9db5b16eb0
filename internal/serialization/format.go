package serialization

import (
	"time"

	"github.com/born-ml/bpe/internal/bpe"
)

// Format constants.
const (
	MagicBytes      = "BPEV"
	FormatVersion   = 1
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	DataAlignment   = 8    // Data section starts on an 8-byte boundary
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header

	mergeRecordSize = 12 // left, right, id
)

// ToolVersion is recorded in every file written by this package.
const ToolVersion = "0.1.0"

// Flags for the .bpe format.
const (
	FlagHasSpecialTokens uint32 = 1 << 0 // bit 0: special tokens reserved after the bytes
	FlagHasMetadata      uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header represents the JSON header in a .bpe file.
type Header struct {
	FormatVersion int               `json:"format_version" yaml:"format_version"`
	ToolVersion   string            `json:"tool_version" yaml:"tool_version"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
	RunID         string            `json:"run_id" yaml:"run_id"` // Unique per written file
	VocabSize     int               `json:"vocab_size" yaml:"vocab_size"`
	NumMerges     int               `json:"num_merges" yaml:"num_merges"`
	SpecialTokens []string          `json:"special_tokens" yaml:"special_tokens"`
	Metadata      map[string]string `json:"metadata" yaml:"metadata"`
}

// Vocabulary is a decoded .bpe file.
type Vocabulary struct {
	Header Header
	Params *bpe.Params
	Flags  uint32
}

// dataOffset returns where the data section starts for a JSON header of
// headerSize bytes.
func dataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (DataAlignment-pos%DataAlignment)%DataAlignment
}
