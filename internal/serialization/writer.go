package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/born-ml/bpe/internal/bpe"
	"github.com/google/uuid"
)

// Write encodes params in .bpe format to w.
//
// Metadata is stored verbatim in the JSON header; nil is allowed.
func Write(w io.Writer, params *bpe.Params, metadata map[string]string) error {
	data := encodeData(params)
	checksum := ComputeChecksum(data)

	header := Header{
		FormatVersion: FormatVersion,
		ToolVersion:   ToolVersion,
		CreatedAt:     time.Now().UTC(),
		RunID:         uuid.NewString(),
		VocabSize:     params.VocabSize(),
		NumMerges:     params.NumMerges(),
		SpecialTokens: params.SpecialTokens(),
		Metadata:      metadata,
	}
	if header.SpecialTokens == nil {
		header.SpecialTokens = []string{}
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, len(headerJSON))
	}

	// 64-byte fixed header.
	fixedHeader := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes "BPEV"
	copy(fixedHeader[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))

	// 0x08-0x0B: Flags
	flags := uint32(0)
	if len(header.SpecialTokens) > 0 {
		flags |= FlagHasSpecialTokens
	}
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)

	// 0x0C-0x0F: Reserved (0)

	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], uint64(len(headerJSON)))

	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixedHeader[24:32], uint64(len(data)))

	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	headerEnd := int64(FixedHeaderSize) + int64(len(headerJSON))
	if padding := dataOffset(int64(len(headerJSON))) - headerEnd; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write vocabulary data: %w", err)
	}

	return nil
}

// WriteFile writes params to a .bpe file at path, replacing any existing file.
func WriteFile(path string, params *bpe.Params, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for vocabulary saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, params, metadata); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// encodeData lays out the vocabulary entries followed by the merges.
func encodeData(params *bpe.Params) []byte {
	vocab := params.Vocab()
	merges := params.Merges()

	size := len(merges) * mergeRecordSize
	for _, tok := range vocab {
		size += 4 + len(tok)
	}

	buf := make([]byte, 0, size)
	for _, tok := range vocab {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tok))) //nolint:gosec // G115: entries are far below 4GB
		buf = append(buf, tok...)
	}
	for _, m := range merges {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Left))  //nolint:gosec // G115: ids are non-negative
		buf = binary.LittleEndian.AppendUint32(buf, uint32(m.Right)) //nolint:gosec // G115: ids are non-negative
		buf = binary.LittleEndian.AppendUint32(buf, uint32(m.ID))    //nolint:gosec // G115: ids are non-negative
	}
	return buf
}
