package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/bpe/internal/bpe"
)

// ReaderOptions configures Read.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
}

// Read decodes a .bpe vocabulary from r.
//
// The fixed header, JSON header and data section are checked in that order;
// the decoded vocabulary is finally re-validated by bpe.NewParams, so a
// vocabulary returned here is always internally consistent.
func Read(r io.Reader, opts ReaderOptions) (*Vocabulary, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if err := readFull(r, fixedHeader, "fixed header"); err != nil {
		return nil, err
	}

	// 0x00-0x03: magic
	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	// 0x04-0x07: version
	version := binary.LittleEndian.Uint32(fixedHeader[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	// 0x08-0x0B: flags
	flags := binary.LittleEndian.Uint32(fixedHeader[8:12])

	// 0x10-0x17: header size
	headerSize := binary.LittleEndian.Uint64(fixedHeader[16:24])
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	// 0x18-0x1F: data size
	dataSize := binary.LittleEndian.Uint64(fixedHeader[24:32])
	if dataSize > MaxDataSize {
		return nil, &ValidationError{
			Type:    "data_too_large",
			Details: fmt.Sprintf("%d bytes, max %d", dataSize, int64(MaxDataSize)),
		}
	}

	// 0x20-0x3F: SHA-256 checksum
	var checksum [ChecksumSize]byte
	copy(checksum[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if err := readFull(r, headerBytes, "header JSON"); err != nil {
		return nil, err
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := dataOffset(int64(headerSize)) - int64(FixedHeaderSize) - int64(headerSize)
	if err := readFull(r, make([]byte, padding), "padding"); err != nil {
		return nil, err
	}

	//nolint:gosec // G115: dataSize is bounded by MaxDataSize
	if err := ValidateHeader(&header, int64(dataSize)); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// The buffer grows with what the stream actually holds, so a forged data
	// size cannot force a large allocation up front.
	data, err := io.ReadAll(io.LimitReader(r, int64(dataSize))) //nolint:gosec // G115: bounded by MaxDataSize
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary data: %w", err)
	}
	if uint64(len(data)) < dataSize {
		return nil, fmt.Errorf("%w: reading vocabulary data", ErrTruncated)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), checksum); err != nil {
			return nil, err
		}
	}

	vocab, merges, err := decodeData(data, header.VocabSize, header.NumMerges)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	params, err := bpe.NewParams(vocab, merges, header.SpecialTokens)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	return &Vocabulary{
		Header: header,
		Params: params,
		Flags:  flags,
	}, nil
}

// ReadFile reads a .bpe vocabulary from path.
func ReadFile(path string, opts ReaderOptions) (*Vocabulary, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for vocabulary loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	vocab, err := Read(bufio.NewReader(file), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return vocab, nil
}

func readFull(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: reading %s", ErrTruncated, what)
		}
		return fmt.Errorf("failed to read %s: %w", what, err)
	}
	return nil
}

// decodeData parses the data section laid out by encodeData. The section must
// be consumed exactly.
func decodeData(data []byte, vocabSize, numMerges int) ([][]byte, []bpe.Merge, error) {
	vocab := make([][]byte, vocabSize)
	pos := 0
	for id := range vocab {
		if len(data)-pos < 4 {
			return nil, nil, &ValidationError{
				Type:    "out_of_bounds",
				Field:   fmt.Sprintf("vocab[%d]", id),
				Details: "length prefix beyond data section",
			}
		}
		n := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if n > MaxTokenLen {
			return nil, nil, &ValidationError{
				Type:    "entry_too_long",
				Field:   fmt.Sprintf("vocab[%d]", id),
				Details: fmt.Sprintf("%d bytes, max %d", n, MaxTokenLen),
			}
		}
		if len(data)-pos < n {
			return nil, nil, &ValidationError{
				Type:    "out_of_bounds",
				Field:   fmt.Sprintf("vocab[%d]", id),
				Details: fmt.Sprintf("%d bytes at offset %d beyond data section of %d", n, pos, len(data)),
			}
		}
		vocab[id] = data[pos : pos+n : pos+n]
		pos += n
	}

	if want := numMerges * mergeRecordSize; len(data)-pos != want {
		return nil, nil, &ValidationError{
			Type:    "merge_section",
			Details: fmt.Sprintf("%d bytes left for %d merges, want %d", len(data)-pos, numMerges, want),
		}
	}

	merges := make([]bpe.Merge, numMerges)
	for k := range merges {
		rec := data[pos+k*mergeRecordSize:]
		merges[k] = bpe.Merge{
			Pair: bpe.Pair{
				Left:  int32(binary.LittleEndian.Uint32(rec[0:4])), //nolint:gosec // G115: NewParams rejects out of range ids
				Right: int32(binary.LittleEndian.Uint32(rec[4:8])), //nolint:gosec // G115: NewParams rejects out of range ids
			},
			ID: int32(binary.LittleEndian.Uint32(rec[8:12])), //nolint:gosec // G115: NewParams rejects out of range ids
		}
	}

	return vocab, merges, nil
}
