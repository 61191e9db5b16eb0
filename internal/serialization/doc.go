// Package serialization stores learned BPE vocabularies in the .bpe format.
//
// The format is a small binary container with a JSON header and a checksummed
// data section:
//
//	Format Structure:
//	  [64 bytes: Fixed header]
//	    0x00 Magic "BPEV"
//	    0x04 Version (uint32 LE)
//	    0x08 Flags (uint32 LE)
//	    0x0C Reserved
//	    0x10 Header size (uint64 LE)
//	    0x18 Data size (uint64 LE)
//	    0x20 SHA-256 of the data section (32 bytes)
//	  [Header: JSON metadata]
//	  [Padding to an 8-byte boundary]
//	  [Data: vocabulary entries, then merges]
//
// Vocabulary entries are stored in identifier order as a uint32 length followed
// by the token bytes. Merges follow in learned order as three uint32 values:
// left, right and the identifier they produce.
//
// Example usage:
//
//	// Save a vocabulary
//	if err := serialization.WriteFile("tokenizer.bpe", params, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	vocab, err := serialization.ReadFile("tokenizer.bpe", serialization.ReaderOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tok := tokenizer.NewBPETokenizer(vocab.Params)
package serialization
