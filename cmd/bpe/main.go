// Package main provides the bpe command line: training, encoding, decoding and
// inspection of byte-level BPE vocabularies.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
