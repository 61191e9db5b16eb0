package main

import (
	"fmt"

	"github.com/born-ml/bpe/internal/serialization"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = serialization.ToolVersion

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "bpe %s (format v%d)\n", version, serialization.FormatVersion)
			return err
		},
	}
}
