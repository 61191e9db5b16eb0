package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/born-ml/bpe/internal/tokenizer"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var encodings []string

	cmd := &cobra.Command{
		Use:   "compare [text-file]",
		Short: "Compare the compression of a vocabulary with tiktoken encodings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, _, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readTextFile(cmd, path)
			if err != nil {
				return err
			}

			toks := []tokenizer.Tokenizer{tok}
			for _, name := range encodings {
				ref, err := tokenizer.NewTikToken(name)
				if err != nil {
					return err
				}
				toks = append(toks, ref)
			}

			stats, err := tokenizer.Compare(text, toks...)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&encodings, "encoding", []string{tokenizer.EncodingCL100kBase},
		"tiktoken encodings to compare against")

	return cmd
}

func printStats(out io.Writer, stats []tokenizer.CompressionStats) {
	data := make([][]string, len(stats))
	for i, s := range stats {
		data[i] = []string{
			s.Name,
			strconv.Itoa(s.VocabSize),
			strconv.Itoa(s.Bytes),
			strconv.Itoa(s.Tokens),
			fmt.Sprintf("%.3f", s.BytesPerToken),
			strconv.FormatBool(s.RoundTrip),
		}
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"TOKENIZER", "VOCAB", "BYTES", "TOKENS", "BYTES/TOKEN", "ROUND TRIP"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
