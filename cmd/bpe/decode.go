package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "decode [ids...]",
		Short: "Decode token ids (or whitespace separated ids on stdin) into text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, _, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ids, err := parseIDs(input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				b, err := tok.DecodeBytes(ids)
				if err != nil {
					return err
				}
				_, err = out.Write(b)
				return err
			}

			text, err := tok.Decode(ids)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, text)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Write the decoded bytes as is, even when they are not valid UTF-8")

	return cmd
}

// parseIDs parses whitespace or comma separated token ids.
func parseIDs(s string) ([]int32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	ids := make([]int32, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q: %w", f, err)
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}
