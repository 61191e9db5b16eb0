package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var showTokens bool

	cmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text (or stdin) into token ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, _, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ids, err := tok.Encode(text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !showTokens {
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = strconv.Itoa(int(id))
				}
				_, err = fmt.Fprintln(out, strings.Join(parts, " "))
				return err
			}

			for _, id := range ids {
				b, err := tok.Token(id)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "%d\t%q\n", id, b); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTokens, "tokens", false, "Print one id per line with its bytes")

	return cmd
}
