package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/bpe/internal/serialization"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type mergeRow struct {
	Rank  int    `json:"rank" yaml:"rank"`
	Left  int32  `json:"left" yaml:"left"`
	Right int32  `json:"right" yaml:"right"`
	ID    int32  `json:"id" yaml:"id"`
	Token string `json:"token" yaml:"token"` // Go-quoted bytes
}

type inspectReport struct {
	Header serialization.Header `json:"header" yaml:"header"`
	Merges []mergeRow           `json:"merges" yaml:"merges"`
}

func newInspectCmd() *cobra.Command {
	var format string
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the header and the first merges of a vocabulary file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			_, vocab, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			report := buildReport(vocab, limit)
			out := cmd.OutOrStdout()

			switch strings.ToLower(format) {
			case "table":
				return printReportTable(out, report)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(report); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of merges to show (0 for all)")

	return cmd
}

func buildReport(vocab *serialization.Vocabulary, limit int) inspectReport {
	merges := vocab.Params.Merges()
	if limit > 0 && limit < len(merges) {
		merges = merges[:limit]
	}

	rows := make([]mergeRow, len(merges))
	for i, m := range merges {
		tok, _ := vocab.Params.Token(m.ID)
		rows[i] = mergeRow{
			Rank:  i,
			Left:  m.Left,
			Right: m.Right,
			ID:    m.ID,
			Token: strconv.Quote(string(tok)),
		}
	}

	return inspectReport{Header: vocab.Header, Merges: rows}
}

func printReportTable(out io.Writer, r inspectReport) error {
	h := r.Header

	specials := make([]string, len(h.SpecialTokens))
	for i, s := range h.SpecialTokens {
		specials[i] = strconv.Quote(s)
	}

	summary := tablewriter.NewWriter(out)
	summary.SetAlignment(tablewriter.ALIGN_LEFT)
	summary.SetHeaderLine(false)
	summary.SetBorder(false)
	summary.SetNoWhiteSpace(true)
	summary.SetTablePadding("  ")
	summary.AppendBulk([][]string{
		{"Format:", fmt.Sprintf("v%d (tool %s)", h.FormatVersion, h.ToolVersion)},
		{"Created:", h.CreatedAt.Format(time.RFC3339)},
		{"Run ID:", h.RunID},
		{"Vocab size:", strconv.Itoa(h.VocabSize)},
		{"Merges:", strconv.Itoa(h.NumMerges)},
		{"Special tokens:", strings.Join(specials, " ")},
	})
	keys := make([]string, 0, len(h.Metadata))
	for k := range h.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		summary.Append([]string{k + ":", h.Metadata[k]})
	}
	summary.Render()

	if len(r.Merges) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}

	data := make([][]string, len(r.Merges))
	for i, m := range r.Merges {
		data[i] = []string{
			strconv.Itoa(m.Rank),
			strconv.Itoa(int(m.Left)),
			strconv.Itoa(int(m.Right)),
			strconv.Itoa(int(m.ID)),
			m.Token,
		}
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"RANK", "LEFT", "RIGHT", "ID", "TOKEN"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
