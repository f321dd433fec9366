package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/wgold/splitmon/internal/edgar"
	"github.com/wgold/splitmon/internal/extract"
	"github.com/wgold/splitmon/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Run the fact extractors over local filing text",
	Long: `Extract runs the ratio, effective-date and rounding-policy extractors
over one or more local filing files and prints the resulting extraction
records as YAML. Raw EDGAR .txt/.htm documents are sanitized first.
Intended for debugging extractor behavior against a saved filing.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("filed", "", "filing date (YYYY-MM-DD, default today) used to anchor date extraction")
	extractCmd.Flags().Bool("raw", false, "treat input as already-sanitized plain text")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more filing text files")
	}

	filedAt := time.Now().UTC()
	if s, _ := cmd.Flags().GetString("filed"); s != "" {
		var err error
		if filedAt, err = time.Parse("2006-01-02", s); err != nil {
			return fmt.Errorf("parsing --filed: %w", err)
		}
	}
	raw, _ := cmd.Flags().GetBool("raw")

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
			failed++
			continue
		}

		text := string(data)
		if !raw {
			text = edgar.SanitizeHTML(text)
		}

		ex := extract.Extract(text, filedAt)
		out := struct {
			File       string           `yaml:"file"`
			FiledAt    string           `yaml:"filed_at"`
			SplitFound bool             `yaml:"split_language"`
			Extraction types.Extraction `yaml:"extraction"`
		}{
			File:       path,
			FiledAt:    filedAt.Format("2006-01-02"),
			SplitFound: extract.ContainsReverseSplitLanguage(text),
			Extraction: ex,
		}

		enc, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshaling extraction for %s: %w", path, err)
		}
		fmt.Fprintf(os.Stdout, "---\n%s", enc)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed extraction", failed)
	}
	return nil
}
