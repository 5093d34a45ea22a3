package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var batchKind string

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Ingest many files listed in a text file",
	Long: `Ingest every file listed in a text file, one path per line. Blank
lines and lines starting with # are skipped; duplicate paths are
ingested once. A failing file does not stop the batch.

Example list file:
  # quarterly material
  reports/q3.txt
  meetings/q3-review.srt

Example:
  mediamind batch files.txt --kind document`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(batchKind)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p, err := openPipeline(ctx, nil)
		if err != nil {
			return err
		}
		defer p.Close()

		results, failures, err := p.IngestBatch(ctx, args[0], kind)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(struct {
				Ingested any      `json:"ingested"`
				Failures []string `json:"failures,omitempty"`
			}{results, errStrings(failures)})
		}

		for _, result := range results {
			printIngestResult(result)
		}
		for _, failure := range failures {
			fmt.Fprintf(os.Stderr, "failed: %v\n", failure)
		}
		fmt.Printf("\nBatch done: %d ingested, %d failed\n", len(results), len(failures))

		if len(failures) > 0 && len(results) == 0 {
			return fmt.Errorf("all %d files failed", len(failures))
		}
		return nil
	},
}

func errStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchKind, "kind", "", "file kind for every file: document, audio or video (default: autodetect)")
}
