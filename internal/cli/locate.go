package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// locateCmd represents the locate command
var locateCmd = &cobra.Command{
	Use:   "locate <file-id> <text>",
	Short: "Find where a piece of text is spoken in a media file",
	Long: `Match free text against a media file's transcript and print the
timestamp spans where it occurs. Matching is fuzzy: it tolerates
paraphrasing, punctuation and case differences.

Examples:
  mediamind locate 3 "we decided to ship the beta"
  mediamind locate 3 --json "latency regression"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid file ID %q", args[0])
		}

		ctx := cmd.Context()
		p, err := openPipeline(ctx, nil)
		if err != nil {
			return err
		}
		defer p.Close()

		spans, err := p.LocateText(ctx, fileID, args[1])
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(spans)
		}

		if len(spans) == 0 {
			fmt.Println("No matching spans found.")
			return nil
		}
		for _, span := range spans {
			fmt.Printf("%s - %s  (similarity %.2f)\n", span.FormattedStart, span.FormattedEnd, span.Similarity)
			fmt.Printf("  %s\n", excerpt(span.Text, 160))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
