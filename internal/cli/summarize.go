package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	summarizeMaxWords int
	summarizePrompt   string
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize <file-id>",
	Short: "Summarize an ingested file",
	Long: `Generate an LLM summary of one ingested file. Documents are summarized
from their stored text, audio and video files from their transcript.

Examples:
  mediamind summarize 3
  mediamind summarize 3 --max-words 150
  mediamind summarize 3 --prompt "List the action items discussed"`,
	Args: cobra.ExactArgs(1),
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

		result, err := p.SummarizeFile(ctx, fileID, summarizePrompt, summarizeMaxWords)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(result)
		}
		fmt.Printf("Summary of %q (%s):\n\n", result.FileName, result.ContentType)
		fmt.Println(result.Summary)
		fmt.Printf("\n  Model: %s, %d chars summarized\n", result.Model, result.ContentLength)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().IntVar(&summarizeMaxWords, "max-words", 0, "request the summary stay under this many words (0 = no limit)")
	summarizeCmd.Flags().StringVar(&summarizePrompt, "prompt", "", "custom instruction replacing the default summary directive")
}
