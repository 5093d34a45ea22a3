package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediamind/mediamind/internal/model"
)

var (
	searchFileScope int64
	searchTopK      int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the chunks most similar to a query",
	Long: `Run semantic retrieval without generating an answer. Useful for
checking what material a question would be grounded in.

Examples:
  mediamind search "database migration"
  mediamind search --file 2 --top-k 10 "error budget"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(args[0])
		ctx := cmd.Context()

		p, err := openPipeline(ctx, func(cfg *model.Config) {
			if searchTopK > 0 {
				cfg.Retrieval.TopK = searchTopK
			}
		})
		if err != nil {
			return err
		}
		defer p.Close()

		result, err := p.Search(ctx, query, searchFileScope)
		if err != nil {
			if errors.Is(err, model.ErrEmptyCorpus) {
				return fmt.Errorf("nothing ingested yet (or nothing in scope): run 'mediamind ingest <path>' first")
			}
			return err
		}

		if asJSON {
			return printJSON(result)
		}

		if len(result.Candidates) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		fmt.Printf("%d matches for %q:\n\n", len(result.Candidates), result.Query)
		for i, c := range result.Candidates {
			fmt.Printf("%d. [score %.3f] file %d chunk %d", i+1, c.Score, c.Chunk.FileID, c.Chunk.Index)
			if c.Chunk.Page > 0 {
				fmt.Printf(" (page %d)", c.Chunk.Page)
			}
			fmt.Println()
			fmt.Printf("   %s\n\n", excerpt(c.Chunk.Text, 160))
		}
		return nil
	},
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Int64Var(&searchFileScope, "file", 0, "restrict search to one file ID (0 = all files)")
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "number of results (default: from config)")
}
