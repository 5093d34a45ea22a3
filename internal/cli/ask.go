package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/pipeline"
	"github.com/mediamind/mediamind/internal/score"
)

var (
	askFileScope int64
	askTopK      int
	askStream    bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question grounded in your ingested files",
	Long: `Ask a natural-language question. The answer is synthesized strictly from
the most relevant chunks of your ingested documents and transcripts,
with sources, a confidence score and (for media files) timestamps.

Examples:
  mediamind ask "What were the Q3 revenue figures?"
  mediamind ask --file 3 "What does the speaker say about latency?"
  mediamind ask --stream "Summarize the architecture discussion"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(args[0])
		ctx := cmd.Context()

		p, err := openPipeline(ctx, func(cfg *model.Config) {
			if askTopK > 0 {
				cfg.Retrieval.TopK = askTopK
			}
		})
		if err != nil {
			return err
		}
		defer p.Close()

		var record *model.AnswerRecord
		if askStream && !asJSON {
			record, err = p.AnswerQuestionStream(ctx, question, askFileScope, func(delta string) {
				fmt.Print(delta)
			})
			fmt.Println()
		} else {
			record, err = p.AnswerQuestion(ctx, question, askFileScope)
		}
		if err != nil {
			if errors.Is(err, model.ErrEmptyCorpus) {
				return fmt.Errorf("nothing ingested yet (or nothing in scope): run 'mediamind ingest <path>' first")
			}
			return err
		}

		if asJSON {
			return printJSON(record)
		}
		printAnswer(record, !askStream)
		return nil
	},
}

// printAnswer renders an answer record for a terminal. withText controls
// whether the answer body is printed (the streaming path already has).
func printAnswer(record *model.AnswerRecord, withText bool) {
	if withText {
		fmt.Println(record.Answer)
	}
	fmt.Println()

	if record.Insufficient {
		fmt.Println("  (the indexed material does not cover this question)")
	}
	fmt.Printf("  Confidence: %.2f (%s), %d chunks, model %s\n",
		record.Confidence, score.Level(record.Confidence), record.ChunksUsed, record.Model)

	if len(record.Sources) > 0 {
		fmt.Println("  Sources:")
		for i, s := range record.Sources {
			fmt.Printf("    %d. file %d chunk %d (score %.2f)", i+1, s.FileID, s.ChunkIndex, s.Score)
			if s.Page > 0 {
				fmt.Printf(" page %d", s.Page)
			}
			fmt.Println()
		}
	}
	if len(record.Timestamps) > 0 {
		fmt.Println("  Timestamps:")
		for _, span := range record.Timestamps {
			fmt.Printf("    %s - %s  (similarity %.2f)\n", span.FormattedStart, span.FormattedEnd, span.Similarity)
		}
	}
}

// openPipeline loads the effective config, applies per-command tweaks and
// constructs the pipeline
func openPipeline(ctx context.Context, tweak func(*model.Config)) (*pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(cfg)
	}
	return pipeline.NewPipeline(ctx, cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Int64Var(&askFileScope, "file", 0, "restrict retrieval to one file ID (0 = all files)")
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "number of chunks to retrieve (default: from config)")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer incrementally as it is generated")
}
