package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/pipeline"
)

var ingestKind string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a document or transcript file",
	Long: `Ingest a file: extract its text (and transcript segments, if any),
split it into chunks, embed the chunks and add them to the index.

Supported formats: plain text, HTML, SRT and VTT subtitles, and JSON
transcripts. The file kind is detected from content; use --kind to
override it, e.g. to record a transcript as belonging to a video.

Examples:
  mediamind ingest report.txt
  mediamind ingest meeting.srt
  mediamind ingest --kind video talk.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(ingestKind)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p, err := openPipeline(ctx, nil)
		if err != nil {
			return err
		}
		defer p.Close()

		result, err := p.IngestFile(ctx, args[0], kind)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(result)
		}
		printIngestResult(result)
		return nil
	},
}

func printIngestResult(result *pipeline.IngestResult) {
	fmt.Printf("Ingested %q (file %d, %s) in %s\n",
		result.File.Name, result.File.ID, result.File.Kind, result.Duration)
	fmt.Printf("  Chunks:   %d\n", result.Chunks)
	if result.Segments > 0 {
		fmt.Printf("  Segments: %d\n", result.Segments)
	}
	if result.Pages > 0 {
		fmt.Printf("  Pages:    %d\n", result.Pages)
	}
}

// parseKind validates the --kind flag. Empty means autodetect.
func parseKind(s string) (model.FileKind, error) {
	switch s {
	case "":
		return "", nil
	case string(model.FileKindDocument):
		return model.FileKindDocument, nil
	case string(model.FileKindAudio):
		return model.FileKindAudio, nil
	case string(model.FileKindVideo):
		return model.FileKindVideo, nil
	}
	return "", fmt.Errorf("invalid kind %q (expected document, audio or video)", s)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestKind, "kind", "", "file kind: document, audio or video (default: autodetect)")
}
