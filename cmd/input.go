package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/screen"
	"github.com/abhisek/cihui/internal/source"
	"github.com/abhisek/cihui/internal/vocab"
)

// addInputFlags registers the flags readInput understands.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read input from a file (- for stdin)")
	cmd.Flags().StringP("url", "u", "", "Read input from a web page")
}

// readInput returns the text to work on from --file, --url or the
// arguments, plus a history label when the input came from a page.
func readInput(ctx context.Context, cmd *cobra.Command, args []string) (text, name string, err error) {
	file, _ := cmd.Flags().GetString("file")
	rawURL, _ := cmd.Flags().GetString("url")

	switch {
	case file != "":
		var data []byte
		if file == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return "", "", fmt.Errorf("read input: %w", err)
		}
		return string(data), "", nil
	case rawURL != "":
		return fetchArticle(ctx, rawURL)
	}

	text = strings.Join(args, " ")
	if source.IsURL(text) {
		return fetchArticle(ctx, text)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", &analysis.UserError{Message: analysis.MsgEmptyInput}
	}
	return text, "", nil
}

func fetchArticle(ctx context.Context, rawURL string) (string, string, error) {
	article, err := source.NewFetcher(nil).Fetch(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return article.Input(), article.Title, nil
}

// analyzeInput reads the command input and runs the pipeline on it,
// reporting stages on stderr.
func analyzeInput(cmd *cobra.Command, e *env, args []string) (*vocab.Analysis, error) {
	ctx := cmd.Context()
	if err := e.requireAI(ctx); err != nil {
		return nil, err
	}
	text, name, err := readInput(ctx, cmd, args)
	if err != nil {
		return nil, err
	}
	return e.pipeline.Run(ctx, analysis.Request{
		Input:       text,
		HistoryName: name,
		Progress:    stageReporter(cmd),
	})
}

// stageReporter prints pipeline stages to the command's error stream.
func stageReporter(cmd *cobra.Command) func(string) {
	return func(stage string) {
		fmt.Fprintln(cmd.ErrOrStderr(), stage)
	}
}

// writeOutput prints text, or writes it to --out when set, and copies it
// to the clipboard when --copy is set.
func writeOutput(cmd *cobra.Command, text string) error {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "saved to", out)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}

	if cp, _ := cmd.Flags().GetBool("copy"); cp {
		if err := screen.SystemClipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
	}
	return nil
}

// addOutputFlags registers the flags writeOutput understands.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().Bool("copy", false, "Also copy the text to the clipboard")
}
