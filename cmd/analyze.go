package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/vocab"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Extract vocabulary, learning cards and quizzes from text",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := analyzeInput(cmd, e, args)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}
		printAnalysis(cmd.OutOrStdout(), a)
		return nil
	},
}

func printAnalysis(w io.Writer, a *vocab.Analysis) {
	fmt.Fprintf(w, "詞彙 (%d): %s\n\n", len(a.Words), strings.Join(a.Words, "、"))
	for i, c := range a.Cards {
		fmt.Fprintf(w, "%d. %s: %s\n", i+1, c.Word, c.Definition)
		for _, s := range c.Sentences {
			fmt.Fprintf(w, "   - %s\n", s)
		}
	}
	fmt.Fprintln(w)
	for _, k := range vocab.AllKinds {
		fmt.Fprintf(w, "%s: %d 題\n", k.Title(), len(a.Quizzes.Get(k)))
	}
	if a.Notice != "" {
		fmt.Fprintf(w, "\n%s\n", a.Notice)
	}
}

func init() {
	addInputFlags(analyzeCmd)
	analyzeCmd.Flags().Bool("json", false, "Print the full analysis as JSON")
}
