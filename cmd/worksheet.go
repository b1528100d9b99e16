package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/vocab"
	"github.com/abhisek/cihui/internal/worksheet"
)

var worksheetCmd = &cobra.Command{
	Use:   "worksheet [text]",
	Short: "Analyze text and print a printable quiz worksheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, err := parseKinds(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := analyzeInput(cmd, e, args)
		if err != nil {
			return err
		}
		if a.Notice != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), a.Notice)
		}

		seed := e.cfg.Quiz.Seed
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetUint64("seed")
		}
		text, err := worksheet.Render(quiz.NewRand(seed), a.Quizzes, kinds...)
		if err != nil {
			return fmt.Errorf("render worksheet: %w", err)
		}
		return writeOutput(cmd, text)
	},
}

func parseKinds(cmd *cobra.Command) ([]vocab.QuizKind, error) {
	raw, _ := cmd.Flags().GetStringSlice("types")
	var kinds []vocab.QuizKind
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		k, err := vocab.ParseQuizKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func init() {
	addInputFlags(worksheetCmd)
	addOutputFlags(worksheetCmd)
	worksheetCmd.Flags().StringSlice("types", nil, "Quiz types to include: def, sen, con (default all)")
	worksheetCmd.Flags().Uint64("seed", 0, "Shuffle seed (0 picks a random one)")
}
