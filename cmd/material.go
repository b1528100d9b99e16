package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/analysis"
	"github.com/abhisek/cihui/internal/contentgen"
	"github.com/abhisek/cihui/internal/worksheet"
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Produce learning and voice material",
}

var materialLearningCmd = &cobra.Command{
	Use:   "learning [text]",
	Short: "Analyze text and print the learning cards as text",
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
		return writeOutput(cmd, worksheet.RenderLearningMaterial(a.Cards))
	},
}

var materialCharsCmd = &cobra.Command{
	Use:   "chars [characters]",
	Short: "Voice material for single characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVoiceMaterial(cmd, args, func(e *env, req analysis.Request) (string, error) {
			return e.pipeline.VoiceChars(cmd.Context(), req)
		})
	},
}

var materialWordsCmd = &cobra.Command{
	Use:   "words [words]",
	Short: "Voice material for words, with image keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVoiceMaterial(cmd, args, func(e *env, req analysis.Request) (string, error) {
			return e.pipeline.VoiceWords(cmd.Context(), req, contentgen.WordsWithKeywords)
		})
	},
}

var materialWords2Cmd = &cobra.Command{
	Use:   "words2 [words]",
	Short: "Voice material for words, without image keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVoiceMaterial(cmd, args, func(e *env, req analysis.Request) (string, error) {
			return e.pipeline.VoiceWords(cmd.Context(), req, contentgen.WordsPlain)
		})
	},
}

func runVoiceMaterial(cmd *cobra.Command, args []string, fn func(*env, analysis.Request) (string, error)) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAI(cmd.Context()); err != nil {
		return err
	}
	text, name, err := readInput(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	out, err := fn(e, analysis.Request{Input: text, HistoryName: name, Progress: stageReporter(cmd)})
	if err != nil {
		return err
	}
	return writeOutput(cmd, out)
}

func init() {
	for _, c := range []*cobra.Command{materialLearningCmd, materialCharsCmd, materialWordsCmd, materialWords2Cmd} {
		addInputFlags(c)
		addOutputFlags(c)
		materialCmd.AddCommand(c)
	}
}
