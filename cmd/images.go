package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/gallery"
	"github.com/abhisek/cihui/internal/history"
	"github.com/abhisek/cihui/internal/vocab"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Manage custom images attached to words",
}

var imagesImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Attach images to the words they are named after",
	Long: "Each image file is attached to the word its name spells (忙碌.png → 忙碌) " +
		"under the vocabulary of --vocab. Directories import every image inside.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := vocabFlag(cmd)
		if err != nil {
			return err
		}
		paths, err := gallery.ExpandPaths(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no image files found")
		}

		var sentences string
		if f, _ := cmd.Flags().GetString("sentences"); f != "" {
			data, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("read sentences: %w", err)
			}
			sentences = string(data)
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireAI(cmd.Context()); err != nil {
			return err
		}

		files := make([]gallery.File, 0, len(paths))
		for _, p := range paths {
			f, err := gallery.LoadFile(p)
			if err != nil {
				return err
			}
			files = append(files, f)
		}

		var mu sync.Mutex
		out := cmd.ErrOrStderr()
		items, err := e.importer.Import(cmd.Context(), key, files, sentences, func(it gallery.Item) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "[%s] %s: %s\n", it.Status, it.Name, it.Message)
		})
		if err != nil {
			return err
		}

		failed := lo.CountBy(items, func(it gallery.Item) bool { return it.Status == gallery.StatusError })
		for _, it := range items {
			if it.Status == gallery.StatusDone {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", it.Word, it.Sentence)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d images failed", failed, len(items))
		}
		return nil
	},
}

var imagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vocabularies with custom images, or the words of one",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		key, _ := cmd.Flags().GetString("vocab")
		if key == "" {
			keys := e.overrides.VocabKeys()
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No custom images.")
				return nil
			}
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%d words)\n", history.Truncate(k, 40), len(e.overrides.ForVocab(k)))
			}
			return nil
		}

		content := e.overrides.ForVocab(vocab.VocabKey(key))
		words := lo.Keys(content)
		slices.Sort(words)
		for _, w := range words {
			c := content[w]
			image := "-"
			if c.ImageURL != "" {
				image = "image"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", w, image, c.Sentence)
		}
		return nil
	},
}

var imagesDeleteCmd = &cobra.Command{
	Use:   "delete [word...]",
	Short: "Delete custom images of some words, or of the whole vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := vocabFlag(cmd)
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			return e.overrides.DeleteVocab(cmd.Context(), key)
		}
		for _, w := range args {
			if err := e.overrides.DeleteWord(cmd.Context(), key, w); err != nil {
				return err
			}
		}
		return nil
	},
}

func vocabFlag(cmd *cobra.Command) (string, error) {
	key, _ := cmd.Flags().GetString("vocab")
	key = vocab.VocabKey(key)
	if key == "" {
		return "", errors.New("--vocab is required")
	}
	return key, nil
}

func init() {
	imagesImportCmd.Flags().String("vocab", "", "Vocabulary key: the analyzed input text")
	imagesImportCmd.Flags().String("sentences", "", "File of sentences to pair with the words before asking the AI")
	imagesListCmd.Flags().String("vocab", "", "Show the words of this vocabulary")
	imagesDeleteCmd.Flags().String("vocab", "", "Vocabulary key")

	imagesCmd.AddCommand(imagesImportCmd)
	imagesCmd.AddCommand(imagesListCmd)
	imagesCmd.AddCommand(imagesDeleteCmd)
}
