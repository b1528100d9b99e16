package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved inputs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved inputs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		items := e.history.Items()
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history.")
			return nil
		}
		full, _ := cmd.Flags().GetBool("full")
		for i, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, strings.ReplaceAll(it.Name, "\n", " "))
			if full {
				fmt.Fprintf(cmd.OutOrStdout(), "     %s\n\n", strings.ReplaceAll(it.Content, "\n", "\n     "))
			}
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <n>",
	Short: "Print the content of a saved input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		items := e.history.Items()
		if n >= len(items) {
			return fmt.Errorf("%w: %d", history.ErrIndexOutOfRange, n+1)
		}
		fmt.Fprintln(cmd.OutOrStdout(), items[n].Content)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <n>",
	Short: "Delete a saved input by its list number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		removed, err := e.history.Delete(cmd.Context(), n)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", removed.Name)
		return nil
	},
}

var historyRenameCmd = &cobra.Command{
	Use:   "rename <n> <name>",
	Short: "Rename a saved input",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		return e.history.Rename(cmd.Context(), n, strings.Join(args[1:], " "))
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved input",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.history.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

// parsePosition turns a 1-based list number into an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid list number %q", s)
	}
	return n - 1, nil
}

func init() {
	historyListCmd.Flags().Bool("full", false, "Also print each input's content")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyRenameCmd)
	historyCmd.AddCommand(historyClearCmd)
}
