package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()
		repo := env.store.EventRepo()

		ctx := cmd.Context()
		events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No LLM events found.")
			return nil
		}

		// Header.
		fmt.Fprintf(cmd.OutOrStdout(), "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 100))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			model := e.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()
		repo := env.store.EventRepo()

		ctx := cmd.Context()
		e, err := repo.GetLLMEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("\u2500", 60)

		fmt.Fprintf(cmd.OutOrStdout(), "ID:        %d\n", e.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(cmd.OutOrStdout(), "Provider:  %s\n", e.Provider)
		fmt.Fprintf(cmd.OutOrStdout(), "Model:     %s\n", e.Model)
		fmt.Fprintf(cmd.OutOrStdout(), "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(cmd.OutOrStdout(), "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(cmd.OutOrStdout(), "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(cmd.OutOrStdout(), "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Error:     %s\n", e.ErrorMessage)
		}

		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), sep)
		fmt.Fprintln(cmd.OutOrStdout(), "REQUEST")
		fmt.Fprintln(cmd.OutOrStdout(), sep)
		if e.RequestBody != "" {
			fmt.Fprintln(cmd.OutOrStdout(), e.RequestBody)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "(not captured)")
		}

		fmt.Fprintln(cmd.OutOrStdout(), sep)
		fmt.Fprintln(cmd.OutOrStdout(), "RESPONSE")
		fmt.Fprintln(cmd.OutOrStdout(), sep)
		if e.ResponseBody != "" {
			fmt.Fprintln(cmd.OutOrStdout(), e.ResponseBody)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "(not captured)")
		}

		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()
		repo := env.store.EventRepo()

		ctx := cmd.Context()
		stats, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No LLM usage recorded yet.")
			return nil
		}

		// Usage by purpose.
		fmt.Fprintln(cmd.OutOrStdout(), "Usage by Purpose")
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 80))
		fmt.Fprintf(cmd.OutOrStdout(), "%-16s  %6s  %10s  %10s  %10s  %6s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Total", "Images", "Avg Ms")
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 80))

		var totalCalls, totalIn, totalOut, totalImages int
		for _, st := range stats {
			total := st.InputTokens + st.OutputTokens
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s  %6d  %10d  %10d  %10d  %6d  %8d\n",
				st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, total, st.Images, st.AvgLatencyMs)
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
			totalImages += st.Images
		}

		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 80))
		fmt.Fprintf(cmd.OutOrStdout(), "%-16s  %6d  %10d  %10d  %10d  %6d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut, totalImages)

		// Cost by model.
		modelUsage, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		if len(modelUsage) > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Estimated Cost (USD)")
			fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 72))
			fmt.Fprintf(cmd.OutOrStdout(), "%-32s  %6s  %10s  %10s  %10s\n",
				"Model", "Calls", "Input", "Output", "Cost")
			fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 72))

			var totalCost float64
			var unknownModels []string
			for _, mu := range modelUsage {
				cost := llm.LookupCost(mu.Model)
				if cost == nil {
					unknownModels = append(unknownModels, mu.Model)
					fmt.Fprintf(cmd.OutOrStdout(), "%-32s  %6d  %10d  %10d  %10s\n",
						truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
					continue
				}
				c := cost.Cost(mu.InputTokens, mu.OutputTokens)
				totalCost += c
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s  %6d  %10d  %10d  %9s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\u2500", 72))
			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-32s  %6s  %10s  %10s  %9s\n",
				label, "", "", "", formatCost(totalCost))

			if len(unknownModels) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
			}
		}

		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. extract-words, learning-cards, quiz-definition, illustration)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
