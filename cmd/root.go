package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/cihui/internal/config"
	"github.com/abhisek/cihui/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cihui",
	Short: "AI vocabulary tutor for Chinese learners",
	Long:  "Cihui: a terminal app that turns a reading passage into learning cards, quizzes and worksheets.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CIHUI_DB_PATH)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/cihui/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(worksheetCmd)
	rootCmd.AddCommand(materialCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig reads the config file named by --config and applies
// --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db.path setting, then a file in the data directory.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config, dataDir string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	if dataDir == "" {
		return store.DefaultDBPath()
	}
	return filepath.Join(dataDir, store.DBFileName), nil
}
