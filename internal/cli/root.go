package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dshills/revq/internal/config"
	"github.com/dshills/revq/internal/gh"
	"github.com/dshills/revq/internal/repos"
	"github.com/dshills/revq/internal/ui"
)

const version = "0.2.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var (
	flagDrafts      bool
	flagMy          bool
	flagRoot        string
	flagExclude     []string
	flagSaveExclude bool
)

var rootCmd = &cobra.Command{
	Use:   "revq",
	Short: "Terminal pull request review",
	Long:  "Revq lists the pull requests waiting on your review across local checkouts and opens them in an interactive diff viewer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		user, err := gh.CurrentUser()
		if err != nil {
			return fmt.Errorf("gh authentication: %w", err)
		}

		var dirs []string
		if !flagMy {
			dirs, err = repos.Scan(cfg.ReposRoot, cfg.Exclude)
			if err != nil {
				return err
			}
			var dropped int
			dirs, dropped = repos.Dedupe(dirs, gh.RepoName)
			if dropped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d duplicate checkout(s)\n", dropped)
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no git checkouts found under %s", cfg.ReposRoot)
			}
		}

		m := ui.New(ui.Options{
			Config:        cfg,
			User:          user,
			Dirs:          dirs,
			IncludeDrafts: flagDrafts,
			MyPRs:         flagMy,
		})
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running interface: %w", err)
		}
		return nil
	},
}

// loadConfig merges configuration with the root command's flags and
// persists newly excluded directories when asked.
func loadConfig() (config.Config, error) {
	overrides := map[string]string{}
	if flagRoot != "" {
		overrides["root"] = flagRoot
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return config.Config{}, err
	}
	added := false
	for _, name := range flagExclude {
		if config.AddExclude(&cfg, name) {
			added = true
		}
	}
	if flagSaveExclude && added {
		if err := config.Save(cfg); err != nil {
			return config.Config{}, fmt.Errorf("saving excludes: %w", err)
		}
	}
	return cfg, nil
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.Flags().BoolVar(&flagDrafts, "drafts", false, "include draft pull requests")
	rootCmd.Flags().BoolVar(&flagMy, "my", false, "show your own open pull requests instead")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "directory to scan for git checkouts")
	rootCmd.PersistentFlags().StringSliceVar(&flagExclude, "exclude", nil, "directory names to skip while scanning")
	rootCmd.PersistentFlags().BoolVar(&flagSaveExclude, "save-exclude", false, "persist --exclude values to the config file")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitRuntimeError
	}

	return ExitSuccess
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print revq version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "revq version %s\n", version)
	},
}
