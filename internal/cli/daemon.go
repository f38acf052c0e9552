package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/revq/internal/daemon"
)

var (
	flagOnce     bool
	flagInterval int
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch for new pull requests in the background",
}

var daemonInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the daemon state with currently open pull requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		n, err := daemon.Init(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Seeded daemon state with %d pull requests\n", n)
		return nil
	},
}

var daemonRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll for new pull requests and start review sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		interval := time.Duration(flagInterval) * time.Second
		return daemon.Run(cfg, flagOnce, interval)
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the daemon is tracking",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := daemon.CurrentStatus()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Tracking %d pull requests\n", st.TrackedPRs)
		if !st.UpdatedAt.IsZero() {
			fmt.Fprintf(os.Stdout, "Last poll: %s\n", st.UpdatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(os.Stdout, "State file: %s\n", st.StateFile)
		return nil
	},
}

func init() {
	daemonRunCmd.Flags().BoolVar(&flagOnce, "once", false, "poll a single time and exit")
	daemonRunCmd.Flags().IntVar(&flagInterval, "interval", 0, "poll interval in seconds (overrides config)")

	daemonCmd.AddCommand(daemonInitCmd)
	daemonCmd.AddCommand(daemonRunCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}
