// Package cmd provides the command-line interface for the ackmail CLI tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/danielolaszy/ackmail/internal/config"
	"github.com/danielolaszy/ackmail/internal/jira"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ackmail",
	Short: "Ackmail acknowledges new JIRA tickets by email",
	Long: `Ackmail is a CLI tool that finds new, unassigned JIRA tickets and sends
each reporter an acknowledgment email. It can also create tickets, attach files,
and inspect comment threads.

Credentials are read from the environment (JIRA_URL, JIRA_USERNAME, JIRA_TOKEN,
SMTP_USERNAME, SMTP_PASSWORD) or from the OS keyring.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("log-level") {
			level, _ := cmd.Flags().GetString("log-level")
			logging.SetupLogger(os.Stdout, logging.ParseLevel(level))
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(acknowledgeCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(worklogCmd)
	rootCmd.AddCommand(assignCmd)
}

// loadConfig reads configuration, honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadConfig(path)
}

// newJiraClient loads and validates the JIRA configuration and builds a client.
func newJiraClient(cmd *cobra.Command) (*jira.Client, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, nil, err
	}

	client, err := jira.NewClient(cfg.Jira)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize jira client: %w", err)
	}
	return client, cfg, nil
}
