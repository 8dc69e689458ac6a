package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/danielolaszy/ackmail/internal/config"
	"github.com/danielolaszy/ackmail/internal/jira"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/internal/mail"
	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/gomail.v2"
)

// acknowledgeCmd sends an acknowledgment email for every new, unassigned ticket.
var acknowledgeCmd = &cobra.Command{
	Use:     "acknowledge",
	Aliases: []string{"ack"},
	Short:   "Email reporters of new unassigned JIRA tickets",
	Long: `Search a JIRA project for unresolved, unassigned tickets created within the
lookback window and send each reporter an acknowledgment email.

Tickets whose reporter has no visible email address are skipped. A failed send is
reported and the remaining tickets are still processed. The SMTP connection is
opened once and closed once per run.

Example:
  ackmail acknowledge -p ST -w 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newJiraClient(cmd)
		if err != nil {
			return err
		}
		if err := config.ValidateSMTPConfig(cfg); err != nil {
			return err
		}

		query, err := queryFromFlags(cmd, cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := client.Ping(ctx); err != nil {
			return err
		}

		_, err = acknowledge(ctx, client, mail.NewNotifier(cfg), query)
		return err
	},
}

func init() {
	acknowledgeCmd.Flags().StringP("project", "p", "", "JIRA project key (default from ACK_PROJECT)")
	acknowledgeCmd.Flags().IntP("window", "w", 0, "Lookback window in minutes (default from ACK_WINDOW_MINUTES)")
	acknowledgeCmd.Flags().Int("max-results", 0, "Maximum number of tickets to fetch (default from ACK_MAX_RESULTS)")
}

// queryFromFlags merges command flags over configured defaults.
func queryFromFlags(cmd *cobra.Command, cfg *config.Config) (jira.Query, error) {
	project, _ := cmd.Flags().GetString("project")
	window, _ := cmd.Flags().GetInt("window")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	if project == "" {
		project = cfg.Ack.Project
	}
	if window == 0 {
		window = cfg.Ack.WindowMinutes
	}
	if maxResults == 0 {
		maxResults = cfg.Ack.MaxResults
	}

	if project == "" {
		return jira.Query{}, fmt.Errorf("a project must be specified using --project or ACK_PROJECT")
	}
	if window < 1 {
		return jira.Query{}, fmt.Errorf("lookback window must be at least one minute, got %d", window)
	}

	return jira.Query{
		Project:    project,
		Window:     time.Duration(window) * time.Minute,
		MaxResults: maxResults,
	}, nil
}

type ticketSearcher interface {
	SearchTickets(ctx context.Context, q jira.Query) ([]models.TicketRecord, error)
}

type ticketNotifier interface {
	Connect() (gomail.SendCloser, error)
	Notify(conn gomail.Sender, tickets []models.TicketRecord) mail.Report
}

// acknowledge opens the mail connection, runs the search and hands the result to the
// notifier. The connection is opened before the search so bad SMTP credentials fail
// every run. A connection or search failure is returned; per-ticket problems only
// show up in the report.
func acknowledge(ctx context.Context, searcher ticketSearcher, notifier ticketNotifier, q jira.Query) (mail.Report, error) {
	conn, err := notifier.Connect()
	if err != nil {
		return mail.Report{}, err
	}
	defer mail.Close(conn)

	logging.Info("searching for new tickets",
		"project", q.Project,
		"window_minutes", q.WindowMinutes())

	tickets, err := searcher.SearchTickets(ctx, q)
	if err != nil {
		return mail.Report{}, fmt.Errorf("failed to fetch jira tickets: %w", err)
	}

	if len(tickets) == 0 {
		logging.Info("no issues found in jira",
			"project", q.Project,
			"window_minutes", q.WindowMinutes())
		return mail.Report{}, nil
	}

	logging.Info("issues found, starting email dispatch", "count", len(tickets))

	report := notifier.Notify(conn, tickets)

	logging.Info("acknowledgment run complete",
		"sent", len(report.Sent),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))

	return report, nil
}
