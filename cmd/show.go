package cmd

import (
	"fmt"
	"io"

	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show TICKET",
	Short: "Print the details of a JIRA ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newJiraClient(cmd)
		if err != nil {
			return err
		}

		details, err := client.Ticket(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printTicket(cmd.OutOrStdout(), details)
		return nil
	},
}

var worklogCmd = &cobra.Command{
	Use:   "worklog TICKET DURATION",
	Short: "Log time spent on a JIRA ticket, e.g. 30m or \"1h 30m\"",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newJiraClient(cmd)
		if err != nil {
			return err
		}
		return client.AddWorklog(cmd.Context(), args[0], args[1])
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign TICKET ACCOUNT_ID",
	Short: "Assign a JIRA ticket to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newJiraClient(cmd)
		if err != nil {
			return err
		}
		return client.Assign(cmd.Context(), args[0], args[1])
	},
}

func printTicket(w io.Writer, d *models.TicketDetails) {
	orNone := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	fmt.Fprintf(w, "Ticket:      %s\n", d.Key)
	fmt.Fprintf(w, "Project:     %s (%s)\n", orNone(d.Project), orNone(d.ProjectName))
	fmt.Fprintf(w, "Type:        %s\n", orNone(d.IssueType))
	fmt.Fprintf(w, "Summary:     %s\n", orNone(d.Summary))
	fmt.Fprintf(w, "Status:      %s\n", orNone(d.Status))
	fmt.Fprintf(w, "Priority:    %s\n", orNone(d.Priority))
	fmt.Fprintf(w, "Assignee:    %s\n", orNone(d.Assignee))
	fmt.Fprintf(w, "Estimate:    %s (remaining %s, spent %s)\n",
		orNone(d.OriginalEstimate), orNone(d.RemainingEstimate), orNone(d.TimeSpent))
	fmt.Fprintf(w, "\n%s\n", orNone(d.Description))
}
