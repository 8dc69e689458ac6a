package cmd

import (
	"fmt"

	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/spf13/cobra"
)

// createCmd creates a ticket, then uploads attachments and adds comments to it.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a JIRA ticket",
	Long: `Create a JIRA ticket and print its key.

Files passed with --attach are uploaded after creation; missing files are reported
and skipped. Each --comment is added after the attachments, in order.

Example:
  ackmail create -p ST --summary "Account locked" --type Request --priority Highest \
    --estimate 10h --attach ./screenshot.jpg --comment "Automated comment"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newJiraClient(cmd)
		if err != nil {
			return err
		}

		req := models.TicketRequest{}
		req.Project, _ = cmd.Flags().GetString("project")
		req.Summary, _ = cmd.Flags().GetString("summary")
		req.Description, _ = cmd.Flags().GetString("description")
		req.IssueType, _ = cmd.Flags().GetString("type")
		req.Priority, _ = cmd.Flags().GetString("priority")
		req.OriginalEstimate, _ = cmd.Flags().GetString("estimate")
		req.ReporterAccountID, _ = cmd.Flags().GetString("reporter")
		req.AssigneeAccountID, _ = cmd.Flags().GetString("assignee")
		attachments, _ := cmd.Flags().GetStringArray("attach")
		comments, _ := cmd.Flags().GetStringArray("comment")

		if req.Project == "" {
			req.Project = cfg.Ack.Project
		}
		if req.Project == "" {
			return fmt.Errorf("a project must be specified using --project or ACK_PROJECT")
		}
		if req.Summary == "" {
			return fmt.Errorf("--summary is required")
		}
		if req.Description == "" {
			req.Description = req.Summary
		}

		ctx := cmd.Context()
		key, err := client.CreateTicket(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)

		var attachErr error
		if len(attachments) > 0 {
			attached, err := client.AttachFiles(ctx, key, attachments)
			logging.Info("attachments processed",
				"ticket", key,
				"attached", len(attached),
				"requested", len(attachments))
			attachErr = err
		}

		for _, body := range comments {
			if err := client.AddComment(ctx, key, body); err != nil {
				return fmt.Errorf("ticket %s created but adding a comment failed: %w", key, err)
			}
		}

		if attachErr != nil {
			return fmt.Errorf("ticket %s created but some attachments failed: %w", key, attachErr)
		}
		return nil
	},
}

// attachCmd uploads files to an existing ticket.
var attachCmd = &cobra.Command{
	Use:   "attach TICKET FILE...",
	Short: "Attach files to a JIRA ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newJiraClient(cmd)
		if err != nil {
			return err
		}

		key := args[0]
		attached, err := client.AttachFiles(cmd.Context(), key, args[1:])
		for _, name := range attached {
			fmt.Fprintf(cmd.OutOrStdout(), "attached %s to %s\n", name, key)
		}
		return err
	},
}

func init() {
	createCmd.Flags().StringP("project", "p", "", "JIRA project key (default from ACK_PROJECT)")
	createCmd.Flags().StringP("summary", "s", "", "Ticket summary")
	createCmd.Flags().StringP("description", "d", "", "Ticket description (defaults to the summary)")
	createCmd.Flags().StringP("type", "t", "Task", "Issue type name")
	createCmd.Flags().String("priority", "", "Priority name, e.g. Highest")
	createCmd.Flags().String("estimate", "", "Original time estimate, e.g. 10h")
	createCmd.Flags().String("reporter", "", "Reporter account id")
	createCmd.Flags().String("assignee", "", "Assignee account id")
	createCmd.Flags().StringArray("attach", []string{}, "File to attach (can be specified multiple times)")
	createCmd.Flags().StringArray("comment", []string{}, "Comment to add (can be specified multiple times)")
}
