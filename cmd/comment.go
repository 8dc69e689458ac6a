package cmd

import (
	"fmt"
	"io"

	"github.com/danielolaszy/ackmail/internal/comments"
	"github.com/danielolaszy/ackmail/internal/jira"
	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/spf13/cobra"
)

// commentCmd groups the comment subcommands.
var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Add or inspect JIRA ticket comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add TICKET BODY",
	Short: "Add a comment to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newJiraClient(cmd)
		if err != nil {
			return err
		}
		return client.AddComment(cmd.Context(), args[0], args[1])
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list TICKET",
	Short: "Print a ticket's comments",
	Long: `Print the comment thread of a ticket.

Filters (mutually exclusive):
  --latest          only the comment with the highest id
  --author NAME     bodies of comments by this exact display name
  --date YYYY-MM-DD bodies of comments written on this date, in the comment's own timezone`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		latest, _ := cmd.Flags().GetBool("latest")
		author, _ := cmd.Flags().GetString("author")
		date, _ := cmd.Flags().GetString("date")

		client, _, err := newJiraClient(cmd)
		if err != nil {
			return err
		}

		thread, err := client.Comments(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printComments(cmd.OutOrStdout(), thread, commentFilter{latest: latest, author: author, date: date})
	},
}

func init() {
	commentListCmd.Flags().Bool("latest", false, "Show only the most recent comment")
	commentListCmd.Flags().String("author", "", "Show comments by this author display name")
	commentListCmd.Flags().String("date", "", "Show comments created on this date (YYYY-MM-DD)")
	commentListCmd.MarkFlagsMutuallyExclusive("latest", "author", "date")

	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentListCmd)
}

type commentFilter struct {
	latest bool
	author string
	date   string
}

// printComments writes the thread, or the filtered bodies, to w.
func printComments(w io.Writer, thread []models.CommentRecord, f commentFilter) error {
	switch {
	case f.latest:
		c, ok := comments.Latest(thread)
		if !ok {
			fmt.Fprintln(w, "no comments")
			return nil
		}
		fmt.Fprintln(w, c.Body)
	case f.author != "":
		printBodies(w, comments.ByAuthor(thread, f.author))
	case f.date != "":
		bodies, err := comments.ByDate(thread, f.date)
		if err != nil {
			return err
		}
		printBodies(w, bodies)
	default:
		if len(thread) == 0 {
			fmt.Fprintln(w, "no comments")
			return nil
		}
		for _, c := range thread {
			created := "unknown time"
			if !c.CreatedAt.IsZero() {
				created = c.CreatedAt.Format(jira.TimestampLayout)
			}
			fmt.Fprintf(w, "[%s] %s at %s\n%s\n", c.ID, c.AuthorDisplayName, created, c.Body)
			fmt.Fprintln(w, "-------------------------------------------------")
		}
	}
	return nil
}

func printBodies(w io.Writer, bodies []string) {
	if len(bodies) == 0 {
		fmt.Fprintln(w, "no matching comments")
		return
	}
	for _, body := range bodies {
		fmt.Fprintln(w, body)
	}
}
