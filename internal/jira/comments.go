package jira

import (
	"context"
	"fmt"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/pkg/models"
)

// TimestampLayout is the format JIRA uses for comment timestamps,
// e.g. "2025-11-20T11:40:18.840+0600".
const TimestampLayout = "2006-01-02T15:04:05.000-0700"

// Comments returns the comment thread of a ticket in the order JIRA returns it.
func (c *Client) Comments(ctx context.Context, key string) ([]models.CommentRecord, error) {
	if c.client == nil {
		return nil, ErrNotInitialized
	}

	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "comment"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments of %s: %w (status: %d)", key, err, statusCode(resp))
	}

	if issue.Fields == nil || issue.Fields.Comments == nil {
		return []models.CommentRecord{}, nil
	}

	records := make([]models.CommentRecord, 0, len(issue.Fields.Comments.Comments))
	for _, comment := range issue.Fields.Comments.Comments {
		if comment == nil {
			continue
		}
		records = append(records, toCommentRecord(key, comment))
	}
	return records, nil
}

func toCommentRecord(key string, comment *jira.Comment) models.CommentRecord {
	record := models.CommentRecord{
		ID:                comment.ID,
		AuthorDisplayName: comment.Author.DisplayName,
		Body:              comment.Body,
	}

	created, err := ParseTimestamp(comment.Created)
	if err != nil {
		logging.Warn("unparseable comment timestamp",
			"ticket", key,
			"comment_id", comment.ID,
			"created", comment.Created,
			"error", err)
		return record
	}
	record.CreatedAt = created
	return record
}

// ParseTimestamp parses a JIRA timestamp, keeping the offset it was written with.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		// Some endpoints omit the milliseconds.
		if t2, err2 := time.Parse("2006-01-02T15:04:05-0700", s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// Ticket fetches a read-only summary of one ticket.
func (c *Client) Ticket(ctx context.Context, key string) (*models.TicketDetails, error) {
	if c.client == nil {
		return nil, ErrNotInitialized
	}

	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w (status: %d)", key, err, statusCode(resp))
	}

	details := &models.TicketDetails{Key: issue.Key}
	fields := issue.Fields
	if fields == nil {
		return details, nil
	}

	details.Project = fields.Project.Key
	details.ProjectName = fields.Project.Name
	details.IssueType = fields.Type.Name
	details.Summary = fields.Summary
	details.Description = fields.Description
	if fields.Status != nil {
		details.Status = fields.Status.Name
	}
	if fields.Priority != nil {
		details.Priority = fields.Priority.Name
	}
	if fields.Assignee != nil {
		details.Assignee = fields.Assignee.DisplayName
	}
	if tt := fields.TimeTracking; tt != nil {
		details.OriginalEstimate = tt.OriginalEstimate
		details.RemainingEstimate = tt.RemainingEstimate
		details.TimeSpent = tt.TimeSpent
	}

	return details, nil
}
