package jira

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/pkg/models"
)

// CreateTicket creates a ticket and returns its key.
func (c *Client) CreateTicket(ctx context.Context, req models.TicketRequest) (string, error) {
	if c.client == nil {
		return "", ErrNotInitialized
	}
	if req.Project == "" || req.Summary == "" || req.IssueType == "" {
		return "", fmt.Errorf("project, summary and issue type are required")
	}

	fields := &jira.IssueFields{
		Project: jira.Project{
			Key: req.Project,
		},
		Summary:     req.Summary,
		Description: req.Description,
		Type: jira.IssueType{
			Name: req.IssueType,
		},
	}
	if req.Priority != "" {
		fields.Priority = &jira.Priority{Name: req.Priority}
	}
	if req.OriginalEstimate != "" {
		fields.TimeTracking = &jira.TimeTracking{OriginalEstimate: req.OriginalEstimate}
	}
	if req.ReporterAccountID != "" {
		fields.Reporter = &jira.User{AccountID: req.ReporterAccountID}
	}
	if req.AssigneeAccountID != "" {
		fields.Assignee = &jira.User{AccountID: req.AssigneeAccountID}
	}

	newIssue, resp, err := c.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return "", fmt.Errorf("failed to create JIRA ticket: %w (status: %d)", err, statusCode(resp))
	}

	logging.Info("created jira ticket",
		"ticket", newIssue.Key,
		"project", req.Project,
		"type", req.IssueType)

	return newIssue.Key, nil
}

// AddComment adds a free-text comment to the ticket.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	if body == "" {
		return fmt.Errorf("comment body is empty")
	}

	comment, resp, err := c.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("failed to add comment to %s: %w (status: %d)", key, err, statusCode(resp))
	}

	logging.Info("comment added", "ticket", key, "comment_id", comment.ID)
	return nil
}

// AttachFiles uploads each file to the ticket and returns the names that were attached.
// Missing files are skipped with a warning. Upload failures do not stop the batch and
// are returned together once every path has been tried.
func (c *Client) AttachFiles(ctx context.Context, key string, paths []string) ([]string, error) {
	if c.client == nil {
		return nil, ErrNotInitialized
	}

	var attached []string
	var errs []error
	for _, path := range paths {
		name, err := c.attachFile(ctx, key, path)
		if errors.Is(err, os.ErrNotExist) {
			logging.Warn("file not found, skipping attachment",
				"ticket", key,
				"path", path)
			continue
		}
		if err != nil {
			logging.Error("failed to attach file",
				"ticket", key,
				"path", path,
				"error", err)
			errs = append(errs, err)
			continue
		}

		logging.Info("attachment added", "ticket", key, "file", name)
		attached = append(attached, name)
	}

	return attached, errors.Join(errs...)
}

// attachFile keeps the file open only for the duration of its own upload.
func (c *Client) attachFile(ctx context.Context, key, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	_, resp, err := c.client.Issue.PostAttachmentWithContext(ctx, key, f, name)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w (status: %d)", name, err, statusCode(resp))
	}
	return name, nil
}

// AddWorklog records time spent on a ticket, e.g. "30m" or "1h 30m".
func (c *Client) AddWorklog(ctx context.Context, key, timeSpent string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	if timeSpent == "" {
		return fmt.Errorf("time spent is empty")
	}

	_, resp, err := c.client.Issue.AddWorklogRecordWithContext(ctx, key, &jira.WorklogRecord{TimeSpent: timeSpent})
	if err != nil {
		return fmt.Errorf("failed to add worklog to %s: %w (status: %d)", key, err, statusCode(resp))
	}

	logging.Info("worklog added", "ticket", key, "time_spent", timeSpent)
	return nil
}

// Assign sets the ticket's assignee by account id.
func (c *Client) Assign(ctx context.Context, key, accountID string) error {
	if c.client == nil {
		return ErrNotInitialized
	}

	resp, err := c.client.Issue.UpdateAssigneeWithContext(ctx, key, &jira.User{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("failed to assign %s: %w (status: %d)", key, err, statusCode(resp))
	}

	logging.Info("ticket assigned", "ticket", key, "account_id", accountID)
	return nil
}
