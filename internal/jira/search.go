package jira

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/pkg/models"
)

// searchFields limits the search response to what ToTicketRecord reads.
var searchFields = []string{"summary", "reporter", "created"}

// Query selects unassigned, unresolved tickets of one project created within Window.
type Query struct {
	Project    string
	Window     time.Duration
	MaxResults int
}

// WindowMinutes returns the lookback window in whole minutes, rounded up, never below one.
func (q Query) WindowMinutes() int {
	minutes := int(math.Ceil(q.Window.Minutes()))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// JQL renders the query in JIRA's query language.
func (q Query) JQL() string {
	return fmt.Sprintf(`created >= -%dm AND project = "%s" AND assignee = EMPTY AND resolution = Unresolved`,
		q.WindowMinutes(), escapeJQL(q.Project))
}

func escapeJQL(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// SearchTickets issues a single search request and converts every returned issue.
// An empty result is not an error.
func (c *Client) SearchTickets(ctx context.Context, q Query) ([]models.TicketRecord, error) {
	if c.client == nil {
		return nil, ErrNotInitialized
	}
	if q.Project == "" {
		return nil, fmt.Errorf("project key is required")
	}

	jql := q.JQL()
	logging.Debug("searching jira", "jql", jql)

	issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
		MaxResults: q.MaxResults,
		Fields:     searchFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search JIRA issues: %w (status: %d)", err, statusCode(resp))
	}

	records := make([]models.TicketRecord, 0, len(issues))
	for _, issue := range issues {
		records = append(records, ToTicketRecord(issue))
	}

	logging.Debug("jira search complete",
		"project", q.Project,
		"count", len(records))

	return records, nil
}

// ToTicketRecord converts a raw issue. Missing fields or a missing reporter leave
// the corresponding record fields empty instead of failing.
func ToTicketRecord(issue jira.Issue) models.TicketRecord {
	record := models.TicketRecord{Key: issue.Key}

	fields := issue.Fields
	if fields == nil {
		logging.Warn("issue has no fields", "ticket", issue.Key)
		return record
	}

	record.Summary = fields.Summary
	record.Created = time.Time(fields.Created)

	if fields.Reporter == nil {
		logging.Warn("issue has no reporter", "ticket", issue.Key)
		return record
	}
	record.ReporterName = strings.TrimSpace(fields.Reporter.DisplayName)
	record.ReporterEmail = strings.TrimSpace(fields.Reporter.EmailAddress)

	return record
}
