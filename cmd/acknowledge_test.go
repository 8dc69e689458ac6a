package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/danielolaszy/ackmail/internal/config"
	"github.com/danielolaszy/ackmail/internal/jira"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/internal/mail"
	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

// MockSearcher implements ticketSearcher for testing
type MockSearcher struct {
	SearchTicketsFunc func(context.Context, jira.Query) ([]models.TicketRecord, error)
	calls             int
}

func (m *MockSearcher) SearchTickets(ctx context.Context, q jira.Query) ([]models.TicketRecord, error) {
	m.calls++
	if m.SearchTicketsFunc != nil {
		return m.SearchTicketsFunc(ctx, q)
	}
	return nil, errors.New("SearchTickets not implemented")
}

// MockNotifier implements ticketNotifier for testing
type MockNotifier struct {
	NotifyFunc func([]models.TicketRecord) mail.Report
	conn       *recordingConn
	connects   int
	calls      int
}

func (m *MockNotifier) Connect() (gomail.SendCloser, error) {
	m.connects++
	if m.conn == nil {
		m.conn = &recordingConn{}
	}
	return m.conn, nil
}

func (m *MockNotifier) Notify(_ gomail.Sender, tickets []models.TicketRecord) mail.Report {
	m.calls++
	if m.NotifyFunc != nil {
		return m.NotifyFunc(tickets)
	}
	return mail.Report{}
}

// recordingConn is an SMTP connection that accepts everything.
type recordingConn struct {
	recipients [][]string
	closes     int
}

func (c *recordingConn) Send(from string, to []string, msg io.WriterTo) error {
	c.recipients = append(c.recipients, to)
	_, err := msg.WriteTo(io.Discard)
	return err
}

func (c *recordingConn) Close() error {
	c.closes++
	return nil
}

type recordingDialer struct {
	conn    *recordingConn
	dialErr error
	dials   int
}

func (d *recordingDialer) Dial() (gomail.SendCloser, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetupLogger(&buf, logging.LevelInfo)
	t.Cleanup(func() { logging.SetupLogger(os.Stdout, logging.LevelInfo) })
	return &buf
}

var testQuery = jira.Query{Project: "ST", Window: 30 * time.Minute}

func TestAcknowledgeNoTickets(t *testing.T) {
	logs := captureLogs(t)
	searcher := &MockSearcher{
		SearchTicketsFunc: func(context.Context, jira.Query) ([]models.TicketRecord, error) {
			return []models.TicketRecord{}, nil
		},
	}
	conn := &recordingConn{}
	dialer := &recordingDialer{conn: conn}
	notifier := &mail.Notifier{Dialer: dialer, From: "support@example.com"}

	report, err := acknowledge(context.Background(), searcher, notifier, testQuery)
	require.NoError(t, err)

	assert.Empty(t, report.Sent)
	assert.Empty(t, conn.recipients)
	assert.Equal(t, 1, dialer.dials, "connection is opened even when nothing is found")
	assert.Equal(t, 1, conn.closes)
	assert.Contains(t, logs.String(), "no issues found")
}

func TestAcknowledgeDialFailureWithNoTicketsIsFatal(t *testing.T) {
	searcher := &MockSearcher{
		SearchTicketsFunc: func(context.Context, jira.Query) ([]models.TicketRecord, error) {
			return []models.TicketRecord{}, nil
		},
	}
	dialer := &recordingDialer{dialErr: errors.New("535 authentication failed")}
	notifier := &mail.Notifier{Dialer: dialer, From: "support@example.com"}

	_, err := acknowledge(context.Background(), searcher, notifier, testQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535")
	assert.Equal(t, 1, dialer.dials)
	assert.Equal(t, 0, searcher.calls, "search is not attempted without a mail connection")
}

func TestAcknowledgeDialFailureWithMissingEmailIsFatal(t *testing.T) {
	searcher := &MockSearcher{
		SearchTicketsFunc: func(context.Context, jira.Query) ([]models.TicketRecord, error) {
			return []models.TicketRecord{{Key: "ST-1", ReporterName: "Bob"}}, nil
		},
	}
	dialer := &recordingDialer{dialErr: errors.New("535 authentication failed")}
	notifier := &mail.Notifier{Dialer: dialer, From: "support@example.com"}

	_, err := acknowledge(context.Background(), searcher, notifier, testQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to mail relay")
}

func TestAcknowledgeSearchFailureIsFatal(t *testing.T) {
	searcher := &MockSearcher{
		SearchTicketsFunc: func(context.Context, jira.Query) ([]models.TicketRecord, error) {
			return nil, errors.New("401 unauthorized")
		},
	}
	notifier := &MockNotifier{}

	_, err := acknowledge(context.Background(), searcher, notifier, testQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 0, notifier.calls)
	assert.Equal(t, 1, notifier.conn.closes, "connection closed on the error path")
}

func TestAcknowledgePassesQueryAndOrder(t *testing.T) {
	tickets := []models.TicketRecord{
		{Key: "ST-2", ReporterEmail: "b@example.com"},
		{Key: "ST-1", ReporterEmail: "a@example.com"},
	}
	searcher := &MockSearcher{
		SearchTicketsFunc: func(_ context.Context, q jira.Query) ([]models.TicketRecord, error) {
			assert.Equal(t, testQuery, q)
			return tickets, nil
		},
	}
	notifier := &MockNotifier{
		NotifyFunc: func(got []models.TicketRecord) mail.Report {
			assert.Equal(t, tickets, got, "tickets reach the notifier in search order")
			return mail.Report{Sent: []string{"ST-2", "ST-1"}}
		},
	}

	report, err := acknowledge(context.Background(), searcher, notifier, testQuery)
	require.NoError(t, err)
	assert.Equal(t, []string{"ST-2", "ST-1"}, report.Sent)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 1, notifier.connects)
	assert.Equal(t, 1, notifier.conn.closes)
}

// Two tickets, one without a reporter email: one mail, one skip, one close.
func TestAcknowledgeOneValidOneMissingEmail(t *testing.T) {
	logs := captureLogs(t)
	searcher := &MockSearcher{
		SearchTicketsFunc: func(context.Context, jira.Query) ([]models.TicketRecord, error) {
			return []models.TicketRecord{
				{Key: "ST-42", ReporterName: "Alice", ReporterEmail: "alice@example.com"},
				{Key: "ST-43", ReporterName: "Bob"},
			}, nil
		},
	}
	conn := &recordingConn{}
	dialer := &recordingDialer{conn: conn}
	notifier := &mail.Notifier{Dialer: dialer, From: "support@example.com"}

	report, err := acknowledge(context.Background(), searcher, notifier, testQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{"ST-42"}, report.Sent)
	assert.Equal(t, []string{"ST-43"}, report.Skipped)
	assert.Equal(t, [][]string{{"alice@example.com"}}, conn.recipients)
	assert.Equal(t, 1, dialer.dials)
	assert.Equal(t, 1, conn.closes)

	output := logs.String()
	assert.Equal(t, 1, strings.Count(output, "ticket=ST-43"), "skip reported exactly once")
	assert.Contains(t, output, mail.EmailNotFound)
}

func newQueryCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().StringP("project", "p", "", "")
	cmd.Flags().IntP("window", "w", 0, "")
	cmd.Flags().Int("max-results", 0, "")
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestQueryFromFlags(t *testing.T) {
	cfg := &config.Config{Ack: config.AckConfig{Project: "CFG", WindowMinutes: 30, MaxResults: 100}}

	query, err := queryFromFlags(newQueryCommand(t, nil), cfg)
	require.NoError(t, err)
	assert.Equal(t, jira.Query{Project: "CFG", Window: 30 * time.Minute, MaxResults: 100}, query)

	query, err = queryFromFlags(newQueryCommand(t, map[string]string{"project": "ST", "window": "5"}), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ST", query.Project)
	assert.Equal(t, 5*time.Minute, query.Window)

	_, err = queryFromFlags(newQueryCommand(t, nil), &config.Config{Ack: config.AckConfig{WindowMinutes: 30}})
	assert.Error(t, err, "project is required")

	_, err = queryFromFlags(newQueryCommand(t, map[string]string{"window": "-5"}), cfg)
	assert.Error(t, err)
}
