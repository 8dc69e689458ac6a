package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testThread(t *testing.T) []models.CommentRecord {
	t.Helper()
	parse := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02T15:04:05.000-0700", s)
		require.NoError(t, err)
		return ts
	}
	return []models.CommentRecord{
		{ID: "10", AuthorDisplayName: "Alice", Body: "newest", CreatedAt: parse("2025-11-21T09:00:00.000+0600")},
		{ID: "9", AuthorDisplayName: "Bob", Body: "older", CreatedAt: parse("2025-11-20T11:40:18.840+0600")},
	}
}

func TestPrintCommentsFilters(t *testing.T) {
	testCases := []struct {
		name     string
		filter   commentFilter
		expected string
	}{
		{name: "Latest", filter: commentFilter{latest: true}, expected: "newest\n"},
		{name: "Author", filter: commentFilter{author: "Bob"}, expected: "older\n"},
		{name: "Date", filter: commentFilter{date: "2025-11-21"}, expected: "newest\n"},
		{name: "Author without match", filter: commentFilter{author: "Carol"}, expected: "no matching comments\n"},
		{name: "Date without match", filter: commentFilter{date: "2025-01-01"}, expected: "no matching comments\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printComments(&buf, testThread(t), tc.filter))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestPrintCommentsFullThread(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printComments(&buf, testThread(t), commentFilter{}))

	output := buf.String()
	assert.Contains(t, output, "[10] Alice at 2025-11-21T09:00:00.000+0600\nnewest")
	assert.Contains(t, output, "[9] Bob at 2025-11-20T11:40:18.840+0600\nolder")
	assert.Less(t, strings.Index(output, "newest"), strings.Index(output, "older"), "thread order is kept")
}

func TestPrintCommentsEmptyAndInvalid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printComments(&buf, nil, commentFilter{latest: true}))
	assert.Equal(t, "no comments\n", buf.String())

	assert.Error(t, printComments(&buf, testThread(t), commentFilter{date: "21-11-2025"}))
}

func TestPrintTicket(t *testing.T) {
	var buf bytes.Buffer
	printTicket(&buf, &models.TicketDetails{
		Key:              "AC-7",
		Project:          "AC",
		Summary:          "Account got locked",
		Status:           "To Do",
		OriginalEstimate: "1h",
	})

	output := buf.String()
	assert.Contains(t, output, "Ticket:      AC-7")
	assert.Contains(t, output, "Project:     AC (-)")
	assert.Contains(t, output, "Assignee:    -")
	assert.Contains(t, output, "Estimate:    1h (remaining -, spent -)")
}
