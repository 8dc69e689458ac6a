// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// TicketRecord is the part of a tracker issue the acknowledgment flow needs.
// Reporter fields are empty when the tracker did not return them.
type TicketRecord struct {
	// Key is the project-prefixed identifier (e.g., "ST-42")
	Key string

	// Summary is the ticket's one-line title
	Summary string

	// ReporterName is the reporter's display name
	ReporterName string

	// ReporterEmail is the reporter's address, hidden by some tracker privacy settings
	ReporterEmail string

	// Created is the timestamp when the ticket was filed
	Created time.Time
}

// Email returns the reporter address and whether the tracker supplied one.
func (t TicketRecord) Email() (string, bool) {
	return t.ReporterEmail, t.ReporterEmail != ""
}

// EmailJob is one rendered acknowledgment ready to be sent.
type EmailJob struct {
	TicketKey string
	Recipient string
	Subject   string
	BodyHTML  string
}

// CommentRecord represents a single comment on a ticket.
type CommentRecord struct {
	// ID is the tracker-assigned identifier; larger means newer
	ID string

	// AuthorDisplayName is the display name of the comment author
	AuthorDisplayName string

	// Body is the comment text
	Body string

	// CreatedAt keeps the timezone offset the tracker encoded
	CreatedAt time.Time
}

// TicketRequest holds the fields used to create a new ticket.
type TicketRequest struct {
	Project     string
	Summary     string
	Description string
	IssueType   string
	Priority    string

	// OriginalEstimate uses tracker duration syntax (e.g., "10h")
	OriginalEstimate string

	// ReporterAccountID and AssigneeAccountID are optional account identifiers
	ReporterAccountID string
	AssigneeAccountID string
}

// TicketDetails is a read-only view of a single ticket.
type TicketDetails struct {
	Key         string
	Project     string
	ProjectName string
	IssueType   string
	Summary     string
	Description string
	Status      string
	Priority    string
	Assignee    string

	// Time tracking values in tracker duration syntax
	OriginalEstimate  string
	RemainingEstimate string
	TimeSpent         string
}
