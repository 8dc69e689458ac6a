package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

// Placeholders rendered when the tracker did not supply reporter details.
const (
	UnknownReporter = "Unknown User"
	EmailNotFound   = "Email Not Found"
)

// AcknowledgmentParams fills the two placeholders of the acknowledgment body.
type AcknowledgmentParams struct {
	ReporterName string
	TicketKey    string
}

var (
	acknowledgmentTemplate = template.New("acknowledgment")

	//go:embed templates/acknowledgment.html
	acknowledgmentTemplateRaw string
)

func init() {
	if _, err := acknowledgmentTemplate.Parse(acknowledgmentTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

// RenderAcknowledgment renders the HTML body. Values are HTML-escaped.
func RenderAcknowledgment(p AcknowledgmentParams) (string, error) {
	if p.ReporterName == "" {
		p.ReporterName = UnknownReporter
	}
	return render(acknowledgmentTemplate, p)
}

// Subject returns the acknowledgment subject line for a ticket.
func Subject(ticketKey string) string {
	return fmt.Sprintf("Acknowledgment: Your JIRA Ticket %s has been received", ticketKey)
}
