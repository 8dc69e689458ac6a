// Package comments filters a ticket's comment thread.
package comments

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielolaszy/ackmail/pkg/models"
)

// DateLayout is the calendar date format accepted by ByDate.
const DateLayout = "2006-01-02"

// Latest returns the comment with the highest id. Ids are compared numerically,
// so "10" is newer than "9"; ids that are not plain digits fall back to string order.
// The thread order from the tracker is not trusted. Ties keep the first comment seen.
func Latest(cs []models.CommentRecord) (models.CommentRecord, bool) {
	if len(cs) == 0 {
		return models.CommentRecord{}, false
	}

	latest := cs[0]
	for _, c := range cs[1:] {
		if compareIDs(c.ID, latest.ID) > 0 {
			latest = c
		}
	}
	return latest, true
}

// compareIDs orders two comment ids, returning -1, 0 or 1.
func compareIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ByAuthor returns the bodies of comments written by author, in thread order.
// The display name must match exactly.
func ByAuthor(cs []models.CommentRecord, author string) []string {
	var bodies []string
	for _, c := range cs {
		if c.AuthorDisplayName == author {
			bodies = append(bodies, c.Body)
		}
	}
	return bodies
}

// ByDate returns the bodies of comments created on day (YYYY-MM-DD). Each comment's
// date is taken in the offset it was written with, not in the local zone.
func ByDate(cs []models.CommentRecord, day string) ([]string, error) {
	target, err := time.Parse(DateLayout, day)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", day, err)
	}
	want := target.Format(DateLayout)

	var bodies []string
	for _, c := range cs {
		if c.CreatedAt.IsZero() {
			continue
		}
		if c.CreatedAt.Format(DateLayout) == want {
			bodies = append(bodies, c.Body)
		}
	}
	return bodies, nil
}
