package google

import (
	"regexp"
	"strings"

	"github.com/harrisonrobin/aide/pkg/model"
)

// Google Tasks has no category field; the category rides on the last line
// of the notes.
const categoryPrefix = "category: "

var categoryLine = regexp.MustCompile(`(?:^|\n\n)category: ([^\n]+)$`)

// encodeNotes always writes the category line, so a description that itself
// ends in one survives a round trip.
func encodeNotes(description, category string) string {
	if category == "" {
		category = model.DefaultCategory
	}
	if description == "" {
		return categoryPrefix + category
	}
	return description + "\n\n" + categoryPrefix + category
}

func decodeNotes(notes string) (description, category string) {
	m := categoryLine.FindStringSubmatchIndex(notes)
	if m == nil {
		return notes, model.DefaultCategory
	}
	return notes[:m[0]], strings.TrimSpace(notes[m[2]:m[3]])
}
