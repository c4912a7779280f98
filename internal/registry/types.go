// Package registry manages the users.cfg access-list file for the bot.
package registry

import "strings"

// Section names one of the two access lists in the registry file.
type Section string

const (
	// SectionAdmins holds IDs with administrative access.
	SectionAdmins Section = "ADMINS"

	// SectionUsers holds IDs with regular access.
	SectionUsers Section = "USERS"
)

// Header returns the literal header line for this section.
func (s Section) Header() string {
	return "[" + string(s) + "]"
}

// Entry is one access-list record: a numeric Telegram ID with an
// optional display name.
type Entry struct {
	// ID is the numeric identifier, unique across the whole file.
	ID string

	// Name is the optional display name from the trailing comment.
	Name string
}

// String renders the entry as it appears on a registry line.
func (e Entry) String() string {
	if e.Name == "" {
		return e.ID
	}
	return e.ID + "  # " + e.Name
}

// parseEntry interprets a raw registry line. It returns false for
// blank lines, comments, and anything whose ID field is not all digits.
func parseEntry(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
		return Entry{}, false
	}

	id := trimmed
	name := ""
	if i := strings.Index(trimmed, "#"); i >= 0 {
		id = strings.TrimSpace(trimmed[:i])
		name = strings.TrimSpace(trimmed[i+1:])
	}

	if !isDigits(id) {
		return Entry{}, false
	}

	return Entry{ID: id, Name: name}, true
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
