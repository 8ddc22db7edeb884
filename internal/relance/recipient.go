package relance

import (
	"strings"

	"dossiers/internal/models"
)

// ResolveRecipient picks the address a reminder for folder is sent to.
// The responsible contact wins over the student; ok is false when the folder
// has no usable address, which callers treat as a skip rather than an error.
func ResolveRecipient(folder models.Folder) (string, bool) {
	if email := trimmed(folder.ResponsibleEmail); email != "" {
		return email, true
	}
	if email := trimmed(folder.StudentEmail); email != "" {
		return email, true
	}
	return "", false
}

// DisplayName returns "First Last", or an empty string when both are blank
func DisplayName(folder models.Folder) string {
	return strings.TrimSpace(strings.TrimSpace(folder.StudentFirstName) + " " + strings.TrimSpace(folder.StudentLastName))
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
