package service

import (
	"regexp"
	"strings"
)

var caseIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// IsValidCaseID reports whether id contains only lowercase letters, digits and underscores
func IsValidCaseID(id string) bool {
	return caseIDPattern.MatchString(id)
}

// ParseList splits text on sep (comma when empty), trims entries and drops empty ones
func ParseList(text, sep string) []string {
	if sep == "" {
		sep = ","
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
