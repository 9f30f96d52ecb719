package services

import (
	"regexp"
	"strings"
	"unicode"
)

const maxTitleLength = 100

var (
	quotedTitlePattern = regexp.MustCompile(`"([^"]+)"`)

	// Leading request phrasing, stripped in order; the first hit wins.
	leadingPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(create|make|open|add|new)\s+(a\s+)?ticket\s+(for|about|regarding|concerning)\s+`),
		regexp.MustCompile(`(?i)^(i\s+)?(need|want|would like|request)\s+(a\s+)?ticket\s+(for|about|regarding|concerning)\s+`),
		regexp.MustCompile(`(?i)^(can\s+you|please|could\s+you)\s+(create|make|open|add)\s+(a\s+)?ticket\s+(for|about|regarding|concerning)\s+`),
		regexp.MustCompile(`(?i)^(i\s+)?(have|am\s+experiencing|am\s+facing)\s+(an?\s+)?(issue|problem|bug|error)\s+(with|in|on|about)\s+`),
		regexp.MustCompile(`(?i)^(there\s+is|there's)\s+(an?\s+)?(issue|problem|bug|error)\s+(with|in|on|about)\s+`),
		regexp.MustCompile(`(?i)^(help\s+with|support\s+for|assistance\s+with)\s+`),
	}

	afterConnectorPattern = regexp.MustCompile(`(?i)(?:for|about|regarding|concerning|with|on|in)\s+(.+)`)
	firstSentencePattern  = regexp.MustCompile(`^([^.!?]+)`)
	trailingWordPattern   = regexp.MustCompile(`\s+\S+$`)
)

// ExtractTicketTitle derives a ticket title from a raw chat message. Quoted
// substrings win outright; otherwise leading request phrasing is stripped,
// the first sentence is kept, and the result is capped at 100 characters
// without cutting a word in half. Anything shorter than 3 characters falls
// back to the raw message.
func ExtractTicketTitle(message string) string {
	if m := quotedTitlePattern.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}

	cleaned := strings.TrimSpace(message)

	for _, pattern := range leadingPhrasePatterns {
		if loc := pattern.FindStringIndex(cleaned); loc != nil {
			cleaned = strings.TrimSpace(cleaned[loc[1]:])
			break
		}
	}

	// Nothing stripped: look for the issue after a common connector.
	if cleaned == strings.TrimSpace(message) {
		if m := afterConnectorPattern.FindStringSubmatch(cleaned); m != nil {
			cleaned = strings.TrimSpace(m[1])
		}
	}

	cleaned = capitalizeFirst(cleaned)

	if m := firstSentencePattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}

	if len(cleaned) > maxTitleLength {
		cleaned = strings.TrimSpace(cleaned[:maxTitleLength])
		cleaned = trailingWordPattern.ReplaceAllString(cleaned, "")
	}

	if len(cleaned) < 3 {
		fallback := strings.TrimSpace(message)
		// Cap on rune boundaries; a byte slice could cut a multibyte
		// character in half.
		if runes := []rune(fallback); len(runes) > maxTitleLength {
			fallback = string(runes[:maxTitleLength])
		}
		return fallback
	}

	return cleaned
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
