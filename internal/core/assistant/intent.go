package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the classified purpose of a customer message.
type Intent string

const (
	IntentTicketLookup  Intent = "ticket_lookup"
	IntentCreateTicket  Intent = "create_ticket"
	IntentAccountInfo   Intent = "account_info"
	IntentSearchKB      Intent = "search_knowledge_base"
	IntentGeneral       Intent = "general_inquiry"
	IntentError         Intent = "error"
)

// Entities extracted from a message. TicketID is 0 when absent.
type Entities struct {
	TicketID int64  `json:"ticket_id,omitempty"`
	Priority string `json:"priority,omitempty"`
}

var (
	ticketRefPattern = regexp.MustCompile(`(?i)ticket\s*#?\s*(\d+)|#(\d+)`)
	createPattern    = regexp.MustCompile(`(?i)(create|new|open|submit).*ticket`)
	accountPattern   = regexp.MustCompile(`(?i)account|profile|my\s+info|account\s+status`)
	kbPattern        = regexp.MustCompile(`(?i)help|support|article|knowledge|faq`)

	highPriorityPattern = regexp.MustCompile(`(?i)\b(urgent|high|critical|emergency)\b`)
	lowPriorityPattern  = regexp.MustCompile(`(?i)\b(low|minor)\b`)
)

// intentRules are evaluated in order; the first predicate that matches wins.
// New intents are additions here, not new control flow.
var intentRules = []struct {
	match  func(string) bool
	intent Intent
}{
	{ticketRefPattern.MatchString, IntentTicketLookup},
	{createPattern.MatchString, IntentCreateTicket},
	{accountPattern.MatchString, IntentAccountInfo},
	{kbPattern.MatchString, IntentSearchKB},
}

// DetectIntent classifies normalized message text. No scoring; fixed
// priority order, first match wins.
func DetectIntent(text string) Intent {
	text = strings.ToLower(text)
	for _, rule := range intentRules {
		if rule.match(text) {
			return rule.intent
		}
	}
	return IntentGeneral
}

// ExtractEntities pulls the ticket reference and priority out of the text.
// Priority defaults to medium.
func ExtractEntities(text string) Entities {
	text = strings.ToLower(text)
	entities := Entities{Priority: "medium"}

	if m := ticketRefPattern.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			entities.TicketID = id
		}
	}

	if highPriorityPattern.MatchString(text) {
		entities.Priority = "high"
	} else if lowPriorityPattern.MatchString(text) {
		entities.Priority = "low"
	}

	return entities
}
