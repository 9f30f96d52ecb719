package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"what's the status of ticket #57", IntentTicketLookup},
		{"show me ticket 12", IntentTicketLookup},
		{"any update on #340?", IntentTicketLookup},
		{"create a ticket for the login button not working", IntentCreateTicket},
		{"I want to open a new ticket", IntentCreateTicket},
		{"please submit a ticket about the outage", IntentCreateTicket},
		{"what's my account status", IntentAccountInfo},
		{"show my profile", IntentAccountInfo},
		{"where can I find help articles", IntentSearchKB},
		{"do you have an FAQ", IntentSearchKB},
		{"good morning!", IntentGeneral},
		{"thanks, that solved it", IntentGeneral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectIntent(tc.text), "text: %q", tc.text)
	}
}

func TestDetectIntent_TicketReferenceWinsOverCreateVerbs(t *testing.T) {
	// Fixed priority order: a ticket reference outranks creation phrasing.
	assert.Equal(t, IntentTicketLookup, DetectIntent("I created ticket #9 yesterday, any news?"))
}

func TestExtractEntities_TicketID(t *testing.T) {
	assert.EqualValues(t, 57, ExtractEntities("status of ticket #57").TicketID)
	assert.EqualValues(t, 12, ExtractEntities("ticket 12 please").TicketID)
	assert.EqualValues(t, 340, ExtractEntities("#340").TicketID)
	assert.Zero(t, ExtractEntities("no reference here").TicketID)
}

func TestExtractEntities_Priority(t *testing.T) {
	assert.Equal(t, "high", ExtractEntities("this is urgent!").Priority)
	assert.Equal(t, "high", ExtractEntities("critical outage").Priority)
	assert.Equal(t, "low", ExtractEntities("minor cosmetic issue").Priority)
	assert.Equal(t, "medium", ExtractEntities("the page is broken").Priority)
}
