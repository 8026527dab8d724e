package detect

import (
	"context"
	"strings"
)

// Document is the queryable surface of a rendered page.
type Document interface {
	// Text returns the visible text content of the document.
	Text(ctx context.Context) (string, error)
	// ButtonLabels returns the visible labels of button-like elements,
	// capped at limit.
	ButtonLabels(ctx context.Context, limit int) ([]string, error)
}

// Rule is a positive-evidence predicate over a rendered document.
// Availability is only ever derived from evidence that purchase is
// possible, never from the absence of placeholder elements.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, doc Document) (bool, error)
}

// DefaultRules returns the detection rules in evaluation order: the
// purchase-phrase text match first, then the button-label check.
// buttonLimit caps how many buttons the latter inspects.
func DefaultRules(buttonLimit int) []Rule {
	return []Rule{
		PhraseRule{
			Exact: BuyPhrases,
			Upper: []string{"BUY TICKETS", "GET TICKETS"},
		},
		ButtonRule{
			Actions: []string{"BUY", "GET"},
			Subject: "TICKET",
			Limit:   buttonLimit,
		},
	}
}

// BuyPhrases are the literal purchase affordances searched for in the
// page text, in the casings the shop has used.
var BuyPhrases = []string{"BUY TICKETS", "Buy Tickets", "Get Tickets"}

// PhraseRule matches literal phrases in the document text: the exact
// forms first, then an uppercase comparison as fallback.
type PhraseRule struct {
	Exact []string // matched case-sensitively
	Upper []string // matched against the uppercased text
}

// Name implements Rule.
func (r PhraseRule) Name() string { return "phrase" }

// Evaluate implements Rule.
func (r PhraseRule) Evaluate(ctx context.Context, doc Document) (bool, error) {
	text, err := doc.Text(ctx)
	if err != nil {
		return false, err
	}

	for _, p := range r.Exact {
		if strings.Contains(text, p) {
			return true, nil
		}
	}

	upper := strings.ToUpper(text)
	for _, p := range r.Upper {
		if strings.Contains(upper, p) {
			return true, nil
		}
	}

	return false, nil
}

// ButtonRule matches a button whose label contains one of the action
// tokens together with the subject token, in any case combination.
// Inspection stops after Limit labels.
type ButtonRule struct {
	Actions []string
	Subject string
	Limit   int
}

// Name implements Rule.
func (r ButtonRule) Name() string { return "button" }

// Evaluate implements Rule.
func (r ButtonRule) Evaluate(ctx context.Context, doc Document) (bool, error) {
	labels, err := doc.ButtonLabels(ctx, r.Limit)
	if err != nil {
		return false, err
	}

	for _, label := range labels {
		upper := strings.ToUpper(label)
		if !strings.Contains(upper, r.Subject) {
			continue
		}
		for _, action := range r.Actions {
			if strings.Contains(upper, action) {
				return true, nil
			}
		}
	}

	return false, nil
}
