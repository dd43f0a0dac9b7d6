// Package nlp provides pattern-based intent and entity detection for the
// conversation flow. It keeps the matching lexicon of the original assistant
// without any model inference: phrase lists for intents, regular expressions
// for entities.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent classifies a user utterance.
type Intent string

const (
	IntentAffirmative Intent = "affirmative"
	IntentNegative    Intent = "negative"
	IntentGreeting    Intent = "greeting"
	IntentGoodbye     Intent = "goodbye"
	IntentAskPlans    Intent = "ask_about_plans"
	IntentAskPremiums Intent = "ask_about_premiums"
	IntentAskCoverage Intent = "ask_about_coverage"
	IntentAskClaims   Intent = "ask_about_claims"
	IntentUnknown     Intent = "unknown"
)

var intentPhrases = map[Intent][]string{
	IntentAffirmative: {
		"yes", "y", "ya", "yeah", "yep", "sure", "ok", "okay", "alright",
		"definitely", "absolutely", "certainly", "of course", "why not",
		"i do", "i would", "i want to", "sounds good", "sure thing",
		"yes please",
	},
	IntentNegative: {
		"no", "n", "nope", "nah", "not really", "i don't think so",
		"i don't want to", "maybe later", "not now", "i'll pass",
		"no thanks", "not interested",
	},
	IntentGreeting: {"hello", "hi", "hey", "greetings"},
	IntentGoodbye:  {"bye", "goodbye", "see you", "farewell"},
	IntentAskPlans: {
		"what plans do you have", "recommend a plan", "what's available",
		"insurance options", "what can you offer",
	},
	IntentAskPremiums: {
		"how much does it cost", "premium rates", "what's the price",
		"monthly payment", "how much to pay",
	},
	IntentAskCoverage: {
		"what's covered", "what does it include", "coverage details",
		"what are the benefits", "what protection do i get",
	},
	IntentAskClaims: {
		"how to claim", "claims process", "file a claim",
		"claim procedure", "how to get reimbursement",
	},
}

var (
	amountRe = regexp.MustCompile(`(?i)(?:RM|\$)?\s*(\d+(?:[.,]\d{2})?)\b`)
	numberRe = regexp.MustCompile(`\d+`)
)

// Classifier detects intents and extracts entities from user text.
type Classifier struct {
	phrases map[Intent][]string
}

// New creates a classifier with the built-in lexicon.
func New() *Classifier {
	return &Classifier{phrases: intentPhrases}
}

// Detect returns the best-matching intent for text, preferring longer phrase
// matches. Short affirmations/negations only count as whole tokens so "no"
// does not fire inside "normal".
func (c *Classifier) Detect(text string) Intent {
	normalized := normalize(text)
	if normalized == "" {
		return IntentUnknown
	}

	best := IntentUnknown
	bestLen := 0
	for intent, phrases := range c.phrases {
		for _, phrase := range phrases {
			if !matches(normalized, phrase) {
				continue
			}
			if len(phrase) > bestLen {
				best = intent
				bestLen = len(phrase)
			}
		}
	}
	return best
}

// IsAffirmative reports whether text reads as a yes.
func (c *Classifier) IsAffirmative(text string) bool {
	return c.Detect(text) == IntentAffirmative
}

// IsNegative reports whether text reads as a no.
func (c *Classifier) IsNegative(text string) bool {
	return c.Detect(text) == IntentNegative
}

// ExtractAmount pulls a monetary amount (optionally RM or $ prefixed) out of
// text.
func (c *Classifier) ExtractAmount(text string) (string, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractNumber pulls the first integer out of text.
func (c *Classifier) ExtractNumber(text string) (int, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.Trim(text, ".,!?")
}

func matches(normalized, phrase string) bool {
	if strings.Contains(phrase, " ") {
		return strings.Contains(normalized, phrase)
	}
	// Single tokens match whole words only.
	if normalized == phrase {
		return true
	}
	for _, tok := range strings.Fields(normalized) {
		if strings.Trim(tok, ".,!?") == phrase {
			return true
		}
	}
	return false
}
