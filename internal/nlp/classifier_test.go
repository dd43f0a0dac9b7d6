package nlp

import "testing"

func TestDetect_Affirmative(t *testing.T) {
	c := New()
	for _, text := range []string{"yes", "Yes please", "yeah", "sounds good", "OK", "of course!"} {
		if !c.IsAffirmative(text) {
			t.Errorf("Expected %q to read as affirmative", text)
		}
	}
}

func TestDetect_Negative(t *testing.T) {
	c := New()
	for _, text := range []string{"no", "Nope", "not interested", "maybe later", "no thanks"} {
		if !c.IsNegative(text) {
			t.Errorf("Expected %q to read as negative", text)
		}
	}
}

func TestDetect_ShortTokensMatchWholeWordsOnly(t *testing.T) {
	c := New()
	if c.IsNegative("normal coverage please") {
		t.Error("\"no\" must not fire inside \"normal\"")
	}
	if c.IsAffirmative("yesterday") {
		t.Error("\"yes\" must not fire inside \"yesterday\"")
	}
}

func TestDetect_Intents(t *testing.T) {
	c := New()
	tests := []struct {
		text string
		want Intent
	}{
		{"hello", IntentGreeting},
		{"bye for now", IntentGoodbye},
		{"what plans do you have for me", IntentAskPlans},
		{"how much does it cost monthly", IntentAskPremiums},
		{"what's covered under this", IntentAskCoverage},
		{"how to claim after an accident", IntentAskClaims},
		{"xyzzy", IntentUnknown},
	}
	for _, tt := range tests {
		if got := c.Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractAmount(t *testing.T) {
	c := New()
	tests := []struct {
		text   string
		amount string
		ok     bool
	}{
		{"RM 250", "250", true},
		{"$99.50 per month", "99.50", true},
		{"about 300 monthly", "300", true},
		{"no idea", "", false},
	}
	for _, tt := range tests {
		got, ok := c.ExtractAmount(tt.text)
		if ok != tt.ok || got != tt.amount {
			t.Errorf("ExtractAmount(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.amount, tt.ok)
		}
	}
}

func TestExtractNumber(t *testing.T) {
	c := New()
	if n, ok := c.ExtractNumber("I have 3 kids"); !ok || n != 3 {
		t.Errorf("ExtractNumber = (%d, %v), want (3, true)", n, ok)
	}
	if _, ok := c.ExtractNumber("none"); ok {
		t.Error("Expected no number in \"none\"")
	}
}
