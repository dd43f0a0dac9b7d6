package wire

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse_ContentPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		content string
	}{
		{"content only", `{"text":"hi"}`, "hi"},
		{"content over message", `{"message":"hi","content":"hey"}`, "hey"},
		{"content over text and message", `{"content":"a","text":"b","message":"c"}`, "a"},
		{"text over message", `{"text":"b","message":"c"}`, "b"},
		{"message alone", `{"message":"c"}`, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Parse([]byte(tt.raw))
			if msg.Content != tt.content {
				t.Errorf("Parse(%s) content = %q, want %q", tt.raw, msg.Content, tt.content)
			}
		})
	}
}

func TestParse_RawFallback(t *testing.T) {
	raw := []byte("not json at all")
	msg := Parse(raw)

	if msg.Kind != KindText {
		t.Errorf("Expected kind %q, got %q", KindText, msg.Kind)
	}
	if msg.Content != "not json at all" {
		t.Errorf("Expected raw payload as content, got %q", msg.Content)
	}
	if string(msg.Raw) != string(raw) {
		t.Errorf("Expected raw passthrough to be preserved")
	}
}

func TestParse_EmptyFieldsFallToRaw(t *testing.T) {
	raw := `{"type":"message"}`
	msg := Parse([]byte(raw))
	if msg.Content != raw {
		t.Errorf("Expected raw payload as last-resort content, got %q", msg.Content)
	}
}

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{`{"type":"buttons","content":"pick","buttons":[{"label":"A","value":"1"}]}`, KindChoice},
		{`{"type":"choice","content":"pick"}`, KindChoice},
		{`{"type":"message","content":"pick","buttons":[{"label":"A","value":"1"}]}`, KindChoice},
		{`{"type":"campaign","content":"promo"}`, KindCampaign},
		{`{"type":"error","content":"boom"}`, KindError},
		{`{"type":"typing"}`, KindTyping},
		{`{"is_typing":true,"content":"x"}`, KindTyping},
		{`{"type":"message","content":"hi"}`, KindText},
		{`{"content":"hi"}`, KindText},
		{`{"type":"question","content":"name?"}`, KindText},
	}

	for _, tt := range tests {
		msg := Parse([]byte(tt.raw))
		if msg.Kind != tt.kind {
			t.Errorf("Parse(%s) kind = %q, want %q", tt.raw, msg.Kind, tt.kind)
		}
	}
}

func TestParse_OptionsAndFlags(t *testing.T) {
	raw := `{"type":"error","reset":true,"content":"X","buttons":[{"label":"Retry","value":"r"},{"label":"Quit","value":"q"}],"next_step":"menu"}`
	msg := Parse([]byte(raw))

	if !msg.ResetTranscript {
		t.Error("Expected ResetTranscript to be set")
	}
	if msg.NextStep != "menu" {
		t.Errorf("Expected next_step passthrough, got %q", msg.NextStep)
	}
	if len(msg.Options) != 2 || msg.Options[0].Label != "Retry" || msg.Options[1].Value != "q" {
		t.Errorf("Expected ordered options, got %+v", msg.Options)
	}
}

func TestEncodeChoice(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	data, err := EncodeChoice("2", "Tabung Warisan", at)
	if err != nil {
		t.Fatalf("EncodeChoice failed: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Encoded choice is not valid JSON: %v", err)
	}
	if decoded["type"] != "choice" || decoded["value"] != "2" || decoded["label"] != "Tabung Warisan" {
		t.Errorf("Unexpected choice frame: %v", decoded)
	}
	if decoded["timestamp"] != "2025-03-01T10:30:00Z" {
		t.Errorf("Unexpected timestamp: %q", decoded["timestamp"])
	}
}

func TestEncodeText(t *testing.T) {
	data, err := EncodeText("hello")
	if err != nil {
		t.Fatalf("EncodeText failed: %v", err)
	}
	if string(data) != `{"text":"hello"}` {
		t.Errorf("Unexpected text frame: %s", data)
	}
}
