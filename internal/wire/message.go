// Package wire defines the message payloads exchanged with the chat server
// and the normalizer that turns untrusted inbound frames into typed messages.
package wire

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind classifies a normalized inbound message.
type Kind string

const (
	KindText     Kind = "text"
	KindChoice   Kind = "choice"
	KindCampaign Kind = "campaign"
	KindError    Kind = "error"
	KindTyping   Kind = "typing"
)

// Option is one interactive choice offered to the user.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InboundMessage is a normalized server frame. It is immutable once built;
// Raw carries the original payload so renderers can reach fields the
// normalizer does not model.
type InboundMessage struct {
	Content         string
	Kind            Kind
	Options         []Option
	IsTyping        bool
	ResetTranscript bool
	NextStep        string
	Raw             []byte
}

// inboundFrame mirrors the field names the server family uses on the wire.
// Older servers populate text or message instead of content.
type inboundFrame struct {
	Content  string   `json:"content"`
	Text     string   `json:"text"`
	Message  string   `json:"message"`
	Type     string   `json:"type"`
	Buttons  []Option `json:"buttons"`
	NextStep string   `json:"next_step"`
	IsTyping bool     `json:"is_typing"`
	Reset    bool     `json:"reset"`
}

// Parse normalizes a raw frame. It never fails: payloads that are not JSON
// objects come back as a plain text message wrapping the raw bytes.
//
// Content resolution order is content, then text, then message, then the raw
// payload itself. Upstream servers disagree on which field they populate, so
// this chain is a compatibility contract and must not be reordered.
func Parse(raw []byte) InboundMessage {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return InboundMessage{
			Content: string(raw),
			Kind:    KindText,
			Raw:     raw,
		}
	}

	content := frame.Content
	if content == "" {
		content = frame.Text
	}
	if content == "" {
		content = frame.Message
	}
	if content == "" {
		content = string(raw)
	}

	msg := InboundMessage{
		Content:         content,
		Kind:            kindOf(frame),
		Options:         frame.Buttons,
		IsTyping:        frame.IsTyping,
		ResetTranscript: frame.Reset,
		NextStep:        frame.NextStep,
		Raw:             raw,
	}
	return msg
}

func kindOf(frame inboundFrame) Kind {
	if frame.IsTyping {
		return KindTyping
	}
	switch strings.ToLower(strings.TrimSpace(frame.Type)) {
	case "buttons", "choice":
		return KindChoice
	case "campaign":
		return KindCampaign
	case "error":
		return KindError
	case "typing":
		return KindTyping
	}
	// Campaign menus arrive as type "message" with a buttons array attached.
	if len(frame.Buttons) > 0 {
		return KindChoice
	}
	return KindText
}

// ChoiceSubmission is the outbound frame for an activated choice button.
type ChoiceSubmission struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
}

// EncodeChoice builds the wire bytes for a choice activation.
func EncodeChoice(value, label string, at time.Time) ([]byte, error) {
	return json.Marshal(ChoiceSubmission{
		Type:      "choice",
		Value:     value,
		Label:     label,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// TextSubmission is the outbound frame for free-form user text.
type TextSubmission struct {
	Text string `json:"text"`
}

// EncodeText builds the wire bytes for a user text message.
func EncodeText(text string) ([]byte, error) {
	return json.Marshal(TextSubmission{Text: text})
}
