package domain

import (
	"strconv"
	"time"
)

// Conversation steps walked by the flow engine.
const (
	StepGetName        = "get_name"
	StepGetDOB         = "get_dob"
	StepGetDependents  = "get_dependents"
	StepGetConcern     = "get_concern"
	StepChooseCampaign = "choose_campaign"
	StepCampaign       = "campaign"
)

// ConversationState tracks one visitor's progress through the chat flow.
type ConversationState struct {
	ID             string
	Step           string
	UserData       map[string]string
	ActiveCampaign string
	CampaignStep   int
	LastSeenAt     time.Time
}

// NewConversationState starts a conversation at the first step.
func NewConversationState(id string) *ConversationState {
	return &ConversationState{
		ID:         id,
		Step:       StepGetName,
		UserData:   make(map[string]string),
		LastSeenAt: time.Now(),
	}
}

// Touch records activity for idle expiry.
func (s *ConversationState) Touch() {
	s.LastSeenAt = time.Now()
}

// IdleSince reports whether the conversation has been inactive beyond ttl.
func (s *ConversationState) IdleSince(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastSeenAt) > ttl
}

// IntData returns a numeric user data field, or 0 when absent or malformed.
func (s *ConversationState) IntData(key string) int {
	n, err := strconv.Atoi(s.UserData[key])
	if err != nil {
		return 0
	}
	return n
}
