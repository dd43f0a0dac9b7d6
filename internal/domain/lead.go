// Package domain contains core domain types for the chatlink application.
package domain

import (
	"time"
)

// Lead is a completed campaign conversation captured for follow-up.
type Lead struct {
	ID             int64             `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Name           string            `json:"name"`
	Age            int               `json:"age"`
	Dependents     int               `json:"dependents"`
	PrimaryConcern string            `json:"primary_concern"`
	Campaign       string            `json:"campaign"`
	Answers        map[string]string `json:"answers"`
	CreatedAt      time.Time         `json:"created_at"`
}
