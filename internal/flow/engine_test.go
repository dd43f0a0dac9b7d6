package flow

import (
	"strings"
	"testing"

	"github.com/wiralabs/chatlink/internal/domain"
)

func newTestState() *domain.ConversationState {
	return domain.NewConversationState("conv-test")
}

// walkToMenu drives a conversation through the profile steps.
func walkToMenu(t *testing.T, e *Engine, state *domain.ConversationState) []Reply {
	t.Helper()
	e.Handle(state, "Aminah")
	e.Handle(state, "34")
	e.Handle(state, "2")
	replies, lead := e.Handle(state, "education")
	if lead != nil {
		t.Fatal("No lead expected before a campaign completes")
	}
	return replies
}

func TestEngine_ProfileStepProgression(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()

	replies, _ := e.Handle(state, "Aminah")
	if state.Step != domain.StepGetDOB {
		t.Fatalf("Expected step %s, got %s", domain.StepGetDOB, state.Step)
	}
	if state.UserData["name"] != "Aminah" {
		t.Errorf("Name not captured: %v", state.UserData)
	}
	if len(replies) != 2 || !strings.Contains(replies[0].Content, "Aminah") {
		t.Errorf("Expected personalized acknowledgement, got %+v", replies)
	}

	e.Handle(state, "15/05/1990")
	if state.Step != domain.StepGetDependents {
		t.Fatalf("Expected step %s, got %s", domain.StepGetDependents, state.Step)
	}
	if state.UserData["age"] == "" || state.UserData["age"] == "0" {
		t.Errorf("Age not derived from date of birth: %q", state.UserData["age"])
	}

	e.Handle(state, "2 kids")
	if state.Step != domain.StepGetConcern || state.UserData["dependents"] != "2" {
		t.Errorf("Dependents not captured: step=%s data=%v", state.Step, state.UserData)
	}
}

func TestEngine_InvalidDOBReasks(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()
	e.Handle(state, "Aminah")

	replies, _ := e.Handle(state, "sometime in spring")
	if state.Step != domain.StepGetDOB {
		t.Errorf("Step must not advance on unreadable input, got %s", state.Step)
	}
	if len(replies) != 1 || replies[0].Kind != "question" {
		t.Errorf("Expected a re-ask question, got %+v", replies)
	}
}

func TestEngine_MenuRanksConcernFirst(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()

	replies := walkToMenu(t, e, state)
	if len(replies) != 1 || replies[0].Kind != "buttons" {
		t.Fatalf("Expected a buttons menu, got %+v", replies)
	}
	if len(replies[0].Buttons) != 5 {
		t.Fatalf("Expected all 5 campaigns in the menu, got %d", len(replies[0].Buttons))
	}

	displayed := strings.Split(state.UserData["displayed_campaigns"], ",")
	// Education concern with dependents boosts the education plan.
	if displayed[0] != "masa_depan_anak_kita" {
		t.Errorf("Expected education plan first for education concern, got %v", displayed)
	}
}

func TestEngine_CampaignCompletionProducesLead(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()
	walkToMenu(t, e, state)

	// Select the first plan in the displayed menu.
	replies, lead := e.Handle(state, "1")
	if lead != nil {
		t.Fatal("No lead expected on campaign selection")
	}
	if replies[0].Kind != "campaign" {
		t.Errorf("Expected a campaign card first, got %+v", replies[0])
	}
	if state.Step != domain.StepCampaign || state.ActiveCampaign != "masa_depan_anak_kita" {
		t.Fatalf("Campaign not activated: step=%s campaign=%s", state.Step, state.ActiveCampaign)
	}

	// children_count, monthly_saving, contact, confirm.
	e.Handle(state, "2")
	e.Handle(state, "RM 300")
	e.Handle(state, "aminah@example.com")
	replies, lead = e.Handle(state, "yes")

	if lead == nil {
		t.Fatal("Expected a lead after the confirm step")
	}
	if lead.Campaign != "masa_depan_anak_kita" || lead.Name != "Aminah" {
		t.Errorf("Lead fields wrong: %+v", lead)
	}
	if lead.Answers["monthly_saving"] != "300" {
		t.Errorf("Expected extracted amount 300, got %q", lead.Answers["monthly_saving"])
	}
	if lead.Answers["contact"] != "aminah@example.com" {
		t.Errorf("Contact not captured: %v", lead.Answers)
	}
	if state.Step != domain.StepChooseCampaign {
		t.Errorf("Expected return to menu after completion, got %s", state.Step)
	}
	if len(replies) == 0 || !strings.Contains(replies[0].Content, "Thank you") {
		t.Errorf("Expected a thank-you message, got %+v", replies)
	}
}

func TestEngine_ConfirmDeclineReturnsToMenu(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()
	walkToMenu(t, e, state)
	e.Handle(state, "1")

	e.Handle(state, "2")
	e.Handle(state, "RM 300")
	e.Handle(state, "aminah@example.com")
	replies, lead := e.Handle(state, "no thanks")

	if lead != nil {
		t.Error("Declined confirmation must not produce a lead")
	}
	if state.Step != domain.StepChooseCampaign || state.ActiveCampaign != "" {
		t.Errorf("Expected campaign abandoned, got step=%s campaign=%q", state.Step, state.ActiveCampaign)
	}
	last := replies[len(replies)-1]
	if last.Kind != "buttons" {
		t.Errorf("Expected the menu to be re-offered, got %+v", last)
	}
}

func TestEngine_NumericStepRejectsNonNumbers(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()
	walkToMenu(t, e, state)
	e.Handle(state, "1")

	replies, _ := e.Handle(state, "a few")
	if state.CampaignStep != 0 {
		t.Error("Numeric step must not advance without a number")
	}
	if len(replies) != 1 || replies[0].Kind != "question" || replies[0].Input != "number" {
		t.Errorf("Expected a numeric re-ask, got %+v", replies)
	}
}

func TestEngine_UnknownConcernReasksWithButtons(t *testing.T) {
	e := NewEngine(nil)
	state := newTestState()
	e.Handle(state, "Aminah")
	e.Handle(state, "34")
	e.Handle(state, "0")

	replies, _ := e.Handle(state, "the weather")
	if state.Step != domain.StepGetConcern {
		t.Errorf("Step must not advance on unknown concern, got %s", state.Step)
	}
	if len(replies) != 1 || replies[0].Kind != "buttons" {
		t.Errorf("Expected concern buttons re-offered, got %+v", replies)
	}
}
