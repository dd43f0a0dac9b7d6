// Package flow implements the campaign conversation the development server
// walks with each visitor: profile questions, a ranked campaign menu, and
// scripted per-campaign steps ending in a captured lead.
package flow

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wiralabs/chatlink/internal/domain"
	"github.com/wiralabs/chatlink/internal/nlp"
)

// Reply is one outbound frame the engine wants sent to the visitor.
type Reply struct {
	Kind    string // message, question, buttons, campaign, error
	Content string
	Buttons []domain.Choice
	Input   string // question input hint: text or number
}

func message(content string) Reply {
	return Reply{Kind: "message", Content: content}
}

func question(content, input string) Reply {
	return Reply{Kind: "question", Content: content, Input: input}
}

func buttons(content string, choices []domain.Choice) Reply {
	return Reply{Kind: "buttons", Content: content, Buttons: choices}
}

// Engine advances conversation state in response to visitor input. It holds
// no per-conversation state itself; everything lives in ConversationState,
// so one engine serves all connections.
type Engine struct {
	nlp     *nlp.Classifier
	catalog []domain.Campaign
	logger  *slog.Logger
}

// NewEngine creates the flow engine over the built-in campaign catalog.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		nlp:     nlp.New(),
		catalog: Catalog(),
		logger:  logger,
	}
}

// Greet produces the opening exchange for a fresh conversation.
func (e *Engine) Greet(*domain.ConversationState) []Reply {
	return []Reply{
		message("Hi! I'm your protection planning assistant."),
		question("What's your name?", "text"),
	}
}

// Handle advances the conversation with one visitor input. When a campaign
// script completes it returns the captured lead alongside the replies.
func (e *Engine) Handle(state *domain.ConversationState, input string) ([]Reply, *domain.Lead) {
	input = strings.TrimSpace(input)

	switch state.Step {
	case domain.StepGetName:
		return e.handleName(state, input), nil
	case domain.StepGetDOB:
		return e.handleDOB(state, input), nil
	case domain.StepGetDependents:
		return e.handleDependents(state, input), nil
	case domain.StepGetConcern:
		return e.handleConcern(state, input), nil
	case domain.StepChooseCampaign:
		return e.handleCampaignChoice(state, input), nil
	case domain.StepCampaign:
		return e.handleCampaignStep(state, input)
	default:
		e.logger.Warn("conversation in unknown step", "conversation_id", state.ID, "step", state.Step)
		state.Step = domain.StepGetName
		return e.Greet(state), nil
	}
}

func (e *Engine) handleName(state *domain.ConversationState, input string) []Reply {
	if input == "" || e.nlp.Detect(input) == nlp.IntentGreeting {
		return []Reply{question("What's your name?", "text")}
	}
	state.UserData["name"] = input
	state.Step = domain.StepGetDOB
	return []Reply{
		message(fmt.Sprintf("Nice to meet you, %s!", input)),
		question("What's your date of birth (DD/MM/YYYY)?", "text"),
	}
}

func (e *Engine) handleDOB(state *domain.ConversationState, input string) []Reply {
	age, ok := e.ageFrom(input)
	if !ok {
		return []Reply{question("Sorry, I couldn't read that. Please use DD/MM/YYYY, or just tell me your age.", "text")}
	}
	state.UserData["age"] = strconv.Itoa(age)
	state.Step = domain.StepGetDependents
	return []Reply{question("How many dependents do you have?", "number")}
}

// ageFrom accepts a DD/MM/YYYY date of birth or a bare age.
func (e *Engine) ageFrom(input string) (int, bool) {
	if dob, err := time.Parse("02/01/2006", input); err == nil {
		age := int(time.Since(dob).Hours() / 24 / 365.25)
		if age >= 0 && age < 120 {
			return age, true
		}
		return 0, false
	}
	if n, ok := e.nlp.ExtractNumber(input); ok && n > 0 && n < 120 {
		return n, true
	}
	return 0, false
}

var concernChoices = []domain.Choice{
	{Label: "Protecting my income", Value: "income_protection"},
	{Label: "Medical expenses", Value: "medical_expenses"},
	{Label: "Children's education", Value: "education"},
	{Label: "Retirement & savings", Value: "retirement"},
	{Label: "Overall protection", Value: "comprehensive"},
}

func (e *Engine) handleDependents(state *domain.ConversationState, input string) []Reply {
	n, ok := e.nlp.ExtractNumber(input)
	if !ok {
		if e.nlp.IsNegative(input) {
			n = 0
		} else {
			return []Reply{question("How many dependents do you have? A number is fine.", "number")}
		}
	}
	state.UserData["dependents"] = strconv.Itoa(n)
	state.Step = domain.StepGetConcern
	return []Reply{buttons("What matters most to you right now?", concernChoices)}
}

func (e *Engine) handleConcern(state *domain.ConversationState, input string) []Reply {
	value := strings.ToLower(input)
	known := false
	for _, c := range concernChoices {
		if value == c.Value {
			known = true
			break
		}
	}
	if !known {
		// Free-text answers route through intent detection.
		switch e.nlp.Detect(input) {
		case nlp.IntentAskPremiums, nlp.IntentAskCoverage:
			value = "comprehensive"
		default:
			return []Reply{buttons("Please pick the concern closest to yours:", concernChoices)}
		}
	}
	state.UserData["primary_concern"] = value
	state.Step = domain.StepChooseCampaign
	return e.campaignMenu(state)
}

// campaignMenu ranks the catalog for this visitor and offers it as buttons.
// The displayed order is stored so the selection index resolves correctly.
func (e *Engine) campaignMenu(state *domain.ConversationState) []Reply {
	ranked := make([]domain.Campaign, len(e.catalog))
	copy(ranked, e.catalog)

	concern := state.UserData["primary_concern"]
	lifeStage := state.UserData["life_stage"]
	age := state.IntData("age")
	dependents := state.IntData("dependents")

	sort.SliceStable(ranked, func(i, j int) bool {
		pi := ranked[i].Priority(concern, lifeStage, age, dependents)
		pj := ranked[j].Priority(concern, lifeStage, age, dependents)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Title < ranked[j].Title
	})

	choices := make([]domain.Choice, 0, len(ranked))
	ids := make([]string, 0, len(ranked))
	for i, c := range ranked {
		choices = append(choices, domain.Choice{
			Label: fmt.Sprintf("%d. %s", i+1, c.Title),
			Value: strconv.Itoa(i + 1),
		})
		ids = append(ids, c.ID)
	}
	state.UserData["displayed_campaigns"] = strings.Join(ids, ",")

	return []Reply{buttons("Here are the available plans. Please select one:", choices)}
}

func (e *Engine) handleCampaignChoice(state *domain.ConversationState, input string) []Reply {
	displayed := strings.Split(state.UserData["displayed_campaigns"], ",")
	idx, ok := e.nlp.ExtractNumber(input)
	if !ok || idx < 1 || idx > len(displayed) || displayed[0] == "" {
		return e.campaignMenu(state)
	}

	campaign, ok := e.campaignByID(displayed[idx-1])
	if !ok {
		e.logger.Error("displayed campaign missing from catalog", "campaign", displayed[idx-1])
		return e.campaignMenu(state)
	}

	state.ActiveCampaign = campaign.ID
	state.CampaignStep = 0
	state.Step = domain.StepCampaign

	replies := []Reply{
		{Kind: "campaign", Content: fmt.Sprintf("%s — %s", campaign.Title, campaign.Description)},
	}
	return append(replies, e.stepPrompt(campaign.Steps[0]))
}

func (e *Engine) handleCampaignStep(state *domain.ConversationState, input string) ([]Reply, *domain.Lead) {
	campaign, ok := e.campaignByID(state.ActiveCampaign)
	if !ok || state.CampaignStep >= len(campaign.Steps) {
		e.logger.Warn("campaign state out of range, returning to menu",
			"conversation_id", state.ID, "campaign", state.ActiveCampaign, "step", state.CampaignStep)
		return e.resetToMenu(state, ""), nil
	}

	step := campaign.Steps[state.CampaignStep]
	answer, replies := e.answerFor(step, input)
	if replies != nil {
		return replies, nil
	}
	if step.Confirm && answer == "no" {
		return e.resetToMenu(state, "No problem. Feel free to look at another plan:"), nil
	}

	state.UserData["answer_"+step.Field] = answer
	state.CampaignStep++

	if state.CampaignStep < len(campaign.Steps) {
		return []Reply{e.stepPrompt(campaign.Steps[state.CampaignStep])}, nil
	}

	lead := e.buildLead(state, campaign)
	thanks := fmt.Sprintf("Thank you, %s! An advisor will be in touch about %s shortly.",
		state.UserData["name"], campaign.Title)
	return append([]Reply{message(thanks)}, e.resetToMenu(state, "Anything else I can help with?")...), lead
}

// answerFor validates input against the step shape. A nil reply slice means
// the answer was accepted.
func (e *Engine) answerFor(step domain.CampaignStep, input string) (string, []Reply) {
	switch {
	case step.Confirm:
		if e.nlp.IsAffirmative(input) {
			return "yes", nil
		}
		if e.nlp.IsNegative(input) {
			return "no", nil
		}
		return "", []Reply{buttons(step.Prompt, step.Choices)}
	case step.Numeric:
		if amount, ok := e.nlp.ExtractAmount(input); ok {
			return amount, nil
		}
		return "", []Reply{question("A number would help me here. "+step.Prompt, "number")}
	default:
		if strings.TrimSpace(input) == "" {
			return "", []Reply{question(step.Prompt, "text")}
		}
		return strings.TrimSpace(input), nil
	}
}

func (e *Engine) stepPrompt(step domain.CampaignStep) Reply {
	if len(step.Choices) > 0 {
		return buttons(step.Prompt, step.Choices)
	}
	input := "text"
	if step.Numeric {
		input = "number"
	}
	return question(step.Prompt, input)
}

// resetToMenu abandons any active campaign and re-offers the menu.
func (e *Engine) resetToMenu(state *domain.ConversationState, note string) []Reply {
	state.ActiveCampaign = ""
	state.CampaignStep = 0
	state.Step = domain.StepChooseCampaign

	var replies []Reply
	if note != "" {
		replies = append(replies, message(note))
	}
	return append(replies, e.campaignMenu(state)...)
}

func (e *Engine) buildLead(state *domain.ConversationState, campaign domain.Campaign) *domain.Lead {
	answers := make(map[string]string, len(campaign.Steps))
	for _, step := range campaign.Steps {
		if v, ok := state.UserData["answer_"+step.Field]; ok {
			answers[step.Field] = v
		}
	}
	return &domain.Lead{
		ConversationID: state.ID,
		Name:           state.UserData["name"],
		Age:            state.IntData("age"),
		Dependents:     state.IntData("dependents"),
		PrimaryConcern: state.UserData["primary_concern"],
		Campaign:       campaign.ID,
		Answers:        answers,
	}
}

func (e *Engine) campaignByID(id string) (domain.Campaign, bool) {
	for _, c := range e.catalog {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Campaign{}, false
}
