package domain

// Choice is one selectable answer offered during a campaign step.
type Choice struct {
	Label string
	Value string
}

// CampaignStep is a single scripted question inside a campaign.
type CampaignStep struct {
	Field   string // user data key the answer is stored under
	Prompt  string
	Choices []Choice // optional; empty means free-form input
	Confirm bool     // answer is interpreted as yes/no
	Numeric bool     // answer must contain a number or amount
}

// Campaign is a scripted product conversation.
type Campaign struct {
	ID          string
	Title       string
	Description string
	Steps       []CampaignStep
}

// Priority ranks a campaign for a visitor profile. Higher sorts first.
// Every campaign stays visible at priority 1 minimum; profile matches are
// boosted so relevant plans lead the menu.
func (c Campaign) Priority(primaryConcern, lifeStage string, age, dependents int) int {
	p := 1
	switch c.ID {
	case "sgsa":
		if primaryConcern == "income_protection" || dependents > 0 {
			p = 2
		}
	case "tabung_warisan":
		if primaryConcern == "retirement" || age >= 40 {
			p = 2
		}
	case "tabung_perubatan":
		if primaryConcern == "medical_expenses" || dependents > 0 {
			p = 2
		}
	case "masa_depan_anak_kita":
		if primaryConcern == "education" || dependents > 0 {
			p = 2
		}
	case "perlindungan_combo":
		if primaryConcern == "comprehensive" || lifeStage == "family" {
			p = 2
		}
	}
	return p
}
