package flow

import "github.com/wiralabs/chatlink/internal/domain"

// yesNo is the standard confirmation button pair.
var yesNo = []domain.Choice{
	{Label: "Yes", Value: "yes"},
	{Label: "No", Value: "no"},
}

// Catalog returns the scripted product campaigns offered in the menu.
func Catalog() []domain.Campaign {
	return []domain.Campaign{
		{
			ID:          "sgsa",
			Title:       "Satu Gaji Satu Harapan",
			Description: "Income protection plan that ensures your family's financial stability",
			Steps: []domain.CampaignStep{
				{Field: "monthly_income", Prompt: "To tailor the coverage, what is your monthly income (RM)?", Numeric: true},
				{Field: "monthly_budget", Prompt: "How much can you set aside each month for protection (RM)?", Numeric: true},
				{Field: "contact", Prompt: "Great. Where can our advisor reach you (phone or email)?"},
				{Field: "confirm", Prompt: "Shall I have an advisor prepare a Satu Gaji Satu Harapan quote for you?", Choices: yesNo, Confirm: true},
			},
		},
		{
			ID:          "tabung_warisan",
			Title:       "Tabung Warisan",
			Description: "Legacy planning to secure your family's future",
			Steps: []domain.CampaignStep{
				{Field: "legacy_amount", Prompt: "What legacy amount would you like to leave for your family (RM)?", Numeric: true},
				{Field: "beneficiary", Prompt: "Who would be the main beneficiary (e.g. spouse, children)?"},
				{Field: "contact", Prompt: "Where can our advisor reach you (phone or email)?"},
				{Field: "confirm", Prompt: "Shall I arrange a Tabung Warisan consultation?", Choices: yesNo, Confirm: true},
			},
		},
		{
			ID:          "tabung_perubatan",
			Title:       "Tabung Perubatan",
			Description: "Comprehensive medical coverage for you and your family",
			Steps: []domain.CampaignStep{
				{Field: "persons_covered", Prompt: "How many family members should the medical plan cover?", Numeric: true},
				{Field: "existing_coverage", Prompt: "Do you already have any medical coverage today?", Choices: yesNo},
				{Field: "contact", Prompt: "Where can our advisor reach you (phone or email)?"},
				{Field: "confirm", Prompt: "Shall I prepare a Tabung Perubatan quote for you?", Choices: yesNo, Confirm: true},
			},
		},
		{
			ID:          "masa_depan_anak_kita",
			Title:       "Masa Depan Anak Kita",
			Description: "Education savings plan for your children's future",
			Steps: []domain.CampaignStep{
				{Field: "children_count", Prompt: "How many children would you like to save for?", Numeric: true},
				{Field: "monthly_saving", Prompt: "How much can you save for their education each month (RM)?", Numeric: true},
				{Field: "contact", Prompt: "Where can our advisor reach you (phone or email)?"},
				{Field: "confirm", Prompt: "Shall I prepare a Masa Depan Anak Kita illustration?", Choices: yesNo, Confirm: true},
			},
		},
		{
			ID:          "perlindungan_combo",
			Title:       "Perlindungan Combo",
			Description: "Comprehensive protection plan covering multiple needs",
			Steps: []domain.CampaignStep{
				{Field: "priority_cover", Prompt: "Which cover matters most to you: life, medical or savings?"},
				{Field: "monthly_budget", Prompt: "What monthly budget works for you (RM)?", Numeric: true},
				{Field: "contact", Prompt: "Where can our advisor reach you (phone or email)?"},
				{Field: "confirm", Prompt: "Shall I put together a Perlindungan Combo proposal?", Choices: yesNo, Confirm: true},
			},
		},
	}
}
