package promo

import (
	"fmt"
	"strings"
)

var (
	detailKeywords = []string{"details", "terms", "conditions", "syarat", "ketentuan", "info", "more", "tambahan"}
	claimKeywords  = []string{"how to claim", "how do i claim", "cara klaim", "cara claim", "klaim", "claim"}
	promoKeywords  = []string{"promo", "promotion", "bonus", "discount", "diskon"}
)

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// IsAskingForDetails reports whether message is a follow-up asking for
// promotion terms or claiming instructions. An explicit claim question
// counts even without a promo word; otherwise both a detail cue and a promo
// cue are required.
func IsAskingForDetails(message string) bool {
	lower := strings.ToLower(message)
	if containsAny(lower, claimKeywords) {
		return true
	}
	return containsAny(lower, detailKeywords) && containsAny(lower, promoKeywords)
}

// Format renders the catalog, choosing the detailed view when userMessage
// asks for it.
func Format(promotions []Promotion, userMessage string) string {
	if len(promotions) == 0 {
		return "No current promotions available. Check back later!"
	}
	if IsAskingForDetails(userMessage) {
		return formatDetailed(promotions)
	}
	return formatBrief(promotions)
}

func formatBrief(promotions []Promotion) string {
	var b strings.Builder
	b.WriteString("🎉 *Current Promotions* 🎉\n\n")
	for i, p := range promotions {
		fmt.Fprintf(&b, "*%d. %s*\n", i+1, p.Title)
		if p.Description != "" {
			fmt.Fprintf(&b, "   %s\n", p.Description)
		}
		if p.Code != "" {
			fmt.Fprintf(&b, "   💎 Code: `%s`\n", p.Code)
		}
		if p.BonusPercentage > 0 {
			fmt.Fprintf(&b, "   🤑 %d%% Bonus\n", p.BonusPercentage)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n💡 Type 'more details' or 'terms' to see full terms and conditions for each promotion.")
	return b.String()
}

func formatDetailed(promotions []Promotion) string {
	var b strings.Builder
	b.WriteString("🎉 *Promotion Details* 🎉\n\n")
	for i, p := range promotions {
		b.WriteString(FormatDetails(p))
		if i < len(promotions)-1 {
			b.WriteString("\n" + strings.Repeat("─", 30) + "\n\n")
		}
	}
	return b.String()
}

// FormatDetails renders one promotion with validity, eligible games, terms,
// and claiming steps.
func FormatDetails(p Promotion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎁 *%s*\n\n", p.Title)
	if p.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", p.Description)
	}
	if p.Code != "" {
		fmt.Fprintf(&b, "🔑 *Code:* `%s`\n", p.Code)
	}
	if p.BonusPercentage > 0 {
		fmt.Fprintf(&b, "💰 *%d%% Bonus", p.BonusPercentage)
		if p.MaxBonus != "" {
			fmt.Fprintf(&b, " (Max: %s)", p.MaxBonus)
		}
		b.WriteString("*\n")
	}

	switch {
	case p.StartDate != "" && p.EndDate != "":
		fmt.Fprintf(&b, "📅 *Validity:* %s - %s\n", p.StartDate, p.EndDate)
	case p.EndDate != "":
		fmt.Fprintf(&b, "📅 *Validity:* Until %s\n", p.EndDate)
	case p.StartDate != "":
		fmt.Fprintf(&b, "📅 *Validity:* From %s\n", p.StartDate)
	}

	if len(p.EligibleGames) > 0 {
		fmt.Fprintf(&b, "🎮 *Eligible Games:* %s\n", strings.Join(p.EligibleGames, ", "))
	}

	if len(p.Terms) > 0 {
		b.WriteString("\n📜 *Terms & Conditions:*\n")
		for i, term := range p.Terms {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, term)
		}
	}

	b.WriteString("\n📌 *How to Claim:*\n")
	if len(p.HowToClaim) > 0 {
		for i, step := range p.HowToClaim {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	} else {
		b.WriteString("  1. Log in to your account\n")
		b.WriteString("  2. Go to the deposit page\n")
		b.WriteString("  3. Enter promo code (if any)\n")
		b.WriteString("  4. Make a qualifying deposit\n")
	}
	return b.String()
}
