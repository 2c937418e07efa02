package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meal-planner/internal/app"
	"meal-planner/internal/recipe"
)

// maxMessageLen is Telegram's limit, in characters, for a single text message.
const maxMessageLen = 4096

func formatPlanMarkdownParts(res app.PlanResult) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Meal Plan*\n\n")
	for i, r := range res.Recipes {
		fmt.Fprintf(&pb, "*%d.* %s\n", i+1, escape(r.Title))
	}
	if res.Plan != nil && len(res.Recipes) > 1 {
		fmt.Fprintf(&pb, "\n_Overlap score: %d_\n", res.Plan.Score)
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(res.Shopping) == 0 {
		sb.WriteString("_Nothing to buy_\n")
	}
	for _, item := range res.Shopping {
		fmt.Fprintf(&sb, "• %s", escape(item.Display))
		if item.IsCommon() {
			fmt.Fprintf(&sb, " (x%d)", item.RecipeCount())
		}
		sb.WriteString("\n")
	}
	return pb.String(), sb.String()
}

func formatRecipeList(recipes []recipe.Recipe) string {
	if len(recipes) == 0 {
		return "📭 No saved recipes yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 *Saved Recipes* (%d)\n\n", len(recipes))
	for _, r := range recipes {
		fmt.Fprintf(&sb, "• %s\n", escape(r.Title))
	}
	return sb.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// truncate cuts s to at most maxMessageLen characters, marking the cut.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLen {
		return s
	}
	runes := []rune(s)
	const marker = "\n…"
	return string(runes[:maxMessageLen-utf8.RuneCountInString(marker)]) + marker
}
