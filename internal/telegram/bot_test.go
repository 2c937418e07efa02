package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// --- Mocks ---
type recordingSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func (s *recordingSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeService struct {
	recipes   []recipe.Recipe
	plan      app.PlanResult
	planErr   error
	clipErr   error
	requested int
}

func (f *fakeService) ClipRecipe(_ context.Context, url string) (recipe.Recipe, error) {
	if f.clipErr != nil {
		return recipe.Recipe{}, f.clipErr
	}
	return recipe.Recipe{ID: "r1", Title: "Pad_Thai", Ingredients: []string{"noodles"}, SourceURL: url}, nil
}

func (f *fakeService) ListRecipes(context.Context) ([]recipe.Recipe, error) { return f.recipes, nil }

func (f *fakeService) PlanMeals(_ context.Context, k int) (app.PlanResult, error) {
	f.requested = k
	return f.plan, f.planErr
}

func (f *fakeService) LatestPlan(context.Context) (app.PlanResult, error) {
	if f.plan.Plan == nil {
		return app.PlanResult{}, app.ErrNoPlan
	}
	return f.plan, nil
}

func (f *fakeService) Health(context.Context) (app.Health, error) {
	return app.Health{SysHealth: metrics.SysHealth{Goroutines: 3}, Recipes: 2}, nil
}

// --- Helpers ---

const allowedUser = 42

func newTestBot(svc Service) (*Bot, *recordingSender) {
	sender := &recordingSender{}
	return newBot(&tgbotapi.BotAPI{}, sender, svc, []int64{allowedUser}, zap.NewNop()), sender
}

func deliver(t *testing.T, b *Bot, from int64, text string) int {
	t.Helper()
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "cook"},
		Chat:      &tgbotapi.Chat{ID: 100, Type: "private"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	body, err := json.Marshal(tgbotapi.Update{UpdateID: 1, Message: msg})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	b.handleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body)))
	b.Wait()
	return rec.Code
}

func samplePlan() app.PlanResult {
	qty := 300.0
	return app.PlanResult{
		Plan: &planner.MealPlan{ID: "p1", RecipeIDs: []string{"a", "b"}, Score: 4},
		Recipes: []recipe.Recipe{
			{ID: "a", Title: "Tacos"},
			{ID: "b", Title: "Chili"},
		},
		Shopping: []shopping.Item{
			{Key: "spaghetti", Display: "300 g spaghetti", Lines: []string{"200 g spaghetti", "100 g spaghetti"}, Quantity: &qty, Unit: "g"},
			{Key: "onion", Display: "1 onion", Lines: []string{"1 onion"}},
		},
	}
}

// --- Tests ---

func TestFormatPlanMarkdownParts(t *testing.T) {
	planOutput, shoppingOutput := formatPlanMarkdownParts(samplePlan())

	if !strings.Contains(planOutput, "📅 *Meal Plan*") {
		t.Error("Missing plan header")
	}
	if !strings.Contains(planOutput, "*1.* Tacos") || !strings.Contains(planOutput, "*2.* Chili") {
		t.Error("Missing planned recipes")
	}
	if !strings.Contains(planOutput, "Overlap score: 4") {
		t.Error("Missing overlap score")
	}
	if !strings.Contains(shoppingOutput, "🛒 *Shopping List*") {
		t.Error("Missing shopping list header")
	}
	if !strings.Contains(shoppingOutput, "• 300 g spaghetti (x2)") {
		t.Error("Missing common shopping item")
	}
	if !strings.Contains(shoppingOutput, "• 1 onion\n") {
		t.Error("Missing single shopping item")
	}
}

func TestWebhook_UnauthorizedUserIsIgnored(t *testing.T) {
	b, sender := newTestBot(&fakeService{})
	deliver(t, b, 7, "/recipes")
	assert.Empty(t, sender.texts())
}

func TestWebhook_BadUpdate(t *testing.T) {
	b, _ := newTestBot(&fakeService{})
	rec := httptest.NewRecorder()
	b.handleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_Clip(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		b, sender := newTestBot(&fakeService{})
		deliver(t, b, allowedUser, "https://example.com/pad-thai")

		texts := sender.texts()
		require.Len(t, texts, 2)
		assert.Contains(t, texts[0], "Clipping recipe")
		assert.Contains(t, texts[1], "Recipe Saved!")
		assert.Contains(t, texts[1], `Pad\_Thai`)
	})

	t.Run("no recipe on page", func(t *testing.T) {
		b, sender := newTestBot(&fakeService{clipErr: recipe.ErrExtractionFailed})
		deliver(t, b, allowedUser, "https://example.com/blog")
		texts := sender.texts()
		require.Len(t, texts, 2)
		assert.Contains(t, texts[1], "Could not parse a recipe")
	})

	t.Run("fetch error", func(t *testing.T) {
		b, sender := newTestBot(&fakeService{clipErr: errors.New("status `404`")})
		deliver(t, b, allowedUser, "https://example.com/gone")
		texts := sender.texts()
		require.Len(t, texts, 2)
		assert.Contains(t, texts[1], "Error clipping recipe")
		assert.Contains(t, texts[1], "status '404'")
	})
}

func TestWebhook_Plan(t *testing.T) {
	svc := &fakeService{plan: samplePlan()}
	b, sender := newTestBot(svc)

	deliver(t, b, allowedUser, "/plan 3")
	assert.Equal(t, 3, svc.requested)
	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Tacos")
	assert.Contains(t, texts[1], "300 g spaghetti")

	deliver(t, b, allowedUser, "/plan")
	assert.Equal(t, 0, svc.requested)

	deliver(t, b, allowedUser, "/plan lots")
	assert.Contains(t, sender.texts()[len(sender.texts())-1], "Usage: /plan")
}

func TestWebhook_PlanWithoutRecipes(t *testing.T) {
	b, sender := newTestBot(&fakeService{planErr: planner.ErrNoRecipes})
	deliver(t, b, allowedUser, "/plan")
	assert.Equal(t, []string{"📭 No saved recipes yet. Send me a recipe link first."}, sender.texts())
}

func TestWebhook_Shop(t *testing.T) {
	b, sender := newTestBot(&fakeService{})
	deliver(t, b, allowedUser, "/shop")
	assert.Contains(t, sender.texts()[0], "No plan yet")

	b, sender = newTestBot(&fakeService{plan: samplePlan()})
	deliver(t, b, allowedUser, "/shop")
	require.Len(t, sender.texts(), 1)
	assert.Contains(t, sender.texts()[0], "Shopping List")
}

func TestWebhook_RecipesHealthAndHelp(t *testing.T) {
	b, sender := newTestBot(&fakeService{recipes: []recipe.Recipe{{ID: "a", Title: "Tacos"}}})

	deliver(t, b, allowedUser, "/recipes")
	deliver(t, b, allowedUser, "/health")
	deliver(t, b, allowedUser, "hello there")

	texts := sender.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[0], "Saved Recipes* (1)")
	assert.Contains(t, texts[1], "Recipes: 2")
	assert.Equal(t, helpText, texts[2])
}

func TestTruncate(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, truncate(short))

	// Two-byte characters: the limit counts characters, not bytes.
	exact := strings.Repeat("é", maxMessageLen)
	assert.Equal(t, exact, truncate(exact))

	long := strings.Repeat("é", maxMessageLen+10)
	out := truncate(long)
	assert.Equal(t, maxMessageLen, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "\n…"))
	assert.True(t, strings.HasPrefix(out, "éé"))
}
