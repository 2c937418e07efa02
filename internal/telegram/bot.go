package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

// requestTimeout bounds the work done for a single chat message.
const requestTimeout = 2 * time.Minute

// Service is the part of the application the bot talks to.
type Service interface {
	ClipRecipe(ctx context.Context, url string) (recipe.Recipe, error)
	ListRecipes(ctx context.Context) ([]recipe.Recipe, error)
	PlanMeals(ctx context.Context, k int) (app.PlanResult, error)
	LatestPlan(ctx context.Context) (app.PlanResult, error)
	Health(ctx context.Context) (app.Health, error)
}

// Sender delivers messages to Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API and the meal planner service.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	svc     Service
	allowed map[int64]struct{}
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, svc Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return newBot(api, api, svc, cfg.TelegramAllowedUserIDs, logger), nil
}

func newBot(api *tgbotapi.BotAPI, sender Sender, svc Service, allowedIDs []int64, logger *zap.Logger) *Bot {
	allowed := make(map[int64]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}
	return &Bot{api: api, sender: sender, svc: svc, allowed: allowed, logger: logger}
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
}

// Wait blocks until messages being processed are done.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if _, ok := b.allowed[msg.From.ID]; !ok {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", msg.From.ID),
			zap.String("username", msg.From.UserName))
		return
	}

	// Telegram retries webhooks that answer slowly.
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		b.processMessage(ctx, msg)
	}()
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(ctx, msg.Chat.ID, strings.Fields(text)[0])
		return
	}

	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, helpText)
		return
	}
	switch msg.Command() {
	case "plan":
		b.handlePlan(ctx, msg.Chat.ID, msg.CommandArguments())
	case "recipes":
		b.handleRecipes(ctx, msg.Chat.ID)
	case "shop":
		b.handleShop(ctx, msg.Chat.ID)
	case "health":
		b.handleHealth(ctx, msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

const helpText = "👋 Send me a recipe link to save it.\n\n" +
	"/plan [N] - pick N recipes that share ingredients\n" +
	"/recipes - list saved recipes\n" +
	"/shop - shopping list for the latest plan\n" +
	"/health - bot status"

func (b *Bot) handleClip(ctx context.Context, chatID int64, url string) {
	sent, err := b.sender.Send(markdown(chatID, "✂️ *Clipping recipe...*"))
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Error(err))
		return
	}

	var finalText string
	r, err := b.svc.ClipRecipe(ctx, url)
	switch {
	case errors.Is(err, recipe.ErrExtractionFailed):
		finalText = "🤷 Could not parse a recipe from this page."
	case err != nil:
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%s\n```", strings.ReplaceAll(err.Error(), "`", "'"))
	default:
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*Ingredients:* %d\n*Steps:* %d",
			escape(r.Title), len(r.Ingredients), len(r.Steps))
	}
	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, args string) {
	k := 0
	if args = strings.TrimSpace(args); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			b.reply(chatID, "Usage: /plan [number of meals]")
			return
		}
		k = n
	}

	res, err := b.svc.PlanMeals(ctx, k)
	if errors.Is(err, planner.ErrNoRecipes) {
		b.reply(chatID, "📭 No saved recipes yet. Send me a recipe link first.")
		return
	}
	if err != nil {
		b.logger.Error("error generating plan", zap.Error(err))
		b.reply(chatID, "❌ Error generating plan.")
		return
	}

	planText, shoppingText := formatPlanMarkdownParts(res)
	b.send(markdown(chatID, planText))
	b.send(markdown(chatID, shoppingText))
}

func (b *Bot) handleRecipes(ctx context.Context, chatID int64) {
	recipes, err := b.svc.ListRecipes(ctx)
	if err != nil {
		b.logger.Error("error listing recipes", zap.Error(err))
		b.reply(chatID, "❌ Error listing recipes.")
		return
	}
	b.send(markdown(chatID, formatRecipeList(recipes)))
}

func (b *Bot) handleShop(ctx context.Context, chatID int64) {
	res, err := b.svc.LatestPlan(ctx)
	if errors.Is(err, app.ErrNoPlan) {
		b.reply(chatID, "🗓️ No plan yet. Use /plan first.")
		return
	}
	if err != nil {
		b.logger.Error("error loading latest plan", zap.Error(err))
		b.reply(chatID, "❌ Error loading the shopping list.")
		return
	}
	_, shoppingText := formatPlanMarkdownParts(res)
	b.send(markdown(chatID, shoppingText))
}

func (b *Bot) handleHealth(ctx context.Context, chatID int64) {
	h, err := b.svc.Health(ctx)
	if err != nil {
		b.logger.Error("error collecting health", zap.Error(err))
		b.reply(chatID, "❌ Error collecting health data.")
		return
	}
	b.send(markdown(chatID, "🧠 *System Health*\n\n"+escape(h.String())))
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		b.logger.Error("failed to send message", zap.Error(err))
	}
}

func markdown(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, truncate(text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}
