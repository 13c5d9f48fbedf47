package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wellness-meal-planner/internal/app"
	"wellness-meal-planner/internal/config"
	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/planner"
	"wellness-meal-planner/internal/shared"
)

const helpText = `🥗 *Meal Planner*

/plan [week] - show a week of your plan (1-4)
/swap <week> <day> <meal> - replace one meal
/lock <week> <day> <meal> - lock or unlock a meal
/reroll <week> [day] - replace every unlocked meal
/repair - remove recipes used more than twice
/regenerate - start a new plan
/shopping [week] - shopping list
/recipe <id> - show a recipe
/fav [id] - toggle or list favorites

Send a recipe link to add it to the catalog.
Example: /swap 2 fri dinner`

// Sender is the part of the Telegram API the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves the planner over a Telegram webhook. Each user has their own
// plan per week.
type Bot struct {
	api Sender
	app *app.App
	cfg *config.Config
	now func() time.Time
}

type reply struct {
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook for %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, cfg, a), nil
}

func newBot(api Sender, cfg *config.Config, a *app.App) *Bot {
	return &Bot{api: api, app: a, cfg: cfg, now: time.Now}
}

// Handler serves the webhook and a health check.
func (b *Bot) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		b.HandleUpdate(ctx, update)
	}()
}

func (b *Bot) allowed(u *tgbotapi.User) bool {
	if u == nil {
		return false
	}
	for _, id := range b.cfg.TelegramAllowUserIDs {
		if u.ID == id {
			return true
		}
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", u.ID, u.UserName)
	return false
}

// HandleUpdate answers one update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if q := update.CallbackQuery; q != nil {
		if !b.allowed(q.From) || q.Message == nil {
			return
		}
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			log.Printf("Warning: failed to answer callback: %v", err)
		}
		r := b.handleCallback(ctx, q.From.ID, q.Data)
		edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, r.text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		b.send(edit)
		return
	}

	msg := update.Message
	if msg == nil || !b.allowed(msg.From) {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(ctx, msg.Chat.ID, text)
		return
	}
	b.reply(msg.Chat.ID, b.respond(ctx, msg.From.ID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := b.api.Send(c)
	if err != nil {
		log.Printf("Failed to send message: %v", err)
	}
	return m, err
}

func (b *Bot) reply(chatID int64, r reply) {
	m := tgbotapi.NewMessage(chatID, r.text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if r.keyboard != nil {
		m.ReplyMarkup = r.keyboard
	}
	b.send(m)
}

func (b *Bot) weekKey() string {
	return planner.WeekKey(b.now())
}

// planKey scopes a week's plan to one user.
func planKey(userID int64, weekKey string) string {
	return fmt.Sprintf("%d:%s", userID, weekKey)
}

func errorReply(err error) reply {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return reply{text: fmt.Sprintf("❌ *Error:*\n```\n%s\n```", safeErr)}
}

func (b *Bot) respond(ctx context.Context, userID int64, text string) reply {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return reply{text: helpText}
	}
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]
	weekKey := b.weekKey()
	key := planKey(userID, weekKey)
	p := b.app.Planner()

	switch cmd {
	case "/plan":
		week, err := optionalWeek(args)
		if err != nil {
			return errorReply(err)
		}
		st, err := p.Load(ctx, key)
		if err != nil {
			return errorReply(err)
		}
		prefix := ""
		if st.Regenerated {
			prefix = "✨ _New plan generated_\n\n"
		}
		return reply{text: prefix + formatWeek(p.Catalog(), st, weekKey, week)}

	case "/swap", "/lock":
		cell, err := app.ParseCell(args)
		if err != nil {
			return errorReply(err)
		}
		if cmd == "/lock" {
			out, err := p.ToggleLock(ctx, key, cell)
			if err != nil {
				return errorReply(err)
			}
			return reply{text: formatLock(out.State, weekKey, cell) + "\n\n" + formatWeek(p.Catalog(), out.State, weekKey, cell.Week)}
		}
		out, err := p.Swap(ctx, key, cell)
		if errors.Is(err, mealplan.ErrLocked) {
			return reply{text: "🔒 That meal is locked. Use /lock to unlock it first."}
		}
		if err != nil {
			return errorReply(err)
		}
		b.checkDegraded(out.Meta)
		return reply{text: formatOutcome(p.Catalog(), out) + "\n\n" + formatWeek(p.Catalog(), out.State, weekKey, cell.Week)}

	case "/reroll":
		if len(args) == 0 || len(args) > 2 {
			return reply{text: "Usage: /reroll <week> [day]"}
		}
		week, err := app.ParseWeek(args[0])
		if err != nil {
			return errorReply(err)
		}
		var out planner.Outcome
		if len(args) == 2 {
			day, dayErr := app.ParseDay(args[1])
			if dayErr != nil {
				return errorReply(dayErr)
			}
			out, err = p.RerollDay(ctx, key, week, day)
		} else {
			out, err = p.RerollWeek(ctx, key, week)
		}
		if err != nil {
			return errorReply(err)
		}
		b.checkDegraded(out.Meta)
		return reply{text: formatOutcome(p.Catalog(), out) + "\n\n" + formatWeek(p.Catalog(), out.State, weekKey, week)}

	case "/repair":
		out, err := p.Repair(ctx, key)
		if err != nil {
			return errorReply(err)
		}
		b.checkDegraded(out.Meta)
		return reply{text: formatOutcome(p.Catalog(), out)}

	case "/regenerate":
		if len(args) == 1 && strings.EqualFold(args[0], "confirm") {
			return b.regenerate(ctx, userID, weekKey)
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Yes, start over", "regen|"+weekKey),
				tgbotapi.NewInlineKeyboardButtonData("✋ Keep my plan", "keep|"+weekKey),
			),
		)
		return reply{
			text:     fmt.Sprintf("🗓️ A new plan for the weeks from *%s* replaces every meal and clears all locks.\nAre you sure?", weekKey),
			keyboard: &keyboard,
		}

	case "/shopping":
		week, err := optionalWeek(args)
		if err != nil {
			return errorReply(err)
		}
		list, err := p.ShoppingList(ctx, key, week)
		if err != nil {
			return errorReply(err)
		}
		return reply{text: formatShopping(list, weekKey)}

	case "/recipe":
		if len(args) != 1 {
			return reply{text: "Usage: /recipe <id>"}
		}
		r, err := p.Catalog().Lookup(args[0])
		if err != nil {
			return errorReply(err)
		}
		return reply{text: formatRecipe(r)}

	case "/fav":
		if len(args) == 0 {
			favs, err := p.Favorites(ctx)
			if err != nil {
				return errorReply(err)
			}
			return reply{text: formatFavorites(favs)}
		}
		on, err := p.ToggleFavorite(ctx, args[0])
		if err != nil {
			return errorReply(err)
		}
		if on {
			return reply{text: "⭐ Added to favorites."}
		}
		return reply{text: "Removed from favorites."}

	case "/metrics":
		if userID != b.cfg.AdminTelegramID {
			return reply{text: "⛔ *Access Denied*: Admin only."}
		}
		report, err := b.app.Stats(7)
		if err != nil {
			return reply{text: "❌ Error fetching metrics."}
		}
		return reply{text: "📊 *Usage & Health Report*\n```\n" + report + "```"}

	case "/publish":
		if userID != b.cfg.AdminTelegramID {
			return reply{text: "⛔ *Access Denied*: Admin only."}
		}
		week, err := optionalWeek(args)
		if err != nil {
			return errorReply(err)
		}
		post, err := b.app.PublishWeek(ctx, key, week, false)
		if err != nil {
			return errorReply(err)
		}
		return reply{text: fmt.Sprintf("📝 Draft created: *%s*", esc(post.Title))}
	}
	return reply{text: helpText}
}

func (b *Bot) handleCallback(ctx context.Context, userID int64, data string) reply {
	action, weekKey, ok := strings.Cut(data, "|")
	if !ok {
		return reply{text: "❌ Unknown action."}
	}
	switch action {
	case "regen":
		return b.regenerate(ctx, userID, weekKey)
	case "keep":
		return reply{text: "👍 Keeping your plan."}
	}
	return reply{text: "❌ Unknown action."}
}

func (b *Bot) regenerate(ctx context.Context, userID int64, weekKey string) reply {
	p := b.app.Planner()
	out, err := p.Regenerate(ctx, planKey(userID, weekKey), true)
	if err != nil {
		return errorReply(err)
	}
	b.checkDegraded(out.Meta)
	return reply{text: "✨ *New plan ready!*\n\n" + formatWeek(p.Catalog(), out.State, weekKey, 0)}
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, url string) {
	status := tgbotapi.NewMessage(chatID, "✂️ *Clipping recipe...*")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.send(status)
	if err != nil {
		return
	}

	var text string
	r, added, err := b.app.ImportURL(ctx, url, "")
	switch {
	case err != nil:
		log.Printf("Error clipping recipe: %v", err)
		text = errorReply(err).text
	case added:
		text = fmt.Sprintf("✅ *Recipe Saved!*\n\n*%s* is now a %s option (`%s`).\nYour plan is rebuilt on its next load.", esc(r.Title), r.MealType, r.ID)
	default:
		text = fmt.Sprintf("✅ *Recipe Updated!*\n\n*%s* (`%s`)", esc(r.Title), r.ID)
	}
	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

// checkDegraded tells the admin when an operation exceeded the fallback
// budget.
func (b *Bot) checkDegraded(meta shared.OpMeta) {
	if !meta.Degraded {
		return
	}
	b.sendAdminAlert(fmt.Sprintf("⚠️ *Degraded Plan Alert*\nOperation: %s\nFallbacks: %d\nThe catalog is too small for a varied plan.", meta.Operation, meta.Fallbacks))
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.cfg.AdminTelegramID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func optionalWeek(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return app.ParseWeek(args[0])
}
