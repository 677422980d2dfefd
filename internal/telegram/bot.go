// Package telegram exposes the planner workflow as a Telegram bot driven by
// webhook updates and inline keyboards.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-supply-planner/internal/config"
	"ai-supply-planner/internal/export"
	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/metrics"
	"ai-supply-planner/internal/planner"
	"ai-supply-planner/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback payloads. Offer selection is "sel|<item>|<offer>".
const (
	cbShopping  = "shop"
	cbRefresh   = "refresh"
	cbPlanPDF   = "planpdf"
	cbShopPDF   = "shoppdf"
	cbSelectPfx = "sel|"
)

const maxMessageLen = 4000

// API is the part of tgbotapi.BotAPI the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot routes Telegram updates to per-chat planner sessions.
type Bot struct {
	api       API
	store     *session.Store
	cfg       *config.Config
	log       *logger.Logger
	pdf       export.PDFOptions
	startedAt time.Time

	mu sync.Mutex
	// shopping holds the messages currently showing each chat's shopping plan.
	shopping map[int64]messageSet
}

// messageSet is a text split over consecutive messages. The keyboard sits on the last one.
type messageSet struct {
	ids   []int
	texts []string
}

func (m messageSet) last() int {
	if len(m.ids) == 0 {
		return 0
	}
	return m.ids[len(m.ids)-1]
}

// NewBot authorizes against the Telegram API and registers the webhook.
func NewBot(cfg *config.Config, store *session.Store, logg *logger.Logger, pdf export.PDFOptions) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	ctx := logg.WithField(context.Background(), "bot", api.Self.UserName)
	logg.Info(ctx, "telegram.authorized")

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	if _, err := api.Request(wh); err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logg.Info(logg.WithField(ctx, "webhook", cfg.TelegramWebhookURL), "telegram.webhook_set")

	return New(api, cfg, store, logg, pdf), nil
}

// New builds a bot on top of an existing API client.
func New(api API, cfg *config.Config, store *session.Store, logg *logger.Logger, pdf export.PDFOptions) *Bot {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Bot{
		api:       api,
		store:     store,
		cfg:       cfg,
		log:       logg,
		pdf:       pdf,
		startedAt: time.Now(),
		shopping:  make(map[int64]messageSet),
	}
}

// WebhookPath is the server path the webhook is mounted on: the path of the
// configured webhook URL, which is where Telegram posts updates.
func WebhookPath(webhookURL string) string {
	u, err := url.Parse(webhookURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// ServeHTTP acknowledges the update immediately and handles it in the background.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.Warn(b.log.WithField(r.Context(), "error", err.Error()), "telegram.bad_update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
	go b.HandleUpdate(context.Background(), update)
}

// HandleUpdate processes a single update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.Message == nil || !b.allowed(ctx, q.From) {
			return
		}
		b.handleCallback(ctx, q)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || !b.allowed(ctx, msg.From) {
			return
		}
		b.handleMessage(ctx, msg)
	}
}

func (b *Bot) allowed(ctx context.Context, from *tgbotapi.User) bool {
	if b.cfg.IsTelegramUserAllowed(from.ID) {
		return true
	}
	b.log.Warn(b.log.WithFields(ctx, map[string]any{"user_id": from.ID, "username": from.UserName}), "telegram.unauthorized")
	return false
}

func (b *Bot) sessionFor(chatID int64) *planner.Session {
	return b.store.GetOrCreate(fmt.Sprintf("tg:%d", chatID))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	cmd, args := parseCommand(msg.Text)
	chatID := msg.Chat.ID

	switch cmd {
	case "plan":
		input, err := parseFormInput(args)
		if err != nil {
			b.sendText(ctx, chatID, usageText())
			return
		}
		b.generatePlan(ctx, chatID, input)
	case "status":
		b.sendText(ctx, chatID, statusText(metrics.GetSysHealth(b.startedAt, b.store.Len())))
	default:
		b.sendText(ctx, chatID, usageText())
	}
}

func (b *Bot) generatePlan(ctx context.Context, chatID int64, input inventory.FormInput) {
	sess := b.sessionFor(chatID)
	if sess.Busy() {
		b.sendText(ctx, chatID, "⏳ "+planner.UserMessage(planner.ErrBusy))
		return
	}

	status := b.sendText(ctx, chatID, "🧮 *Izrađujem godišnji plan nabave...*")
	plan, err := sess.GenerateInventoryPlan(ctx, input)
	if err != nil {
		b.replaceText(ctx, chatID, status, errorText(err), nil)
		return
	}
	kb := planKeyboard()
	b.deliver(ctx, chatID, messageSet{ids: []int{status}}, planMessages(plan), &kb)
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID
	sess := b.sessionFor(chatID)

	if sess.Busy() {
		b.answer(ctx, q.ID, planner.UserMessage(planner.ErrBusy))
		return
	}
	b.answer(ctx, q.ID, "")

	switch {
	case q.Data == cbShopping:
		status := b.sendText(ctx, chatID, "🔎 *Tražim najbolje ponude...*")
		items, err := sess.GenerateShoppingPlan(ctx)
		b.showShopping(ctx, chatID, status, items, err)
	case q.Data == cbRefresh:
		status := b.sendText(ctx, chatID, "🔄 *Osvježavam cijene...*")
		items, err := sess.RefreshShoppingPlanPrices(ctx)
		b.showShopping(ctx, chatID, status, items, err)
	case q.Data == cbPlanPDF:
		b.sendPlanPDF(ctx, chatID, sess.Snapshot())
	case q.Data == cbShopPDF:
		b.sendShoppingPDF(ctx, chatID, sess.Snapshot())
	case strings.HasPrefix(q.Data, cbSelectPfx):
		i, j, ok := parseSelect(q.Data)
		if !ok || !sess.SelectOffer(i, j) {
			return
		}
		prev := b.shoppingMessages(chatID)
		if prev.last() != messageID {
			prev = messageSet{ids: []int{messageID}}
		}
		items := sess.Snapshot().ShoppingPlan
		kb := shoppingKeyboard(items)
		b.setShoppingMessages(chatID, b.deliver(ctx, chatID, prev, shoppingMessages(items), &kb))
	}
}

func (b *Bot) showShopping(ctx context.Context, chatID int64, status int, items []inventory.ShoppingItem, err error) {
	if err != nil {
		b.replaceText(ctx, chatID, status, errorText(err), nil)
		return
	}
	kb := shoppingKeyboard(items)
	b.setShoppingMessages(chatID, b.deliver(ctx, chatID, messageSet{ids: []int{status}}, shoppingMessages(items), &kb))
}

func (b *Bot) shoppingMessages(chatID int64) messageSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shopping[chatID]
}

func (b *Bot) setShoppingMessages(chatID int64, set messageSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shopping[chatID] = set
}

func (b *Bot) sendPlanPDF(ctx context.Context, chatID int64, st planner.State) {
	if len(st.InventoryPlan) == 0 {
		b.sendText(ctx, chatID, errorText(planner.ErrNoInventoryPlan))
		return
	}
	var buf bytes.Buffer
	if err := export.PlanPDF(&buf, st.InventoryPlan, b.pdf); err != nil {
		b.log.Error(ctx, "telegram.pdf_failed", err)
		b.sendText(ctx, chatID, errorText(err))
		return
	}
	b.sendDocument(ctx, chatID, export.PlanPDFFilename, buf.Bytes())
}

func (b *Bot) sendShoppingPDF(ctx context.Context, chatID int64, st planner.State) {
	if len(st.ShoppingPlan) == 0 {
		b.sendText(ctx, chatID, errorText(planner.ErrNoShoppingPlan))
		return
	}
	var buf bytes.Buffer
	if err := export.ShoppingPlanPDF(&buf, st.ShoppingPlan, b.pdf); err != nil {
		b.log.Error(ctx, "telegram.pdf_failed", err)
		b.sendText(ctx, chatID, errorText(err))
		return
	}
	b.sendDocument(ctx, chatID, export.ShoppingPlanPDFFilename, buf.Bytes())
}

// sendText sends a Markdown message and returns its id, or 0 if sending failed.
func (b *Bot) sendText(ctx context.Context, chatID int64, text string) int {
	return b.send(ctx, chatID, clip(text), nil)
}

// replaceText edits a status message in place, or sends a new one when there is none.
func (b *Bot) replaceText(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	b.deliver(ctx, chatID, messageSet{ids: []int{messageID}}, []string{clip(text)}, kb)
}

// deliver shows chunks in the messages of prev: known messages are edited in
// place, extra chunks are sent as new messages and left-over messages are
// deleted. Unchanged chunks are not edited again.
func (b *Bot) deliver(ctx context.Context, chatID int64, prev messageSet, chunks []string, kb *tgbotapi.InlineKeyboardMarkup) messageSet {
	next := messageSet{ids: make([]int, 0, len(chunks)), texts: chunks}
	for i, text := range chunks {
		var markup *tgbotapi.InlineKeyboardMarkup
		if i == len(chunks)-1 {
			markup = kb
		}

		if i < len(prev.ids) && prev.ids[i] != 0 {
			id := prev.ids[i]
			hadKeyboard := i == len(prev.ids)-1
			if markup != nil || hadKeyboard || i >= len(prev.texts) || prev.texts[i] != text {
				b.edit(ctx, chatID, id, text, markup)
			}
			next.ids = append(next.ids, id)
			continue
		}
		next.ids = append(next.ids, b.send(ctx, chatID, text, markup))
	}

	for _, id := range prev.ids[min(len(prev.ids), len(chunks)):] {
		if id == 0 {
			continue
		}
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, id)); err != nil {
			b.log.Warn(b.log.WithField(ctx, "error", err.Error()), "telegram.delete_failed")
		}
	}
	return next
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error(b.log.WithField(ctx, "chat_id", chatID), "telegram.send_failed", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error(b.log.WithField(ctx, "chat_id", chatID), "telegram.edit_failed", err)
	}
}

func (b *Bot) sendDocument(ctx context.Context, chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		b.log.Error(b.log.WithField(ctx, "chat_id", chatID), "telegram.document_failed", err)
	}
}

func (b *Bot) answer(ctx context.Context, queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.log.Warn(b.log.WithField(ctx, "error", err.Error()), "telegram.callback_answer_failed")
	}
}

// parseCommand splits "/plan@bot 1 2" into ("plan", ["1", "2"]).
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

// parseFormInput reads the seven form values in form order. No arguments
// means the form defaults.
func parseFormInput(args []string) (inventory.FormInput, error) {
	in := inventory.DefaultFormInput()
	if len(args) == 0 {
		return in, nil
	}
	targets := []*int{
		&in.SeasonLength,
		&in.AvgNightsPerUnit,
		&in.AvgNightsPerBooking,
		&in.TotalArea,
		&in.Units,
		&in.AvgUnitArea,
		&in.Cleaners,
	}
	if len(args) != len(targets) {
		return in, fmt.Errorf("expected %d values, got %d", len(targets), len(args))
	}
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return in, fmt.Errorf("value %d: %w", i+1, err)
		}
		*targets[i] = n
	}
	return in, nil
}

func parseSelect(data string) (int, int, bool) {
	parts := strings.Split(data, "|")
	if len(parts) != 3 {
		return 0, 0, false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	j, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return i, j, true
}

// clip is the last resort for text that cannot be split into blocks.
func clip(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLen {
		return text
	}
	return string(r[:maxMessageLen]) + "…"
}
