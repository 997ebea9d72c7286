// Package bot routes Telegram updates to the MemeIndex welcome, nudge and
// invitation replies, and supervises the long-polling loop feeding them.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memeindex-bot/internal/models"
	"memeindex-bot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrBotUsernameMissing is returned by features that build t.me links.
var ErrBotUsernameMissing = errors.New("bot username not configured")

// ReferralVerifier confirms a referral code with the backend.
type ReferralVerifier interface {
	Verify(ctx context.Context, code string) (string, error)
}

type RouterOptions struct {
	MiniAppURL     string
	BotUsername    string
	RequestTimeout time.Duration
}

type Router struct {
	api      telegram.API
	verifier ReferralVerifier
	recorder Recorder
	opts     RouterOptions
	logger   *logrus.Entry
	newID    func() string
}

// NewRouter builds a router. verifier and recorder may be nil.
func NewRouter(api telegram.API, verifier ReferralVerifier, recorder Recorder, opts RouterOptions, logger *logrus.Entry) *Router {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Router{
		api:      api,
		verifier: verifier,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

func (r *Router) BotUsername() string { return r.opts.BotUsername }

// --- Results ---

type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeHandled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result reports how a single update was handled.
type Result struct {
	Handler string
	Outcome Outcome
	Sent    int
	Err     error
}

func skipped(handler string) Result { return Result{Handler: handler, Outcome: OutcomeSkipped} }

func finished(handler string, sent int, err error) Result {
	if err != nil {
		return Result{Handler: handler, Outcome: OutcomeFailed, Sent: sent, Err: err}
	}
	return Result{Handler: handler, Outcome: OutcomeHandled, Sent: sent}
}

// --- Dispatch ---

// Dispatch routes update and logs the result. It never panics: a failing
// handler is reported and the caller moves on to the next update.
func (r *Router) Dispatch(ctx context.Context, update tgbotapi.Update) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Handler: res.Handler, Outcome: OutcomeFailed, Err: fmt.Errorf("panic: %v", p)}
		}
		r.report(update, res)
	}()

	return r.Route(ctx, update)
}

func (r *Router) report(update tgbotapi.Update, res Result) {
	entry := r.logger.WithFields(logrus.Fields{
		"update_id": update.UpdateID,
		"handler":   res.Handler,
		"outcome":   res.Outcome.String(),
		"sent":      res.Sent,
	})

	switch res.Outcome {
	case OutcomeFailed:
		entry.WithError(res.Err).Error("update handling failed")
	case OutcomeHandled:
		entry.Info("update handled")
	default:
		entry.Debug("update skipped")
	}
}

// Route picks the handler for update and runs it.
func (r *Router) Route(ctx context.Context, update tgbotapi.Update) Result {
	switch {
	case update.InlineQuery != nil:
		return r.handleInlineQuery(update.InlineQuery)
	case update.Message != nil:
		return r.handleMessage(ctx, update.Message)
	default:
		return skipped("none")
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) Result {
	if msg.Chat == nil {
		return skipped("message")
	}

	if len(msg.NewChatMembers) > 0 {
		return r.handleNewMembers(msg)
	}

	if name, args, ok := parseCommand(msg.Text); ok {
		if name == "start" {
			return r.handleStart(ctx, msg, args)
		}
		return skipped("command")
	}

	return r.handleNudge(msg)
}

// parseCommand splits "/name@bot arg..." into name and arguments.
func parseCommand(text string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil, true
	}
	name = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), fields[1:], true
}

// startParameter keeps the leading run of characters Telegram allows in a
// deep-link start parameter (A-Z, a-z, 0-9, _ and -).
func startParameter(arg string) string {
	end := strings.IndexFunc(arg, func(c rune) bool {
		return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-')
	})
	if end < 0 {
		return arg
	}
	return arg[:end]
}

// --- Handlers ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message, args []string) Result {
	var code string
	if len(args) > 0 {
		if param := startParameter(args[0]); param != "" {
			code = r.resolveReferral(ctx, param)
		}
	}

	firstName := "there"
	if msg.From != nil && msg.From.FirstName != "" {
		firstName = msg.From.FirstName
	}

	err := r.sendWelcome(telegram.ChatByID(msg.Chat.ID), firstName, code)
	if err != nil {
		return finished("start", 0, err)
	}
	return finished("start", 1, nil)
}

// resolveReferral returns the code to use for a /start argument. Without a
// backend the argument is accepted as is; with one, any verification
// failure degrades to no code.
func (r *Router) resolveReferral(ctx context.Context, code string) string {
	if r.verifier == nil {
		return code
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	verified, err := r.verifier.Verify(ctx, code)
	if err != nil {
		r.logger.WithError(err).WithField("referral_code", code).Warn("referral verification failed, continuing without code")
		return ""
	}
	return verified
}

func (r *Router) handleNewMembers(msg *tgbotapi.Message) Result {
	var (
		sent int
		errs []error
	)
	for _, member := range msg.NewChatMembers {
		if member.IsBot {
			continue
		}
		if err := r.sendWelcome(telegram.ChatByID(msg.Chat.ID), member.FirstName, ""); err != nil {
			errs = append(errs, fmt.Errorf("welcome %d: %w", member.ID, err))
			continue
		}
		sent++
	}
	if sent == 0 && len(errs) == 0 {
		return skipped("new_members")
	}
	return finished("new_members", sent, errors.Join(errs...))
}

func (r *Router) handleNudge(msg *tgbotapi.Message) Result {
	reply := telegram.HTMLMessage(telegram.ChatByID(msg.Chat.ID), NudgeText, LaunchAppLabel, r.opts.MiniAppURL)
	if _, err := r.send(reply, models.KindNudge, ""); err != nil {
		return finished("message", 0, err)
	}
	return finished("message", 1, nil)
}

func (r *Router) handleInlineQuery(query *tgbotapi.InlineQuery) Result {
	code := strings.TrimSpace(query.Query)
	if code == "" {
		article := telegram.Article(r.newID(), ErrorTitle, MissingCodeDescription, MissingCodeText, "", "", "")
		if err := r.answer(query.ID, article, ""); err != nil {
			return finished("inline_query", 0, err)
		}
		return finished("inline_query", 1, nil)
	}

	err := r.answerInvitation(query.ID, code)
	if err == nil {
		return finished("inline_query", 1, nil)
	}

	fallback := telegram.Article(r.newID(), ErrorTitle, FailedDescription, FailedText, "", "", "")
	if ferr := r.answer(query.ID, fallback, code); ferr != nil {
		return finished("inline_query", 0, errors.Join(err, fmt.Errorf("fallback answer: %w", ferr)))
	}
	return finished("inline_query", 1, err)
}

func (r *Router) answerInvitation(queryID, code string) error {
	if r.opts.BotUsername == "" {
		return ErrBotUsernameMissing
	}
	article := telegram.Article(r.newID(), InvitationTitle, InvitationDescription, InvitationText,
		tgbotapi.ModeHTML, JoinLabel, InviteURL(r.opts.BotUsername, code))
	return r.answer(queryID, article, code)
}

// SendInvitation sends the shareable invitation for code to chat.
func (r *Router) SendInvitation(chat telegram.ChatRef, code string) (tgbotapi.Message, error) {
	if r.opts.BotUsername == "" {
		return tgbotapi.Message{}, ErrBotUsernameMissing
	}
	msg := telegram.HTMLMessage(chat, InvitationText, JoinLabel, InviteURL(r.opts.BotUsername, code))
	return r.send(msg, models.KindInvitation, code)
}

func (r *Router) sendWelcome(chat telegram.ChatRef, firstName, code string) error {
	msg := telegram.HTMLMessage(chat, WelcomeText(firstName, code != ""), LaunchAppLabel, AppURL(r.opts.MiniAppURL, code))
	_, err := r.send(msg, models.KindWelcome, code)
	return err
}

// --- Transport ---

func (r *Router) send(msg tgbotapi.MessageConfig, kind, code string) (tgbotapi.Message, error) {
	chat := telegram.ChatRef{ID: msg.ChatID, Username: msg.ChannelUsername}
	delivery := models.Delivery{Chat: chat.String(), Kind: kind, ReferralCode: code}

	sent, err := r.api.Send(msg)
	if err != nil {
		delivery.Status = models.StatusFailed
		delivery.Error = err.Error()
		r.recorder.RecordDelivery(delivery)
		return sent, fmt.Errorf("send %s to %s: %w", kind, chat, err)
	}

	delivery.Status = models.StatusSent
	delivery.MessageID = sent.MessageID
	r.recorder.RecordDelivery(delivery)
	return sent, nil
}

func (r *Router) answer(queryID string, article tgbotapi.InlineQueryResultArticle, code string) error {
	delivery := models.Delivery{Kind: models.KindInline, ReferralCode: code, Status: models.StatusSent}

	_, err := r.api.Request(telegram.AnswerInline(queryID, article))
	if err != nil {
		delivery.Status = models.StatusFailed
		delivery.Error = err.Error()
		r.recorder.RecordDelivery(delivery)
		return fmt.Errorf("answer inline query %s: %w", queryID, err)
	}

	r.recorder.RecordDelivery(delivery)
	return nil
}
