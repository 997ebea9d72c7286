package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of tgbotapi.BotAPI the bot relies on. Tests substitute a
// fake implementation.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// NewClient authenticates against the Bot API. Every call made through the
// returned client is bounded by requestTimeout on top of the long-poll window.
func NewClient(token string, requestTimeout time.Duration, pollTimeout int) (*tgbotapi.BotAPI, error) {
	httpClient := &http.Client{
		Timeout: requestTimeout + time.Duration(pollTimeout)*time.Second,
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return api, nil
}

// --- Chat addressing ---

// ChatRef addresses a chat either by numeric id or by @channel username.
type ChatRef struct {
	ID       int64
	Username string
}

func ChatByID(id int64) ChatRef { return ChatRef{ID: id} }

func (r ChatRef) String() string {
	if r.Username != "" {
		return r.Username
	}
	return fmt.Sprintf("%d", r.ID)
}

// --- Message construction ---

// LinkKeyboard is a single row holding one URL button.
func LinkKeyboard(label, url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(label, url),
		),
	)
}

// HTMLMessage builds an HTML formatted message with a one-button keyboard.
func HTMLMessage(chat ChatRef, text, label, url string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if chat.Username != "" {
		msg = tgbotapi.NewMessageToChannel(chat.Username, text)
	} else {
		msg = tgbotapi.NewMessage(chat.ID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = LinkKeyboard(label, url)
	return msg
}

// Article builds an inline result article. When label is empty the article
// carries no keyboard.
func Article(id, title, description, text, parseMode, label, url string) tgbotapi.InlineQueryResultArticle {
	article := tgbotapi.NewInlineQueryResultArticle(id, title, text)
	article.Description = description
	article.InputMessageContent = tgbotapi.InputTextMessageContent{
		Text:      text,
		ParseMode: parseMode,
	}
	if label != "" {
		keyboard := LinkKeyboard(label, url)
		article.ReplyMarkup = &keyboard
	}
	return article
}

// AnswerInline answers an inline query with a single, uncached result.
func AnswerInline(queryID string, result tgbotapi.InlineQueryResultArticle) tgbotapi.InlineConfig {
	return tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       []interface{}{result},
		CacheTime:     0,
		IsPersonal:    true,
	}
}

// --- Errors ---

// SendError is the machine readable form of a failed Bot API call.
type SendError struct {
	Message     string `json:"message"`
	Code        any    `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// ErrCodeFatal marks failures that never reached the Bot API (network,
// timeouts, encoding).
const ErrCodeFatal = "EFATAL"

// DescribeError extracts the Bot API error code and description from err.
func DescribeError(err error) SendError {
	if err == nil {
		return SendError{}
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return SendError{
			Message:     fmt.Sprintf("%d: %s", apiErr.Code, apiErr.Message),
			Code:        apiErr.Code,
			Description: apiErr.Message,
		}
	}

	var apiErrValue tgbotapi.Error
	if errors.As(err, &apiErrValue) {
		return SendError{
			Message:     fmt.Sprintf("%d: %s", apiErrValue.Code, apiErrValue.Message),
			Code:        apiErrValue.Code,
			Description: apiErrValue.Message,
		}
	}

	return SendError{Message: err.Error(), Code: ErrCodeFatal}
}
