package telegram

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SendError
	}{
		{
			name: "api error",
			err:  &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"},
			want: SendError{Message: "400: Bad Request: chat not found", Code: 400, Description: "Bad Request: chat not found"},
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("send: %w", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}),
			want: SendError{Message: "403: Forbidden: bot was blocked by the user", Code: 403, Description: "Forbidden: bot was blocked by the user"},
		},
		{
			name: "network error",
			err:  errors.New("dial tcp: i/o timeout"),
			want: SendError{Message: "dial tcp: i/o timeout", Code: ErrCodeFatal},
		},
		{
			name: "nil",
			err:  nil,
			want: SendError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DescribeError(tt.err)); diff != "" {
				t.Errorf("DescribeError() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTMLMessage(t *testing.T) {
	msg := HTMLMessage(ChatByID(42), "<b>hi</b>", "🚀 Launch App", "https://app.example")

	if msg.ChatID != 42 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("unexpected message header: chat=%d mode=%q", msg.ChatID, msg.ParseMode)
	}
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("ReplyMarkup is %T, want InlineKeyboardMarkup", msg.ReplyMarkup)
	}
	if len(keyboard.InlineKeyboard) != 1 || len(keyboard.InlineKeyboard[0]) != 1 {
		t.Fatalf("keyboard = %+v, want exactly one button", keyboard.InlineKeyboard)
	}
	button := keyboard.InlineKeyboard[0][0]
	if button.Text != "🚀 Launch App" || button.URL == nil || *button.URL != "https://app.example" {
		t.Errorf("button = %+v", button)
	}

	channel := HTMLMessage(ChatRef{Username: "@memeindex"}, "hi", "x", "https://x")
	if channel.ChannelUsername != "@memeindex" || channel.ChatID != 0 {
		t.Errorf("channel message addressed to %d/%q", channel.ChatID, channel.ChannelUsername)
	}
}

func TestArticle(t *testing.T) {
	article := Article("id-1", "Error", "desc", "body", "", "", "")
	if article.ReplyMarkup != nil {
		t.Error("article without label has a keyboard")
	}
	content, ok := article.InputMessageContent.(tgbotapi.InputTextMessageContent)
	if !ok || content.Text != "body" {
		t.Errorf("InputMessageContent = %#v", article.InputMessageContent)
	}

	withButton := Article("id-2", "t", "d", "b", tgbotapi.ModeHTML, "🎁 Join MemeIndex", "https://t.me/MemeBot?start=abc")
	if withButton.ReplyMarkup == nil || *withButton.ReplyMarkup.InlineKeyboard[0][0].URL != "https://t.me/MemeBot?start=abc" {
		t.Errorf("ReplyMarkup = %+v", withButton.ReplyMarkup)
	}
}
