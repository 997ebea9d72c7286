// Package telegramtest provides an in-memory telegram.API for tests.
package telegramtest

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FakeAPI records every call. Unset hooks succeed: Send echoes a message with
// an increasing id, Request answers ok and GetUpdates returns nothing.
type FakeAPI struct {
	SendFunc       func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	RequestFunc    func(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesFunc func(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)

	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	polls    []tgbotapi.UpdateConfig
	nextID   int
}

func (f *FakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	f.sent = append(f.sent, c)
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	if f.SendFunc != nil {
		return f.SendFunc(c)
	}

	msg := tgbotapi.Message{MessageID: id, Chat: &tgbotapi.Chat{}}
	if cfg, ok := c.(tgbotapi.MessageConfig); ok {
		msg.Chat.ID = cfg.ChatID
		msg.Text = cfg.Text
	}
	return msg, nil
}

func (f *FakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, c)
	f.mu.Unlock()

	if f.RequestFunc != nil {
		return f.RequestFunc(c)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *FakeAPI) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.mu.Lock()
	f.polls = append(f.polls, config)
	f.mu.Unlock()

	if f.GetUpdatesFunc != nil {
		return f.GetUpdatesFunc(config)
	}
	return nil, nil
}

// Messages returns the sendMessage calls made so far.
func (f *FakeAPI) Messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

// InlineAnswers returns the answerInlineQuery calls made so far.
func (f *FakeAPI) InlineAnswers() []tgbotapi.InlineConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.InlineConfig
	for _, c := range f.requests {
		if answer, ok := c.(tgbotapi.InlineConfig); ok {
			out = append(out, answer)
		}
	}
	return out
}

// Polls returns the number of getUpdates calls made so far.
func (f *FakeAPI) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.polls)
}
