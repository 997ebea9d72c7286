package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"memeindex-bot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// ErrTooManyReconnects is returned by Supervisor.Run once polling failed
// MaxAttempts times in a row.
var ErrTooManyReconnects = errors.New("too many consecutive polling failures")

var allowedUpdates = []string{"message", "inline_query"}

// Dispatcher handles a single update.
type Dispatcher interface {
	Dispatch(ctx context.Context, update tgbotapi.Update) Result
}

type SupervisorOptions struct {
	MaxAttempts int
	Delay       time.Duration
	PollTimeout int
}

// Supervisor long-polls Telegram and owns the reconnect counter: it is
// incremented on every failed poll, reset by the next successful one, and
// checked against MaxAttempts.
type Supervisor struct {
	api        telegram.API
	dispatcher Dispatcher
	opts       SupervisorOptions
	logger     *logrus.Entry

	attempts atomic.Int64
	offset   int
}

func NewSupervisor(api telegram.API, dispatcher Dispatcher, opts SupervisorOptions, logger *logrus.Entry) *Supervisor {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Delay <= 0 {
		opts.Delay = 5 * time.Second
	}
	return &Supervisor{
		api:        api,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger,
	}
}

// Attempts returns the current number of consecutive polling failures.
func (s *Supervisor) Attempts() int {
	return int(s.attempts.Load())
}

// Run polls until ctx is cancelled (returning nil) or the reconnect cap is
// reached (returning ErrTooManyReconnects). Every update is handled on its own
// goroutine; Run waits for in-flight handlers before returning.
func (s *Supervisor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	handlerCtx := context.WithoutCancel(ctx)

	s.logger.Info("polling started")
	for {
		if ctx.Err() != nil {
			s.logger.Info("polling stopped")
			return nil
		}

		cfg := tgbotapi.NewUpdate(s.offset)
		cfg.Timeout = s.opts.PollTimeout
		cfg.AllowedUpdates = allowedUpdates

		updates, err := s.api.GetUpdates(cfg)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("polling stopped")
				return nil
			}

			n := s.attempts.Add(1)
			entry := s.logger.WithError(err).WithFields(logrus.Fields{
				"attempt":      n,
				"max_attempts": s.opts.MaxAttempts,
			})
			if n >= int64(s.opts.MaxAttempts) {
				entry.Error("polling failed, giving up")
				return fmt.Errorf("%w after %d attempts: %w", ErrTooManyReconnects, n, err)
			}
			entry.Warnf("polling failed, reconnecting in %s", s.opts.Delay)

			if !s.wait(ctx) {
				s.logger.Info("polling stopped")
				return nil
			}
			continue
		}

		if prev := s.attempts.Swap(0); prev > 0 {
			s.logger.WithField("failed_attempts", prev).Info("polling reconnected")
		}

		for _, update := range updates {
			if update.UpdateID < s.offset {
				continue
			}
			s.offset = update.UpdateID + 1

			wg.Add(1)
			go func(update tgbotapi.Update) {
				defer wg.Done()
				s.dispatcher.Dispatch(handlerCtx, update)
			}(update)
		}
	}
}

func (s *Supervisor) wait(ctx context.Context) bool {
	timer := time.NewTimer(s.opts.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
