// Package discord forwards error logs to a Discord webhook.
package discord

import (
	"os"
	"sync"
	"time"

	"github.com/kz/discordrus"
	"github.com/sirupsen/logrus"
)

const webhookURLEnvName = "DISCORD_WEBHOOK_URL"

// Hook wraps a discordrus hook and optionally suppresses repeated messages.
type Hook struct {
	parent logrus.Hook
	limit  time.Duration

	mx         sync.Mutex
	timestamps map[string]time.Time
}

// Option configures a Hook.
type Option func(*Hook)

// WithLimit suppresses a message that was already sent less than limit ago.
func WithLimit(limit time.Duration) Option {
	return func(h *Hook) {
		h.limit = limit
		h.timestamps = make(map[string]time.Time)
	}
}

// NewHook returns a Hook posting error (and above) entries as tag.
func NewHook(tag, webHookURL string, opts ...Option) logrus.Hook {
	hook := &Hook{
		parent: discordrus.NewHook(webHookURL, logrus.ErrorLevel, &discordrus.Opts{
			Username:        tag,
			TimestampFormat: time.RFC3339,
			TimestampLocale: time.UTC,
		}),
	}
	for _, opt := range opts {
		opt(hook)
	}
	return hook
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return h.parent.Levels()
}

// Fire implements logrus.Hook.
func (h *Hook) Fire(entry *logrus.Entry) error {
	if !h.shouldFire(entry) {
		return nil
	}
	return h.parent.Fire(entry)
}

func (h *Hook) shouldFire(entry *logrus.Entry) bool {
	if h.limit == 0 || h.timestamps == nil {
		return true
	}

	h.mx.Lock()
	defer h.mx.Unlock()

	if last, ok := h.timestamps[entry.Message]; ok && entry.Time.Sub(last) < h.limit {
		return false
	}
	h.timestamps[entry.Message] = entry.Time
	return true
}

// GetWebhookURLFromEnv returns the webhook URL from the environment, if set.
func GetWebhookURLFromEnv() string {
	return os.Getenv(webhookURLEnvName)
}
