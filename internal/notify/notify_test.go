package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	calls []string
	ok    bool
}

func (r *recordingNotifier) Notify(_ context.Context, recipient, subject, _ string) bool {
	r.calls = append(r.calls, recipient+"/"+subject)
	return r.ok
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("Maid Services", "no-reply@maidbook.local", "ravi@example.com",
		"Booking Confirmed", "Your booking is confirmed.")

	assert.True(t, strings.HasPrefix(msg, "From: Maid Services <no-reply@maidbook.local>\r\n"))
	assert.Contains(t, msg, "To: ravi@example.com\r\n")
	assert.Contains(t, msg, "Subject: Booking Confirmed\r\n")
	assert.Contains(t, msg, "\r\n\r\nYour booking is confirmed.\r\n")
}

func TestSMTPNotifier_RefusesWithoutHostOrRecipient(t *testing.T) {
	logger := zerolog.New(io.Discard)

	unconfigured := NewSMTP(SMTPConfig{}, &logger)
	assert.False(t, unconfigured.Notify(context.Background(), "ravi@example.com", "s", "b"))

	configured := NewSMTP(SMTPConfig{Host: "mail.example.com"}, &logger)
	assert.False(t, configured.Notify(context.Background(), "", "s", "b"))
}

type fakeTelegram struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotifier(t *testing.T) {
	logger := zerolog.New(io.Discard)

	t.Run("delivers to numeric chat id", func(t *testing.T) {
		fake := &fakeTelegram{}
		n := NewTelegramWithSender(fake, &logger)
		assert.True(t, n.Notify(context.Background(), "12345", "Booking Confirmed", "details"))
		assert.Len(t, fake.sent, 1)

		msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
		assert.True(t, ok)
		assert.Equal(t, int64(12345), msg.ChatID)
		assert.Contains(t, msg.Text, "Booking Confirmed")
	})

	t.Run("rejects non-numeric recipient", func(t *testing.T) {
		fake := &fakeTelegram{}
		n := NewTelegramWithSender(fake, &logger)
		assert.False(t, n.Notify(context.Background(), "ravi@example.com", "s", "b"))
		assert.Empty(t, fake.sent)
	})

	t.Run("reports send failure", func(t *testing.T) {
		fake := &fakeTelegram{err: errors.New("blocked")}
		n := NewTelegramWithSender(fake, &logger)
		assert.False(t, n.Notify(context.Background(), "12345", "s", "b"))
	})
}

func TestRateLimited(t *testing.T) {
	t.Run("passes through", func(t *testing.T) {
		inner := &recordingNotifier{ok: true}
		limited := NewRateLimited(inner, 100, 10)
		assert.True(t, limited.Notify(context.Background(), "a", "s", "b"))
		assert.Len(t, inner.calls, 1)
	})

	t.Run("cancelled wait fails delivery", func(t *testing.T) {
		inner := &recordingNotifier{ok: true}
		// Bucket drained: burst 1, then an immediate second call must wait.
		limited := NewRateLimited(inner, 0.001, 1)
		assert.True(t, limited.Notify(context.Background(), "a", "s", "b"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.False(t, limited.Notify(ctx, "a", "s", "b"))
		assert.Len(t, inner.calls, 1)
	})
}
