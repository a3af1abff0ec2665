package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/infra/logging"
)

var _ adapter.OTPGateway = (*Telegram)(nil)

// Telegram delivers real one-time codes through a Telegram bot instead of
// SMS. Unlike the simulated gateway it issues an actual code and only
// accepts that code back, within a short expiry window. Codes are consumed
// on first verification attempt.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	ttl    time.Duration

	mu    sync.Mutex
	codes map[string]issuedCode // keyed by code value
	log   *zerolog.Logger
}

type issuedCode struct {
	phone   string
	expires time.Time
}

func NewTelegram(token string, chatID int64, log *zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		ttl:    5 * time.Minute,
		codes:  make(map[string]issuedCode),
		log:    log,
	}, nil
}

func (t *Telegram) SendOTP(ctx context.Context, phone, dialCode string) error {
	code, err := newCode()
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.purgeExpiredLocked()
	t.codes[code] = issuedCode{phone: phone, expires: time.Now().Add(t.ttl)}
	t.mu.Unlock()

	text := fmt.Sprintf("Your verification code for %s%s is %s", dialCode, phone, code)
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.mu.Lock()
		delete(t.codes, code)
		t.mu.Unlock()
		return fmt.Errorf("telegram send: %w", err)
	}
	t.log.Info().Str("phone", logging.Redact(dialCode+phone, false)).Msg("otp delivered via telegram")
	return nil
}

func (t *Telegram) VerifyOTP(ctx context.Context, code string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.codes[code]
	if !ok {
		return false, nil
	}
	delete(t.codes, code)
	return time.Now().Before(entry.expires), nil
}

func (t *Telegram) purgeExpiredLocked() {
	now := time.Now()
	for code, entry := range t.codes {
		if now.After(entry.expires) {
			delete(t.codes, code)
		}
	}
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("otp entropy: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
