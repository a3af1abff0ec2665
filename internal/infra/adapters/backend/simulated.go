package backend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/infra/logging"
	"ai-chat-client/internal/validate"
)

var (
	_ adapter.OTPGateway     = (*Simulated)(nil)
	_ adapter.ReplyGenerator = (*Simulated)(nil)
)

// Simulated mimics the latency and canned outcomes of a real backend with
// no I/O at all, so the whole client can run offline. It implements both
// backend ports: OTP send always succeeds, verification accepts any
// six-digit code, and replies come from a fixed template set with the
// original message echoed back.
type Simulated struct {
	sendDelay   time.Duration
	verifyDelay time.Duration
	replyMin    time.Duration
	replyJitter time.Duration

	mu  sync.Mutex
	rng *rand.Rand

	log *zerolog.Logger
}

var replyTemplates = []string{
	"That's an interesting question! Let me help you with that.",
	"I understand what you're asking. Here's my perspective on that topic.",
	"Great question! Based on the information you've provided, I think...",
	"I'd be happy to help you with that. Here's what I know about this subject.",
	"That's a thoughtful inquiry. Let me break this down for you.",
	"I can see why you're curious about this. Here's my analysis:",
	"Thank you for bringing this up. I have some insights that might be helpful.",
	"This is definitely worth exploring. From my understanding...",
}

// NewSimulated uses the production-like delays: 2s for OTP send, 1.5s for
// verification, 2-5s for a reply.
func NewSimulated(log *zerolog.Logger) *Simulated {
	return NewSimulatedWithDelays(log, 2*time.Second, 1500*time.Millisecond, 2*time.Second, 3*time.Second)
}

// NewSimulatedWithDelays is for tests and demos that cannot afford to wait.
func NewSimulatedWithDelays(log *zerolog.Logger, send, verify, replyMin, replyJitter time.Duration) *Simulated {
	return &Simulated{
		sendDelay:   send,
		verifyDelay: verify,
		replyMin:    replyMin,
		replyJitter: replyJitter,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         log,
	}
}

// SendOTP pretends to deliver a code. No code is actually issued; any
// six-digit input verifies later.
func (s *Simulated) SendOTP(ctx context.Context, phone, dialCode string) error {
	if err := sleep(ctx, s.sendDelay); err != nil {
		return err
	}
	s.log.Info().Str("phone", logging.Redact(dialCode+phone, false)).Msg("simulated otp sent")
	return nil
}

// VerifyOTP resolves true iff the code is exactly six decimal digits.
func (s *Simulated) VerifyOTP(ctx context.Context, code string) (bool, error) {
	if err := sleep(ctx, s.verifyDelay); err != nil {
		return false, err
	}
	return validate.OTP(code) == nil, nil
}

func (s *Simulated) GenerateReply(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	delay := s.replyMin
	if s.replyJitter > 0 {
		delay += time.Duration(s.rng.Int63n(int64(s.replyJitter)))
	}
	tmpl := replyTemplates[s.rng.Intn(len(replyTemplates))]
	s.mu.Unlock()

	if err := sleep(ctx, delay); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (This is a simulated AI response to: %q)", tmpl, message), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
