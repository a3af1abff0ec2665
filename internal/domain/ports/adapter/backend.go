package adapter

import "context"

// OTPGateway is the port for one-time-passcode delivery and verification.
// The simulated implementation accepts any six-digit code; real gateways
// verify a code they actually issued. The stores never call this port —
// the presentation layer awaits it and then mutates the session store.
type OTPGateway interface {
	SendOTP(ctx context.Context, phone, dialCode string) error
	VerifyOTP(ctx context.Context, code string) (bool, error)
}

// ReplyGenerator is the port for producing an assistant reply to a user
// message. Implementations may take arbitrary time; callers await the
// result outside any store lock and only then append it.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, message string) (string, error)
}
