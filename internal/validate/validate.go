// Package validate holds the input checks the presentation layer runs
// before it touches a store. The stores assume pre-validated input and
// never validate anything themselves.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"ai-chat-client/internal/domain"
)

const (
	maxTitleLen   = 50
	maxMessageLen = 1000
)

var (
	phoneRe = regexp.MustCompile(`^[0-9]{6,15}$`)
	otpRe   = regexp.MustCompile(`^[0-9]{6}$`)
	dialRe  = regexp.MustCompile(`^\+[0-9]{1,4}$`)
)

func Phone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("%w: phone number must be 6 to 15 digits", domain.ErrInvalidArgument)
	}
	return nil
}

func DialCode(code string) error {
	if !dialRe.MatchString(code) {
		return fmt.Errorf("%w: dial code must look like +91", domain.ErrInvalidArgument)
	}
	return nil
}

func OTP(code string) error {
	if !otpRe.MatchString(code) {
		return fmt.Errorf("%w: OTP must be exactly 6 digits", domain.ErrInvalidArgument)
	}
	return nil
}

// ChatroomTitle trims and bounds the title, returning the trimmed value
// the store should receive.
func ChatroomTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", fmt.Errorf("%w: chatroom title is required", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(t) > maxTitleLen {
		return "", fmt.Errorf("%w: title must be %d characters or less", domain.ErrInvalidArgument, maxTitleLen)
	}
	return t, nil
}

func MessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("%w: message cannot be empty", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return fmt.Errorf("%w: message is too long", domain.ErrInvalidArgument)
	}
	return nil
}

// Image accepts an empty value or a data URI.
func Image(data string) error {
	if data == "" {
		return nil
	}
	if !strings.HasPrefix(data, "data:image/") {
		return fmt.Errorf("%w: image must be a data URI", domain.ErrInvalidArgument)
	}
	return nil
}
