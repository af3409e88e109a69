package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// CodeSender delivers a verification code to a phone number.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
}

// LogCodeSender writes verification codes to the log instead of sending them.
// The code is included only when exposeCode is set, which main enables in development.
type LogCodeSender struct {
	logger     *zerolog.Logger
	exposeCode bool
}

func NewLogCodeSender(logger *zerolog.Logger, exposeCode bool) *LogCodeSender {
	return &LogCodeSender{logger: logger, exposeCode: exposeCode}
}

func (s *LogCodeSender) SendVerificationCode(_ context.Context, phone, code string) error {
	event := s.logger.Info().Str("phone", phone)
	if s.exposeCode {
		event = event.Str("code", code)
	}
	event.Msg("verification code issued")

	return nil
}
