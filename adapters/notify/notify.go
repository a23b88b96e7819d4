// Package notify delivers one-time reset codes over email and SMS.
package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/wneessen/go-mail"

	"github.com/lumenapp/server/core"
)

// Config holds delivery credentials. Either channel may be left
// unconfigured; sends on that channel then fail with ErrDeliveryFailed.
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	TwilioAccountSID string
	TwilioAuthToken  string
	SMSFrom          string
}

// Sender implements core.Notifier over SMTP and Twilio.
type Sender struct {
	mail    *mail.Client
	from    string
	sms     *twilio.RestClient
	smsFrom string
}

var _ core.Notifier = (*Sender)(nil)

func NewSender(cfg Config) (*Sender, error) {
	s := &Sender{from: cfg.EmailFrom, smsFrom: cfg.SMSFrom}

	if cfg.SMTPHost != "" {
		client, err := mail.NewClient(cfg.SMTPHost,
			mail.WithPort(cfg.SMTPPort),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create mail client: %w", err)
		}
		s.mail = client
	}

	if cfg.TwilioAccountSID != "" {
		s.sms = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}

	return s, nil
}

func (s *Sender) SendEmailCode(ctx context.Context, address, code string) error {
	if s.mail == nil {
		return fmt.Errorf("%w: email channel not configured", core.ErrDeliveryFailed)
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	if err := msg.To(address); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	msg.Subject("Your password reset code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your password reset code is %s. It expires in 10 minutes.\n\nIf you did not request this, you can ignore this message.", code))

	if err := s.mail.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	return nil
}

func (s *Sender) SendSMSCode(ctx context.Context, number, code string) error {
	if s.sms == nil {
		return fmt.Errorf("%w: sms channel not configured", core.ErrDeliveryFailed)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(number)
	params.SetFrom(s.smsFrom)
	params.SetBody(fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code))

	if _, err := s.sms.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	return nil
}
