package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
	"github.com/wneessen/go-mail"
)

func NewEmailProvider(
	smtpHost, smtpUser, smtpPassword, smtpPort string) (*EmailProvider, error) {

	if smtpHost == "" || smtpUser == "" || smtpPassword == "" || smtpPort == "" {
		return nil, errors.New("email: SMTP host, user, and password must be provided")
	}

	smtpPortInt, err := strconv.Atoi(smtpPort)
	if err != nil {
		return nil, fmt.Errorf("email: invalid SMTP port: %w", err)
	}

	client, err := mail.NewClient(
		smtpHost,
		mail.WithPort(smtpPortInt),
		mail.WithUsername(smtpUser),
		mail.WithPassword(smtpPassword),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
	)
	if err != nil {
		return nil, fmt.Errorf("email: failed to create SMTP client: %w", err)
	}

	return &EmailProvider{client: client}, nil
}

// EmailProvider sends synchronously; callers run inside the background
// worker, which owns retries.
type EmailProvider struct {
	client *mail.Client
}

func (e *EmailProvider) SendEmail(ctx context.Context, email usecase.Email) error {
	msg, err := buildMsg(email)
	if err != nil {
		return err
	}
	return e.client.DialAndSendWithContext(ctx, msg)
}

func buildMsg(email usecase.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("email: invalid sender: %w", err)
	}
	if len(email.To) == 0 {
		return nil, errors.New("email: no recipients")
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("email: invalid recipient: %w", err)
	}
	if len(email.CC) > 0 {
		if err := msg.Cc(email.CC...); err != nil {
			return nil, fmt.Errorf("email: invalid cc: %w", err)
		}
	}
	if len(email.BCC) > 0 {
		if err := msg.Bcc(email.BCC...); err != nil {
			return nil, fmt.Errorf("email: invalid bcc: %w", err)
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.Body)

	for _, file := range email.Attachments {
		if err := msg.AttachReader(
			file.Name,
			bytes.NewReader(file.Content),
			mail.WithFileContentType(mail.ContentType(file.ContentType)),
		); err != nil {
			return nil, fmt.Errorf("email: failed to attach %s: %w", file.Name, err)
		}
	}
	return msg, nil
}
