// Package mailer sends transactional emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Lang string

const (
	LangEN Lang = "en"
	LangFR Lang = "fr"
)

func (l Lang) String() string { return string(l) }

// OrDefault falls back to English for empty or unknown languages instead
// of failing the whole mail.
func (l Lang) OrDefault() Lang {
	switch l {
	case LangEN, LangFR:
		return l
	}

	return LangEN
}

type Config struct {
	Addr     string `mapstructure:"addr" json:"addr"`
	Sender   string `mapstructure:"sender" json:"sender"`
	Password string `mapstructure:"password" json:"-"`
	Domain   string `mapstructure:"domain" json:"domain"`
	// Sandbox disables SMTP authentication, for local catch-all servers.
	Sandbox bool `mapstructure:"sandbox" json:"sandbox"`
}

type SMTPMailer struct {
	cfg       Config
	templates *Templates
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Addr == "" {
		panic("mailer.SMTPMailer: empty addr")
	}
	if cfg.Sender == "" {
		panic("mailer.SMTPMailer: empty sender")
	}

	return &SMTPMailer{cfg: cfg, templates: NewTemplates()}
}

// SendShortCodeMail renders the template for the kind and language, then
// delivers it as a single HTML mail.
func (m *SMTPMailer) SendShortCodeMail(ctx context.Context, to string, kind Kind, lang Lang, data LinkData) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mailer.SMTPMailer.SendShortCodeMail: %w", err)
	}

	lang = lang.OrDefault()

	body, err := m.templates.Render(kind, lang, data)
	if err != nil {
		return fmt.Errorf("mailer.SMTPMailer.SendShortCodeMail: %w", err)
	}

	message := m.compose(to, Subject(kind, lang), body)

	var auth smtp.Auth
	if !m.cfg.Sandbox {
		auth = smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Domain)
	}

	if err = smtp.SendMail(m.cfg.Addr, auth, m.cfg.Sender, []string{to}, message); err != nil {
		return fmt.Errorf("mailer.SMTPMailer.SendShortCodeMail: %w", err)
	}

	return nil
}

func (m *SMTPMailer) compose(to, subject, body string) []byte {
	builder := new(strings.Builder)

	fmt.Fprintf(builder, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(builder, "To: %s\r\n", to)
	fmt.Fprintf(builder, "Subject: %s\r\n", subject)
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(body)

	return []byte(builder.String())
}
