package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/josvita0323/devhost-2025-sub000/config"
)

// Mailer отправляет транзакционные письма. Реализуется EmailService,
// в тестах подменяется заглушкой.
type Mailer interface {
	SendRegistrationConfirmed(to, teamName, eventID string) error
}

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		c, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
		client = c
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка команды MAIL: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("ошибка команды RCPT: %w", err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи письма: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ошибка завершения письма: %w", err)
	}
	return client.Quit()
}

func (s *EmailService) SendRegistrationConfirmed(to, teamName, eventID string) error {
	if s.cfg.SMTPHost == "" {
		return nil // почта не настроена, молча пропускаем
	}
	subject := "Registration confirmed"
	body := fmt.Sprintf(
		`<h2>You're in!</h2>
<p>Payment received. Team <b>%s</b> is registered for <b>%s</b>.</p>
<p>See you at the event.</p>`,
		teamName, eventID)
	return s.SendEmail([]string{to}, subject, body)
}
