package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/sharkfunded/platform/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendAccountCredentials mails the trading account login data after a
// challenge has been provisioned. Callers treat failures as non-fatal.
func SendAccountCredentials(to, name string, accountSize float64, login int64, masterPassword, investorPassword, server string) error {
	subject := "Your trading account is ready"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>your %.0f account has been created.</p>"+
			"<ul>"+
			"<li>Login: %d</li>"+
			"<li>Master password: %s</li>"+
			"<li>Investor password: %s</li>"+
			"<li>Server: %s</li>"+
			"</ul>"+
			"<p>Good luck!</p>",
		name, accountSize, login, masterPassword, investorPassword, server,
	)
	return SendMail(to, subject, body)
}

// Mailer satisfies credential-mail interfaces over the package functions.
type Mailer struct{}

func (Mailer) SendAccountCredentials(to, name string, accountSize float64, login int64, masterPassword, investorPassword, server string) error {
	return SendAccountCredentials(to, name, accountSize, login, masterPassword, investorPassword, server)
}
