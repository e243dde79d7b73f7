package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

const sendAttempts = 3

type SMTPMailer struct {
	dialer *mail.Dialer
	sender string
}

func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &SMTPMailer{
		dialer: dialer,
		sender: sender,
	}
}

// Send renders the subject, plainBody and htmlBody blocks of templateFile and
// delivers the result, retrying a few times on dial or send failures.
func (m *SMTPMailer) Send(recipient, templateFile string, data any) error {
	msg, err := m.render(recipient, templateFile, data)
	if err != nil {
		return err
	}

	for i := 1; i <= sendAttempts; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}

		if i < sendAttempts {
			time.Sleep(500 * time.Millisecond)
		}
	}

	return err
}

func (m *SMTPMailer) render(recipient, templateFile string, data any) (*mail.Message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	subject := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return nil, err
	}

	plainBody := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(plainBody, "plainBody", data)
	if err != nil {
		return nil, err
	}

	htmlTmpl, err := htmltemplate.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	htmlBody := new(bytes.Buffer)
	err = htmlTmpl.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	return msg, nil
}
