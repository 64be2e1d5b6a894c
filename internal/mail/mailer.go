// mail отправляет транзакционные письма (подтверждение почты, сброс пароля)
// по SMTP. Ссылки в письмах собираются из базового адреса сервиса.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/pribylovaa/go-contacts-api/internal/config"
	"github.com/pribylovaa/go-contacts-api/internal/notify"
)

const confirmEmailTmpl = `<html><body>
<p>Привет, {{.Username}}!</p>
<p>Для подтверждения адреса перейдите по ссылке:
<a href="{{.Link}}">подтвердить почту</a>.</p>
<p>Ссылка действует ограниченное время. Если вы не регистрировались — просто проигнорируйте письмо.</p>
</body></html>`

const passwordResetTmpl = `<html><body>
<p>Привет, {{.Username}}!</p>
<p>Мы получили запрос на сброс пароля. Ваш код сброса:</p>
<p><code>{{.Token}}</code></p>
<p>Если вы не запрашивали сброс — проигнорируйте письмо, пароль останется прежним.</p>
</body></html>`

// Client — SMTP-клиент поверх go-mail с собранными шаблонами писем.
type Client struct {
	smtp    *gomail.Client
	from    string
	baseURL string
	confirm *template.Template
	reset   *template.Template
}

// New создаёт SMTP-клиент по конфигурации.
// Аутентификация включается только при заданном username.
func New(cfg config.EmailConfig) (*Client, error) {
	const op = "mail.New"

	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	smtp, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	confirm, err := template.New("confirm_email").Parse(confirmEmailTmpl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reset, err := template.New("password_reset").Parse(passwordResetTmpl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		smtp:    smtp,
		from:    cfg.From,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		confirm: confirm,
		reset:   reset,
	}, nil
}

// SendConfirmEmail отправляет письмо со ссылкой подтверждения почты.
func (c *Client) SendConfirmEmail(ctx context.Context, to, username, token string) error {
	const op = "mail.SendConfirmEmail"

	var body bytes.Buffer
	err := c.confirm.Execute(&body, struct {
		Username string
		Link     string
	}{
		Username: username,
		Link:     c.baseURL + "/auth/confirmed_email/" + token,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.send(ctx, to, "Подтверждение адреса электронной почты", body.String()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SendPasswordReset отправляет письмо с кодом сброса пароля.
func (c *Client) SendPasswordReset(ctx context.Context, to, username, token string) error {
	const op = "mail.SendPasswordReset"

	var body bytes.Buffer
	err := c.reset.Execute(&body, struct {
		Username string
		Token    string
	}{
		Username: username,
		Token:    token,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.send(ctx, to, "Сброс пароля", body.String()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	return c.smtp.DialAndSendWithContext(ctx, msg)
}

// Проверка на соответствие интерфейсу Mailer.
var _ notify.Mailer = (*Client)(nil)
