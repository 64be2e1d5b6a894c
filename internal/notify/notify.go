// notify реализует фоновую отправку писем через очередь задач asynq (Redis).
//
// Путь запроса только кладёт задачу в очередь (Dispatcher); доставку выполняет
// Worker в том же процессе. Ошибка постановки в очередь возвращается вызывающему
// коду, который её логирует и не проваливает исходный запрос.
package notify

import "context"

// Типы задач в очереди писем.
const (
	TaskConfirmEmail  = "email:confirm"
	TaskPasswordReset = "email:password_reset"
)

// queueEmails — выделенная очередь для почтовых задач.
const queueEmails = "emails"

// emailPayload — полезная нагрузка почтовой задачи.
type emailPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Notifier ставит почтовые уведомления в очередь.
type Notifier interface {
	// ConfirmEmail отправляет письмо со ссылкой подтверждения почты.
	ConfirmEmail(ctx context.Context, email, username, token string) error
	// PasswordReset отправляет письмо с токеном сброса пароля.
	PasswordReset(ctx context.Context, email, username, token string) error
}

// Mailer доставляет письма по SMTP. Используется воркером очереди.
type Mailer interface {
	SendConfirmEmail(ctx context.Context, to, username, token string) error
	SendPasswordReset(ctx context.Context, to, username, token string) error
}
