package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Dispatcher — реализация Notifier поверх asynq-клиента.
type Dispatcher struct {
	client *asynq.Client
}

// NewDispatcher создаёт клиент очереди по Redis URI.
func NewDispatcher(redisURL string) (*Dispatcher, error) {
	const op = "notify.dispatcher.NewDispatcher"

	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Dispatcher{client: asynq.NewClient(opt)}, nil
}

// ConfirmEmail ставит в очередь письмо подтверждения почты.
func (d *Dispatcher) ConfirmEmail(ctx context.Context, email, username, token string) error {
	const op = "notify.dispatcher.ConfirmEmail"

	if err := d.enqueue(ctx, TaskConfirmEmail, email, username, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PasswordReset ставит в очередь письмо сброса пароля.
func (d *Dispatcher) PasswordReset(ctx context.Context, email, username, token string) error {
	const op = "notify.dispatcher.PasswordReset"

	if err := d.enqueue(ctx, TaskPasswordReset, email, username, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType, email, username, token string) error {
	payload, err := json.Marshal(emailPayload{
		Email:    email,
		Username: username,
		Token:    token,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, payload)

	_, err = d.client.EnqueueContext(ctx, task,
		asynq.Queue(queueEmails),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)

	return err
}

// Close закрывает соединение клиента с Redis.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}

// Проверка на соответствие интерфейсу Notifier.
var _ Notifier = (*Dispatcher)(nil)
