package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pribylovaa/go-contacts-api/internal/pkg/redact"
)

// Worker обрабатывает почтовые задачи из очереди и доставляет письма
// через Mailer. Запускается в том же процессе, что и HTTP-сервер.
type Worker struct {
	server *asynq.Server
	mailer Mailer
	log    *slog.Logger
}

// NewWorker создаёт asynq-сервер, читающий очередь писем.
func NewWorker(redisURL string, mailer Mailer, log *slog.Logger) (*Worker, error) {
	const op = "notify.worker.NewWorker"

	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if log == nil {
		log = slog.Default()
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queueEmails: 1,
		},
		Logger: slogAdapter{log: log},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("email_task_failed",
				slog.String("task", task.Type()),
				slog.String("err", err.Error()),
			)
		}),
	})

	return &Worker{
		server: server,
		mailer: mailer,
		log:    log,
	}, nil
}

// Start запускает обработку очереди (неблокирующе).
func (w *Worker) Start() error {
	const op = "notify.worker.Start"

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskConfirmEmail, w.handleConfirmEmail)
	mux.HandleFunc(TaskPasswordReset, w.handlePasswordReset)

	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Shutdown гасит воркер, дожидаясь активных задач.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleConfirmEmail(ctx context.Context, task *asynq.Task) error {
	const op = "notify.worker.handleConfirmEmail"

	var p emailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		// Некорректная полезная нагрузка не станет валидной после ретраев.
		return fmt.Errorf("%s: %w: %v", op, asynq.SkipRetry, err)
	}

	if err := w.mailer.SendConfirmEmail(ctx, p.Email, p.Username, p.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info("confirm_email_sent",
		slog.String("email", redact.Email(p.Email)),
	)

	return nil
}

func (w *Worker) handlePasswordReset(ctx context.Context, task *asynq.Task) error {
	const op = "notify.worker.handlePasswordReset"

	var p emailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("%s: %w: %v", op, asynq.SkipRetry, err)
	}

	if err := w.mailer.SendPasswordReset(ctx, p.Email, p.Username, p.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info("password_reset_sent",
		slog.String("email", redact.Email(p.Email)),
	)

	return nil
}

// slogAdapter адаптирует slog к логгеру asynq.
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Debug(args ...interface{}) { a.log.Debug(fmt.Sprint(args...)) }
func (a slogAdapter) Info(args ...interface{})  { a.log.Info(fmt.Sprint(args...)) }
func (a slogAdapter) Warn(args ...interface{})  { a.log.Warn(fmt.Sprint(args...)) }
func (a slogAdapter) Error(args ...interface{}) { a.log.Error(fmt.Sprint(args...)) }
func (a slogAdapter) Fatal(args ...interface{}) { a.log.Error(fmt.Sprint(args...)) }
