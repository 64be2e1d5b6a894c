package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contacts-api/mocks"
)

// newWorkerWithMock — воркер без asynq-сервера: обработчики задач
// вызываются напрямую, очередь для них прозрачна.
func newWorkerWithMock(t *testing.T) (*Worker, *mocks.MockMailer, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mailer := mocks.NewMockMailer(ctrl)

	w := &Worker{
		mailer: mailer,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return w, mailer, ctrl
}

func mustPayload(t *testing.T, email, username, token string) []byte {
	t.Helper()

	b, err := json.Marshal(emailPayload{Email: email, Username: username, Token: token})
	require.NoError(t, err)
	return b
}

func TestHandleConfirmEmail_OK(t *testing.T) {
	t.Parallel()

	w, mailer, ctrl := newWorkerWithMock(t)
	defer ctrl.Finish()

	mailer.EXPECT().
		SendConfirmEmail(gomock.Any(), "user@example.com", "alice", "verify-token").
		Return(nil)

	task := asynq.NewTask(TaskConfirmEmail, mustPayload(t, "user@example.com", "alice", "verify-token"))
	require.NoError(t, w.handleConfirmEmail(context.Background(), task))
}

func TestHandlePasswordReset_OK(t *testing.T) {
	t.Parallel()

	w, mailer, ctrl := newWorkerWithMock(t)
	defer ctrl.Finish()

	mailer.EXPECT().
		SendPasswordReset(gomock.Any(), "user@example.com", "alice", "reset-token").
		Return(nil)

	task := asynq.NewTask(TaskPasswordReset, mustPayload(t, "user@example.com", "alice", "reset-token"))
	require.NoError(t, w.handlePasswordReset(context.Background(), task))
}

// TestHandle_BadPayload — битая полезная нагрузка не ретраится:
// ошибка помечена asynq.SkipRetry, почтовик не вызывается.
func TestHandle_BadPayload(t *testing.T) {
	t.Parallel()

	w, _, ctrl := newWorkerWithMock(t)
	defer ctrl.Finish()

	task := asynq.NewTask(TaskConfirmEmail, []byte(`{broken`))
	err := w.handleConfirmEmail(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)

	task = asynq.NewTask(TaskPasswordReset, []byte(`{broken`))
	err = w.handlePasswordReset(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

// TestHandle_MailerFailure — отказ SMTP ретраится: ошибка возвращается
// без SkipRetry, asynq повторит задачу.
func TestHandle_MailerFailure(t *testing.T) {
	t.Parallel()

	w, mailer, ctrl := newWorkerWithMock(t)
	defer ctrl.Finish()

	smtpErr := errors.New("smtp: connection refused")
	mailer.EXPECT().
		SendConfirmEmail(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(smtpErr)

	task := asynq.NewTask(TaskConfirmEmail, mustPayload(t, "user@example.com", "alice", "tok"))
	err := w.handleConfirmEmail(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, smtpErr)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
