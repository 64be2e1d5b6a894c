package middleware

import (
	"context"
	"net/http"
)

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain применяет мидлвары к обработчику в порядке их перечисления.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CtxKey — тип ключей контекста этого пакета.
type CtxKey string

const (
	// CtxRequestID — id запроса (X-Request-Id).
	CtxRequestID CtxKey = "request_id"
	// CtxAuthToken — сырой Bearer-токен из Authorization.
	CtxAuthToken CtxKey = "auth_token"
)

// TokenFromContext возвращает Bearer-токен, положенный AuthBearer,
// и false, если токена в запросе не было.
func TokenFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(CtxAuthToken)
	if v == nil {
		return "", false
	}

	token, ok := v.(string)
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

// statusWriter оборачивает ResponseWriter, чтобы перехватить статус и размер.
type statusWriter struct {
	http.ResponseWriter
	status int
	count  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	count, err := w.ResponseWriter.Write(p)
	w.count += count
	return count, err
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w}
}
