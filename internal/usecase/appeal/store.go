package appeal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

const defaultStoreTimeout = 5 * time.Second

// Clock возвращает текущее время. Подменяется в тестах.
type Clock func() time.Time

// NewMonotonicClock оборачивает now так, что миллисекунды не убывают между вызовами.
func NewMonotonicClock(now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	var (
		mu   sync.Mutex
		last int64
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now()
		if ms := t.UnixMilli(); ms > last {
			last = ms
			return t
		}
		return time.UnixMilli(last)
	}
}

func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError приводит ошибку хранилища к таксономии apperror.
// Ошибки apperror проходят как есть, истечение таймаута превращается в ErrStoreTimeout.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrStoreTimeout
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Persistence(err, message)
}
