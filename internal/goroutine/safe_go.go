package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/logger"
)

// Reporter получает панику из фоновой горутины (например, Sentry).
type Reporter func(recovered interface{})

var reporter Reporter

// SetReporter задаёт получателя паник. nil отключает отправку.
func SetReporter(r Reporter) {
	reporter = r
}

// SafeGo запускает горутину с обработкой panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer recoverPanic(name)
		fn(ctx)
	}()
}

func recoverPanic(name string) {
	r := recover()
	if r == nil {
		return
	}
	logger.Get().WithFields(logrus.Fields{
		"task":  name,
		"panic": r,
		"stack": string(debug.Stack()),
	}).Error("panic в фоновой задаче")
	if reporter != nil {
		reporter(r)
	}
}
