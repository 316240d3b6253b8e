package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init настраивает глобальный логгер: JSON в production, текст в development.
func Init(env, level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if env == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// InitDiscard ставит логгер, который ничего не пишет (используется в тестах).
func InitDiscard() {
	Log = logrus.New()
	Log.SetOutput(io.Discard)
}

// Get возвращает глобальный логгер, создавая его при необходимости.
func Get() *logrus.Logger {
	if Log == nil {
		Init("development", "info")
	}
	return Log
}
