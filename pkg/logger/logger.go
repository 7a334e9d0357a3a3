package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	instance = zap.NewNop().Sugar()
	once     sync.Once
)

// Init builds the process logger. Production gets JSON output, every other
// environment the human readable development encoder.
func Init(env string) {
	once.Do(func() {
		var (
			l   *zap.Logger
			err error
		)
		if env == "production" {
			l, err = zap.NewProduction()
		} else {
			l, err = zap.NewDevelopment()
		}
		if err != nil {
			return
		}
		instance = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	})
}

// Sync flushes buffered entries.
func Sync() {
	_ = instance.Sync()
}

func Debug(msg string, args ...any) {
	instance.Debugw(msg, fields(args)...)
}

func Info(msg string, args ...any) {
	instance.Infow(msg, fields(args)...)
}

func Warn(msg string, args ...any) {
	instance.Warnw(msg, fields(args)...)
}

func Error(msg string, args ...any) {
	instance.Errorw(msg, fields(args)...)
}

func Fatal(msg string, args ...any) {
	instance.Fatalw(msg, fields(args)...)
}

// fields turns call-site args into key/value pairs. A dangling trailing
// value, usually an error, is logged under "error".
func fields(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}

	kv := make([]any, 0, len(args)+1)
	kv = append(kv, args[:len(args)-1]...)
	return append(kv, "error", args[len(args)-1])
}
