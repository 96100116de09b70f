// Package logging собирает zap-логгер клиента: консольный вывод в stderr,
// чтобы не смешиваться с пользовательским выводом команд.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New возвращает SugaredLogger уровня warn (debug при debug=true).
func New(debug bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}
