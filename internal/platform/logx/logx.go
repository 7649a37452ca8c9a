// internal/platform/logx/logx.go
package logx

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// EnvLevel variable de entorno que fija el nivel inicial.
const EnvLevel = "FALCON_LOG_LEVEL"

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel // compartido con los hijos creados por With
}

// New crea un logger de consola en stderr con el nivel de FALCON_LOG_LEVEL.
func New() Logger {
	return NewWithLevel(ParseLevel(os.Getenv(EnvLevel)))
}

// NewWithLevel crea un logger con un nivel concreto.
func NewWithLevel(lvl Level) Logger {
	atom := zap.NewAtomicLevelAt(toZap(lvl))

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		atom,
	)
	return &zapLogger{sugar: zap.New(core).Sugar(), level: atom}
}

// NewJSON crea un logger JSON en stderr (modo API).
func NewJSON(lvl Level) Logger {
	atom := zap.NewAtomicLevelAt(toZap(lvl))
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		atom,
	)
	return &zapLogger{sugar: zap.New(core).Sugar(), level: atom}
}

// NewSilent crea un logger que solo emite errores (modo UI).
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewNop descarta todo; pensado para tests.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevel()}
}

// NewWithCore envuelve un zapcore.Core arbitrario (p.ej. zaptest/observer).
// El filtro de nivel propio se aplica antes del core.
func NewWithCore(core zapcore.Core, lvl Level) Logger {
	atom := zap.NewAtomicLevelAt(toZap(lvl))
	filtered := zap.New(core, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return &levelCore{Core: c, level: atom}
	}))
	return &zapLogger{sugar: filtered.Sugar(), level: atom}
}

func (z *zapLogger) With(kv ...any) Logger {
	return &zapLogger{sugar: z.sugar.With(normalize(kv)...), level: z.level}
}

func (z *zapLogger) SetLevel(lvl Level) {
	z.level.SetLevel(toZap(lvl))
}

func (z *zapLogger) Debug(msg string, kv ...any) { z.sugar.Debugw(msg, normalize(kv)...) }
func (z *zapLogger) Info(msg string, kv ...any)  { z.sugar.Infow(msg, normalize(kv)...) }
func (z *zapLogger) Warn(msg string, kv ...any)  { z.sugar.Warnw(msg, normalize(kv)...) }
func (z *zapLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	z.sugar.Errorw(err.Error(), append([]any{"error", err.Error()}, normalize(kv)...)...)
}

// normalize completa un valor faltante al final para no perder la clave.
func normalize(kv []any) []any {
	if len(kv)%2 == 1 {
		return append(append([]any{}, kv...), "(missing)")
	}
	return kv
}

// ParseLevel traduce un nombre de nivel; valores desconocidos son info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func toZap(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// levelCore aplica un AtomicLevel sobre un core ajeno.
type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *levelCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l) && c.Core.Enabled(l)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), level: c.level}
}

func (c *levelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}
