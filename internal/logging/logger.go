package logging

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из конфигурации; пустая строка - INFO
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("неизвестный уровень логирования %q", s)
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case TRACE:
		return logrus.TraceLevel
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Options параметры инициализации логирования
type Options struct {
	Level LogLevel
	// Dir каталог для файла логов; пусто - только консоль
	Dir  string
	JSON bool
}

// Logger логгер компонента
type Logger struct {
	mu        sync.RWMutex
	component string
	base      *logrus.Logger
	minLevel  LogLevel
}

var (
	rootMu   sync.RWMutex
	root     = newRoot(os.Stderr)
	logFile  *os.File
	rootOpts = Options{Level: INFO}
)

func newRoot(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.TraceLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	return l
}

// InitLogger инициализирует систему логирования
func InitLogger(opts Options) error {
	var out io.Writer = os.Stderr
	var file *os.File

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("ошибка создания директории %s: %w", opts.Dir, err)
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		filename := filepath.Join(opts.Dir, fmt.Sprintf("boxcars_%s.log", timestamp))

		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("ошибка создания файла логов: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stderr, f)
	}

	l := newRoot(out)
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	rootMu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	root = l
	logFile = file
	rootOpts = opts
	rootMu.Unlock()

	GetLoggerManager().rebind(l, opts.Level)
	return nil
}

// SetOutput перенаправляет вывод всех логгеров
func SetOutput(w io.Writer) {
	rootMu.Lock()
	root.SetOutput(w)
	rootMu.Unlock()
}

// CloseLogger закрывает файл логов
func CloseLogger() {
	rootMu.Lock()
	defer rootMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	root.SetOutput(os.Stderr)
}

func currentRoot() (*logrus.Logger, LogLevel) {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root, rootOpts.Level
}

// SetLevel меняет минимальный уровень логгера
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Level возвращает минимальный уровень логгера
func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minLevel
}

func (l *Logger) log(level LogLevel, fields logrus.Fields, format string, args ...interface{}) {
	l.mu.RLock()
	base, min := l.base, l.minLevel
	l.mu.RUnlock()
	if level < min {
		return
	}

	entry := base.WithField("component", l.component)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Log(level.logrus(), fmt.Sprintf(format, args...))
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, nil, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, nil, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.log(INFO, nil, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.log(WARN, nil, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, nil, format, args...) }

// WithFields логирует сообщение с дополнительными полями
func (l *Logger) WithFields(level LogLevel, fields map[string]interface{}, format string, args ...interface{}) {
	l.log(level, logrus.Fields(fields), format, args...)
}

// LogTrace логирует сообщение уровня TRACE
func LogTrace(format string, args ...interface{}) {
	GetComponentLogger("main").Trace(format, args...)
}

// LogDebug логирует сообщение уровня DEBUG
func LogDebug(format string, args ...interface{}) {
	GetComponentLogger("main").Debug(format, args...)
}

// LogInfo логирует сообщение уровня INFO
func LogInfo(format string, args ...interface{}) {
	GetComponentLogger("main").Info(format, args...)
}

// LogWarn логирует сообщение уровня WARN
func LogWarn(format string, args ...interface{}) {
	GetComponentLogger("main").Warn(format, args...)
}

// LogError логирует сообщение уровня ERROR
func LogError(format string, args ...interface{}) {
	GetComponentLogger("main").Error(format, args...)
}

// Trace, Debug, Info, Warn и Error - короткие формы для компонента "main"
func Trace(format string, args ...interface{}) { LogTrace(format, args...) }

func Debug(format string, args ...interface{}) { LogDebug(format, args...) }

func Info(format string, args ...interface{}) { LogInfo(format, args...) }

func Warn(format string, args ...interface{}) { LogWarn(format, args...) }

func Error(format string, args ...interface{}) { LogError(format, args...) }

// HexDump создает hex дамп данных
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "No data"
	}

	// Ограничиваем размер дампа до 256 байт
	size := len(data)
	if size > 256 {
		size = 256
	}

	return hex.Dump(data[:size])
}

// HexDumpAround возвращает дамп окна данных вокруг битового смещения
func HexDumpAround(data []byte, bitOffset int64, window int) string {
	if len(data) == 0 || bitOffset < 0 {
		return HexDump(data)
	}
	center := int(bitOffset / 8)
	start := center - window
	if start < 0 {
		start = 0
	}
	end := center + window
	if end > len(data) {
		end = len(data)
	}
	if start >= end {
		return "No data"
	}
	return fmt.Sprintf("byte offset %d:\n%s", start, HexDump(data[start:end]))
}

// LogDecodeError логирует ошибку декодирования с дампом байт вокруг места сбоя
func LogDecodeError(source string, err error, data []byte, bitOffset int64) {
	l := GetComponentLogger("decode")
	l.Error("Decode error in %s: %v", source, err)
	if len(data) > 0 {
		l.Debug("Raw data (%d bytes) near bit %d:", len(data), bitOffset)
		l.Debug("%s", HexDumpAround(data, bitOffset, 32))
	}
}
