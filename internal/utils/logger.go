package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger writes leveled lines to stdout and, when a directory is given, to a
// timestamped file under it.
type Logger struct {
	file   *os.File
	logger *log.Logger
	level  Level
}

func NewLogger(component string, level Level, dir string) (*Logger, error) {
	if dir == "" {
		return newLogger(os.Stdout, nil, level), nil
	}

	// Sanitize component name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(component), " ", "_")

	componentDir := filepath.Join(dir, sanitized)
	if err := os.MkdirAll(componentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(componentDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	return newLogger(io.MultiWriter(os.Stdout, file), file, level), nil
}

// NewWriterLogger logs to w only.
func NewWriterLogger(w io.Writer, level Level) *Logger {
	return newLogger(w, nil, level)
}

func newLogger(w io.Writer, file *os.File, level Level) *Logger {
	return &Logger{
		file:   file,
		logger: log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		level:  level,
	}
}

func (l *Logger) LogInfo(format string, v ...interface{}) {
	l.log(LevelInfo, "INFO", format, v...)
}

func (l *Logger) LogError(format string, v ...interface{}) {
	l.log(LevelError, "ERROR", format, v...)
}

func (l *Logger) LogDebug(format string, v ...interface{}) {
	l.log(LevelDebug, "DEBUG", format, v...)
}

func (l *Logger) log(level Level, tag string, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	message := fmt.Sprintf(format, v...)
	l.logger.Printf("[%s] %s", tag, message)
}

// Writer exposes the underlying sink, e.g. for gin's request log.
func (l *Logger) Writer() io.Writer {
	return l.logger.Writer()
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
