package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// NewJSONLogger builds a SlogLogger emitting JSON lines to stdout and, when
// logFile is not empty, to a size-rotated file as well.
func NewJSONLogger(logFile string, level slog.Level) *SlogLogger {
	h := slog.NewJSONHandler(Output(logFile), &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h))
}

// Output returns stdout, or stdout teed into a lumberjack rotator for logFile.
func Output(logFile string) io.Writer {
	if logFile == "" {
		return os.Stdout
	}
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		Compress:   false,
	}
	return io.MultiWriter(os.Stdout, rotator)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
