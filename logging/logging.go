// Package logging provides the structured logger of flightsim. Records are
// written as JSON into a rotating file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the log file inside the log directory.
const FileName = "flightsim.slog"

// Logger wraps a slog.Logger. A nil *Logger can be used: debug and info
// messages are discarded, and warnings and errors go to the default slog
// logger.
type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

// New creates a logger that writes into FileName under dir.
func New(level string, dir string) *Logger {
	if dir == "" {
		dir = "flightsim-logs"
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, using info\n", err)
	}

	l := &Logger{
		Logger:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})),
		LogFile: w.Filename,
		LogDir:  dir,
		Start:   time.Now(),
	}

	l.Info("logging started", slog.Time("start", l.Start))
	l.Info("system information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	if bi, ok := debug.ReadBuildInfo(); ok {
		l.Info("build",
			slog.String("Go version", bi.GoVersion),
			slog.String("Path", bi.Path))
	}

	return l
}

// NewWriter creates a logger that writes JSON records into w.
func NewWriter(w io.Writer, level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
		Start:  time.Now(),
	}
}

// Discard creates a logger that drops every record.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
		Start:  time.Now(),
	}
}

// Slog returns the underlying slog logger. For a nil Logger, it returns a
// logger that drops every record.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}

	return l.Logger
}

// Debug wraps slog.Debug and allows a nil *Logger.
func (l *Logger) Debug(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(msg, args...)
	}
}

// Debugf logs a printf-style message at debug level.
func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	l.Warn(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		slog.Error(msg, args...)
	} else {
		l.Logger.Error(msg, args...)
	}
}

func (l *Logger) Errorf(msg string, args ...any) {
	l.Error(fmt.Sprintf(msg, args...))
}

// With returns a logger that adds the given attributes to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}

	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		LogDir:  l.LogDir,
		Start:   l.Start,
	}
}

// CatchAndReportCrash must be deferred. It recovers a panic, logs it and
// saves a crash report next to the log file, then returns the recovered
// value.
func (l *Logger) CatchAndReportCrash() any {
	err := recover()
	if err == nil {
		return nil
	}

	l.Errorf("crashed: %v", err)

	report := fmt.Sprintf("Crashed: %v\n", err)
	report += "Sys: " + runtime.GOARCH + "/" + runtime.GOOS + "\n"
	report += string(debug.Stack())

	fmt.Fprintln(os.Stderr, report)

	if l != nil && l.LogDir != "" {
		fn := filepath.Join(l.LogDir,
			"crash-"+time.Now().Format("2006_01_02_15_04_05")+".txt")
		_ = os.WriteFile(fn, []byte(report), 0o600)
	}

	return err
}
