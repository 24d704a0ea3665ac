// Package logger provides the two log channels used across subflow: User
// for short progress messages on stdout and Op for leveled operational
// logs with fields on stderr. Both share one logrus logger; a hook routes
// each entry to its channel's writer.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Channel names the destination of a log entry.
type Channel string

const (
	ChannelUser Channel = "user"
	ChannelOp   Channel = "op"

	channelKey = "log_type"
	emojiKey   = "emoji"
)

var (
	User *UserLogger
	Op   *OpLogger

	mu     sync.Mutex
	base   *logrus.Logger
	router *channelRouter
)

func init() {
	base = logrus.New()
	router = newChannelRouter()
	configure(logrus.InfoLevel, false, false)
}

// Setup configures level and format for both channels. The LOG_MODE
// (quiet, verbose, debug) and LOG_FORMAT (json, text) environment variables
// take precedence over the arguments.
func Setup(verbose, jsonLogs, quiet bool) {
	switch os.Getenv("LOG_MODE") {
	case "quiet":
		quiet, verbose = true, false
	case "verbose", "debug":
		verbose, quiet = true, false
	}

	switch os.Getenv("LOG_FORMAT") {
	case "json":
		jsonLogs = true
	case "text":
		jsonLogs = false
	}

	level := logrus.InfoLevel
	switch {
	case quiet:
		level = logrus.ErrorLevel
	case verbose:
		level = logrus.DebugLevel
	}

	configure(level, jsonLogs, verbose)
}

func configure(level logrus.Level, jsonLogs, verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	base.Hooks = make(logrus.LevelHooks)
	base.SetOutput(io.Discard)
	base.SetLevel(level)

	user, op := router.sinks()
	switch {
	case jsonLogs:
		user.formatter = &logrus.JSONFormatter{}
		op.formatter = &logrus.JSONFormatter{}
	case verbose:
		user.formatter = &CLIFormatter{MessageOnly: true}
		op.formatter = &logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   isTerminal(op.writer),
		}
	default:
		user.formatter = &CLIFormatter{MessageOnly: true}
		op.formatter = &CLIFormatter{DisableTimestamp: true, DisableColors: !isTerminal(op.writer)}
	}
	router.set(user, op)
	base.AddHook(router)

	User = &UserLogger{logger: base}
	Op = &OpLogger{logger: base}
}

// SetOutput redirects the user and op channels. Nil keeps the current
// writer.
func SetOutput(user, op io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	userSink, opSink := router.sinks()
	if user != nil {
		userSink.writer = user
	}
	if op != nil {
		opSink.writer = op
	}
	router.set(userSink, opSink)
}

// Level returns the current level of both channels.
func Level() logrus.Level {
	mu.Lock()
	defer mu.Unlock()
	return base.GetLevel()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// UserLogger writes short, emoji-prefixed messages meant for the person
// running the command.
type UserLogger struct {
	logger *logrus.Logger
}

func (u *UserLogger) entry(emoji string) *logrus.Entry {
	fields := logrus.Fields{channelKey: string(ChannelUser)}
	if emoji != "" {
		fields[emojiKey] = emoji
	}
	return u.logger.WithFields(fields)
}

func (u *UserLogger) Info(msg string) {
	u.entry("").Info(msg)
}

func (u *UserLogger) Infof(format string, args ...interface{}) {
	u.entry("").Infof(format, args...)
}

func (u *UserLogger) Error(msg string) {
	u.entry("❌").Error(msg)
}

func (u *UserLogger) Errorf(format string, args ...interface{}) {
	u.entry("❌").Errorf(format, args...)
}

func (u *UserLogger) Warn(msg string) {
	u.entry("⚠️").Warn(msg)
}

func (u *UserLogger) Warnf(format string, args ...interface{}) {
	u.entry("⚠️").Warnf(format, args...)
}

func (u *UserLogger) Starting(msg string) {
	u.entry("🚀").Info(msg)
}

func (u *UserLogger) Startingf(format string, args ...interface{}) {
	u.entry("🚀").Infof(format, args...)
}

func (u *UserLogger) Success(msg string) {
	u.entry("✅").Info(msg)
}

func (u *UserLogger) Successf(format string, args ...interface{}) {
	u.entry("✅").Infof(format, args...)
}

func (u *UserLogger) Retryf(format string, args ...interface{}) {
	u.entry("🔁").Warnf(format, args...)
}

// Criticalf is reserved for failures an operator has to act on.
func (u *UserLogger) Criticalf(format string, args ...interface{}) {
	u.entry("🚨").Errorf(format, args...)
}

// OpLogger writes leveled operational logs with structured fields.
type OpLogger struct {
	logger *logrus.Logger
}

func (o *OpLogger) entry() *logrus.Entry {
	return o.logger.WithField(channelKey, string(ChannelOp))
}

func (o *OpLogger) Info(msg string)                           { o.entry().Info(msg) }
func (o *OpLogger) Infof(format string, args ...interface{})  { o.entry().Infof(format, args...) }
func (o *OpLogger) Error(msg string)                          { o.entry().Error(msg) }
func (o *OpLogger) Errorf(format string, args ...interface{}) { o.entry().Errorf(format, args...) }
func (o *OpLogger) Warn(msg string)                           { o.entry().Warn(msg) }
func (o *OpLogger) Warnf(format string, args ...interface{})  { o.entry().Warnf(format, args...) }
func (o *OpLogger) Debug(msg string)                          { o.entry().Debug(msg) }
func (o *OpLogger) Debugf(format string, args ...interface{}) { o.entry().Debugf(format, args...) }

// WithFields returns an op entry carrying fields.
func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return o.entry().WithFields(fields)
}
