package ulogger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const callerWidth = 32

// ZLoggerWrapper is the default Logger. It writes JSON lines, or a colored
// console format when pretty logs are enabled.
type ZLoggerWrapper struct {
	zerolog.Logger
	service string
	opts    Options
}

func NewZeroLogger(service string, options ...Option) *ZLoggerWrapper {
	if service == "" {
		service = "sats"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	var writer io.Writer = opts.writer
	if opts.pretty {
		writer = consoleWriter(opts.writer, service)
	}

	z := &ZLoggerWrapper{
		Logger: zerolog.New(writer).With().
			CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount+1+opts.skip).
			Timestamp().
			Str("service", service).
			Logger(),
		service: service,
		opts:    *opts,
	}

	z.SetLogLevel(opts.logLevel)

	return z
}

// consoleWriter formats lines as "15:04:05 | INFO  | service | message  caller".
func consoleWriter(w io.Writer, service string) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !term.IsTerminal(int(f.Fd()))
	}

	output := zerolog.ConsoleWriter{
		Out:           w,
		NoColor:       noColor,
		TimeFormat:    time.RFC3339,
		FieldsExclude: []string{"service"},
	}

	output.FormatTimestamp = func(i interface{}) string {
		s, _ := i.(string)
		parsed, _ := time.Parse(time.RFC3339, s)

		return parsed.Format("15:04:05")
	}

	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-6s", i))

		return fmt.Sprintf("| %s|", colorize(l, levelColor(i), noColor))
	}

	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-7s| %s", service, i)
	}

	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	output.FormatCaller = func(i interface{}) string {
		c, _ := i.(string)
		if c == "" {
			return ""
		}

		return colorize(fmt.Sprintf("%-*s", callerWidth, shortenCaller(c)), colorBold, noColor)
	}

	return output
}

func levelColor(level interface{}) int {
	switch level {
	case "debug":
		return colorBlue
	case "info":
		return colorGreen
	case "warn":
		return colorYellow
	case "error", "fatal", "panic":
		return colorRed
	default:
		return colorWhite
	}
}

// shortenCaller keeps as many trailing path elements of a caller as fit in callerWidth.
func shortenCaller(c string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, c); err == nil {
			c = rel
		}
	}

	parts := strings.Split(c, "/")
	short := parts[len(parts)-1]

	for i := len(parts) - 2; i >= 0; i-- {
		if len(short)+len(parts[i])+1 > callerWidth {
			break
		}

		short = parts[i] + "/" + short
	}

	return short
}

// New returns a logger for another service that keeps the writer, level and
// format of z unless options override them.
func (z *ZLoggerWrapper) New(service string, options ...Option) Logger {
	opts := []Option{
		WithWriter(z.opts.writer),
		WithLoggerType(z.opts.loggerType),
		WithLevel(z.Logger.GetLevel().String()),
		WithPrettyLogs(z.opts.pretty),
		WithSkipFrame(z.opts.skip),
	}

	return NewZeroLogger(service, append(opts, options...)...)
}

func (z *ZLoggerWrapper) Duplicate(options ...Option) Logger {
	return z.New(z.service, options...)
}

func (z *ZLoggerWrapper) SetLogLevel(logLevel string) {
	level := zerolog.InfoLevel

	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = zerolog.DebugLevel
	case "WARN":
		level = zerolog.WarnLevel
	case "ERROR":
		level = zerolog.ErrorLevel
	case "FATAL":
		level = zerolog.FatalLevel
	case "PANIC":
		level = zerolog.PanicLevel
	}

	z.Logger = z.Logger.Level(level)
}

// LogLevel maps the zerolog level onto gocore's numbering.
func (z *ZLoggerWrapper) LogLevel() int {
	switch z.Logger.GetLevel() {
	case zerolog.DebugLevel:
		return int(gocore.DEBUG)
	case zerolog.WarnLevel:
		return int(gocore.WARN)
	case zerolog.ErrorLevel:
		return int(gocore.ERROR)
	case zerolog.FatalLevel:
		return int(gocore.FATAL)
	default:
		return int(gocore.INFO)
	}
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) {
	z.Logger.Fatal().Msgf(format, args...)
}

// colorize wraps s in ANSI code c unless disabled or NO_COLOR is set.
func colorize(s string, c int, disabled bool) string {
	if disabled || c == 0 || os.Getenv("NO_COLOR") != "" {
		return s
	}

	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
}
