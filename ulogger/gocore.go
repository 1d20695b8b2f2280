package ulogger

import (
	"github.com/ordishs/gocore"
)

// GoCoreLogger routes log lines through gocore, which also feeds the gocore
// stats and socket log listeners. Its level is fixed when it is created.
type GoCoreLogger struct {
	*gocore.Logger
	service string
	level   string
}

func NewGoCoreLogger(service string, options ...Option) *GoCoreLogger {
	if service == "" {
		service = "sats"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{
		Logger:  gocore.Log(service, gocore.NewLogLevelFromString(opts.logLevel)),
		service: service,
		level:   opts.logLevel,
	}
}

// New returns a gocore logger for service at the level of g, unless a level option is given.
func (g *GoCoreLogger) New(service string, options ...Option) Logger {
	opts := []Option{WithLevel(g.level)}

	return NewGoCoreLogger(service, append(opts, options...)...)
}

func (g *GoCoreLogger) Duplicate(options ...Option) Logger {
	if len(options) == 0 {
		return &GoCoreLogger{Logger: g.Logger, service: g.service, level: g.level}
	}

	return g.New(g.service, options...)
}

func (g *GoCoreLogger) SetLogLevel(_ string) {
	// gocore loggers are cached per service, the level is set on creation
}

func (g *GoCoreLogger) LogLevel() int {
	return int(g.Logger.GetLogLevel())
}
