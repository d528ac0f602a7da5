package logx

import (
    "io"
    "os"
    "strings"
    "time"

    "github.com/sirupsen/logrus"
    lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields aliases logrus.Fields so callers do not import logrus directly.
type Fields = logrus.Fields

// Options control logger construction.
type Options struct {
    Level string // debug, info, warn, error; default info
    File  string // optional path; when set, logs rotate via lumberjack
}

// New builds a JSON-formatted logrus logger. LOG_LEVEL overrides
// opts.Level so a binary can be turned up without touching config.
func New(opts Options) *logrus.Logger {
    logger := logrus.New()

    level := opts.Level
    if v := os.Getenv("LOG_LEVEL"); v != "" { level = v }
    if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
        logger.SetLevel(lvl)
    } else {
        logger.SetLevel(logrus.InfoLevel)
    }

    logger.SetFormatter(&logrus.JSONFormatter{
        TimestampFormat: time.RFC3339Nano,
        FieldMap: logrus.FieldMap{
            logrus.FieldKeyTime:  "timestamp",
            logrus.FieldKeyLevel: "level",
            logrus.FieldKeyMsg:   "message",
        },
    })

    if opts.File != "" {
        rotated := &lumberjack.Logger{
            Filename:   opts.File,
            MaxSize:    100, // MB
            MaxBackups: 5,
            MaxAge:     14, // days
            Compress:   true,
        }
        logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
    }

    return logger
}

// WithComponent scopes a logger to one component name.
func WithComponent(logger *logrus.Logger, component string) *logrus.Entry {
    return logger.WithField("component", component)
}
