// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Error is a process error class
var Error = errs.Class("process error")

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string
	Development bool
	Caller      bool
	Stack       bool
	Encoding    string
	Output      string
}

// DefaultLogConfig returns the configuration used when no flags are given.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:    "info",
		Encoding: "console",
		Output:   "stderr",
	}
}

// RegisterLogFlags adds the log.* flags to flags.
func RegisterLogFlags(flags *pflag.FlagSet) {
	defaults := DefaultLogConfig()
	flags.String("log.level", defaults.Level, "the minimum log level to log")
	flags.Bool("log.development", defaults.Development, "if true, set logging to development mode")
	flags.Bool("log.caller", defaults.Caller, "if true, log function filename and line number")
	flags.Bool("log.stack", defaults.Stack, "if true, log stack traces")
	flags.String("log.encoding", defaults.Encoding, "configures log encoding. can either be 'console' or 'json'")
	flags.String("log.output", defaults.Output, "can be stdout, stderr, or a filename")
}

// LogConfigFrom reads the log.* settings from vip.
func LogConfigFrom(vip *viper.Viper) LogConfig {
	config := DefaultLogConfig()
	if vip.IsSet("log.level") {
		config.Level = vip.GetString("log.level")
	}
	if vip.IsSet("log.encoding") {
		config.Encoding = vip.GetString("log.encoding")
	}
	if vip.IsSet("log.output") {
		config.Output = vip.GetString("log.output")
	}
	config.Development = vip.GetBool("log.development")
	config.Caller = vip.GetBool("log.caller")
	config.Stack = vip.GetBool("log.stack")
	return config
}

// NewLogger creates a new logger from config.
func NewLogger(config LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		return nil, Error.New("invalid log level %q", config.Level)
	}
	switch config.Encoding {
	case "console", "json":
	default:
		return nil, Error.New("invalid log encoding %q", config.Encoding)
	}

	levelEncoder := zapcore.CapitalColorLevelEncoder
	if runtime.GOOS == "windows" || config.Encoding == "json" || config.Output != "stderr" {
		levelEncoder = zapcore.CapitalLevelEncoder
	}

	timeKey := "T"
	if os.Getenv("STRATUS_LOG_NOTIME") != "" {
		timeKey = ""
	}

	log, err := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       config.Development,
		DisableCaller:     !config.Caller,
		DisableStacktrace: !config.Stack,
		Encoding:          config.Encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        timeKey,
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{config.Output},
		ErrorOutputPaths: []string{config.Output},
	}.Build()
	return log, Error.Wrap(err)
}
