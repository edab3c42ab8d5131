package logging

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"ledgerbot/internal/config"
)

// New логгер по настройкам; при заданном пути файл ротируется lumberjack
func New(conf config.LoggingConfig) (*log.Logger, error) {
	logger := log.New()
	if conf.Path != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    32, // megabytes
			MaxBackups: 2,
			MaxAge:     28, //days
			Compress:   true,
		})
	} else {
		logger.SetOutput(os.Stderr)
	}
	switch conf.Level {
	case "trace":
		logger.SetLevel(log.TraceLevel)
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	case "fatal":
		logger.SetLevel(log.FatalLevel)
	case "panic":
		logger.SetLevel(log.PanicLevel)
	default:
		return nil, fmt.Errorf("unknown logging level %q", conf.Level)
	}
	logger.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return logger, nil
}
