package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// Formatter renders entries as "2006-01-02 15:04:05 [LEVEL] msg key=val".
type Formatter struct {
	TimestampFormat string
}

func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	ts := entry.Time.Format(f.TimestampFormat)
	line := fmt.Sprintf("%s [%s] %s", ts, entry.Level.String(), entry.Message)
	for k, v := range entry.Data {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	return []byte(line + "\n"), nil
}

// Init configures logrus with the given level and, when dir is non-empty,
// hourly rotating log files alongside stdout.
func Init(level, dir string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&Formatter{TimestampFormat: "2006-01-02 15:04:05"})

	if dir == "" {
		log.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator, err := rotatelogs.New(
		filepath.Join(dir, "server.%Y-%m-%d-%H.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "server.log")),
		rotatelogs.WithRotationTime(time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("init log rotation: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}
