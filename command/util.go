package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/alwitt/reporter"
	"github.com/alwitt/reporter/config"
	"github.com/alwitt/reporter/db"
	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"golang.org/x/term"
)

type configKey struct{}

func installLogHandler(cfg config.LogConfig, out io.Writer) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
	}
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetHandler(json.New(out))
	default:
		log.SetHandler(text.New(out))
	}
	return nil
}

func loadConfig(ctx context.Context) (config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(config.Config)
	if !ok {
		return config.Config{}, errors.New("config resolution failed")
	}
	return cfg, nil
}

func loadPersistence(ctx context.Context) (config.Config, db.Client, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return config.Config{}, nil, err
	}
	persistence, err := reporter.NewPersistence(ctx, cfg.Database)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, persistence, nil
}

func prompt(in *os.File, out io.Writer, prompt string, mask bool) ([]byte, error) {
	if term.IsTerminal(int(in.Fd())) {
		if _, err := io.WriteString(out, prompt); err != nil {
			return nil, err
		}
	}
	return readLine(in, mask)
}

// cloned from term.readPasswordLine.
func readLine(stdin *os.File, mask bool) ([]byte, error) {
	if mask && term.IsTerminal(int(stdin.Fd())) {
		return term.ReadPassword(int(stdin.Fd()))
	}
	var buf [1]byte
	var ret []byte

	for {
		n, err := stdin.Read(buf[:])
		if n > 0 {
			switch buf[0] {
			case '\b':
				if len(ret) > 0 {
					ret = ret[:len(ret)-1]
				}
			case '\n':
				if runtime.GOOS != "windows" {
					return ret, nil
				}
			case '\r':
				if runtime.GOOS == "windows" {
					return ret, nil
				}
			default:
				ret = append(ret, buf[0])
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(ret) > 0 {
				return ret, nil
			}
			return ret, err
		}
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}
