package meta

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Listener modes.
const (
	ModeTCP  = "tcp"
	ModeUnix = "unix"
	ModeBoth = "both"
	ModeNone = "none"
)

// Config is the server configuration. Zero fields fall back to the defaults
// above.
type Config struct {
	TCPAddr    string `yaml:"tcp"`
	UnixPath   string `yaml:"unix"`
	WSAddr     string `yaml:"ws"`
	Mode       string `yaml:"mode"`
	LogPath    string `yaml:"log_path"`
	LogLevel   string `yaml:"log_level"`
	RecordsDir string `yaml:"records_dir"`
	MaxRooms   int    `yaml:"max_rooms"`
}

func DefaultConfig() Config {
	return Config{
		TCPAddr:  DEFAULT_TCP_ADDR,
		UnixPath: DEFAULT_UNIX_PATH,
		WSAddr:   DEFAULT_WS_ADDR,
		Mode:     ModeBoth,
		LogLevel: "info",
		MaxRooms: MAX_ROOMS,
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeTCP, ModeUnix, ModeBoth, ModeNone:
	default:
		return errors.Errorf("unknown mode %q", c.Mode)
	}
	if c.ListenTCP() && c.TCPAddr == "" {
		return errors.New("tcp mode needs an address")
	}
	if c.ListenUnix() && c.UnixPath == "" {
		return errors.New("unix mode needs a socket path")
	}
	if c.Mode == ModeNone && c.WSAddr == "" {
		return errors.New("nothing to listen on")
	}
	if c.MaxRooms < 1 {
		return errors.Errorf("max_rooms must be positive, got %d", c.MaxRooms)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

func (c Config) ListenTCP() bool {
	return c.Mode == ModeTCP || c.Mode == ModeBoth
}

func (c Config) ListenUnix() bool {
	return c.Mode == ModeUnix || c.Mode == ModeBoth
}

// Level returns the configured zerolog level.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
