package settings

import "os"

// Config carries the ambient knobs of the process. Protocol behavior (page
// layout, shell grammar) is fixed and never configurable.
type Config struct {
	Logger Logger `mapstructure:"logger"`
	Server Server `mapstructure:"server"`
}

// Logger is the configuration for the rotating log file.
type Logger struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Server is the configuration for the HTTP daemon.
type Server struct {
	Addr string `mapstructure:"addr"`
}

func Default() Config {
	return Config{
		Logger: Logger{
			File:       "myjql.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Server: Server{
			Addr: ":8192",
		},
	}
}

// FromEnv returns the defaults with MYJQL_* environment overrides applied.
func FromEnv() Config {
	cfg := Default()
	if v := os.Getenv("MYJQL_LOG_FILE"); v != "" {
		cfg.Logger.File = v
	}
	if v := os.Getenv("MYJQL_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("MYJQL_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	return cfg
}
