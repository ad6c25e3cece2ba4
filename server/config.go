package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist/common"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort     = 8080
	defaultPageSize = 10
)

// config 服务器配置
type config struct {
	Port      int           `yaml:"port"`
	LogLevel  string        `yaml:"log_level"`
	LogPretty bool          `yaml:"log_pretty"`
	PageSize  int           `yaml:"page_size"`
	Tasklist  common.Config `yaml:"tasklist"`
}

// loadConfig 依次读取yaml文件、.env和环境变量，后者覆盖前者
func loadConfig(cfgPath string) (*config, error) {
	var cfg config

	if cfgPath != "" {
		bytesArr, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(bytesArr, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	cfg.withDefaults()
	return &cfg, nil
}

// loadEnv 环境变量覆盖
func (cfg *config) loadEnv() error {
	if v := os.Getenv("TASKS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKS_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TASKS_PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKS_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = size
	}
	if v := os.Getenv("TASKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKS_STORE_TYPE"); v != "" {
		cfg.Tasklist.Type = v
	}
	if v := os.Getenv("TASKS_DATABASE_LOCATION"); v != "" {
		cfg.Tasklist.URL = v
	}
	if v := os.Getenv("TASKS_DATE_FORMAT"); v != "" {
		cfg.Tasklist.DateFormat = v
	}
	return nil
}

func (cfg *config) withDefaults() {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.LevelInfoValue
	}
	cfg.Tasklist = cfg.Tasklist.WithDefaults()
}

// setupLog 设置全局日志
func (cfg *config) setupLog() {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("mod", "server").Msgf("unknown log level %q, using info", cfg.LogLevel)
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
