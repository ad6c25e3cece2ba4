package common

import (
	"context"
	"io"
)

const (
	DefaultType       = "sqlite"
	DefaultURL        = "tasks.sqlite3"
	DefaultDateFormat = "2006-01-02"
	DefaultBatchSize  = 100
)

// Config 任务存储配置
type Config struct {
	Type       string `yaml:"type"`
	URL        string `yaml:"url"`
	DateFormat string `yaml:"date_format"`
	BatchSize  int    `yaml:"batch_size"`
}

// WithDefaults 补全缺省值
func (cfg Config) WithDefaults() Config {
	if cfg.Type == "" {
		cfg.Type = DefaultType
	}
	if cfg.URL == "" && cfg.Type == DefaultType {
		cfg.URL = DefaultURL
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return cfg
}

// Tasklist 任务存储
type Tasklist interface {
	Create(context.Context, NewTask) (int64, error)
	Get(context.Context, int64) (Task, error)
	All(context.Context) ([]Task, error)
	Update(context.Context, int64, TaskUpdate) (Task, error)
	Delete(context.Context, int64) (bool, error)
	Search(context.Context, SearchQuery) (Cursor, error)
	Close(context.Context) error
}

// Cursor 可重新开始的有限任务序列，结束时返回io.EOF
type Cursor interface {
	Next(context.Context) (Task, error)
	Reset()
	Close() error
}

// Drain 读出游标剩余的全部任务
func Drain(ctx context.Context, cur Cursor) ([]Task, error) {
	tasks := make([]Task, 0)
	for {
		t, err := cur.Next(ctx)
		if err == io.EOF {
			return tasks, nil
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
}
