package tasklist

import (
	"context"
	"fmt"

	"github.com/turnon/tasks/tasklist/common"
	"github.com/turnon/tasks/tasklist/memtasklist"
	"github.com/turnon/tasks/tasklist/pgtasklist"
	"github.com/turnon/tasks/tasklist/sqltasklist"
)

// NewTaskList 根据配置打开任务列表
func NewTaskList(ctx context.Context, cfg common.Config) (common.Tasklist, error) {
	cfg = cfg.WithDefaults()

	var (
		list common.Tasklist
		err  error
	)
	switch cfg.Type {
	case "sqlite", "sqlite3":
		list, err = unwrap(sqltasklist.InitSqlite(ctx, cfg))
	case "mysql":
		list, err = unwrap(sqltasklist.InitMysql(ctx, cfg))
	case "pg", "postgres", "postgresql":
		list, err = unwrap(pgtasklist.Init(ctx, cfg))
	case "memory":
		list = memtasklist.New(cfg)
	default:
		err = fmt.Errorf("unknown tasklist type: %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s tasklist: %w", cfg.Type, err)
	}
	return list, nil
}

// unwrap 出错时返回真正的nil接口
func unwrap[T common.Tasklist](list T, err error) (common.Tasklist, error) {
	if err != nil {
		return nil, err
	}
	return list, nil
}
