package sqltasklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist/common"
)

const columns = "task_id, title, description, due_date"

// sqlTaskList 基于database/sql的任务列表
type sqlTaskList struct {
	db        *sql.DB
	dialect   dialect
	validator common.Validator
	batchSize int
}

// InitSqlite 打开sqlite任务列表
func InitSqlite(ctx context.Context, cfg common.Config) (*sqlTaskList, error) {
	cfg = cfg.WithDefaults()
	db, err := sql.Open(sqliteDialect.driver, sqliteDSN(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	// sqlite只允许一个写者，所有操作走同一个连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	list := newSqlTaskList(db, sqliteDialect, cfg)
	if err := list.init(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return list, nil
}

// InitMysql 打开mysql任务列表
func InitMysql(ctx context.Context, cfg common.Config) (*sqlTaskList, error) {
	cfg = cfg.WithDefaults()
	db, err := sql.Open(mysqlDialect.driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	list := newSqlTaskList(db, mysqlDialect, cfg)
	if err := list.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return list, nil
}

func newSqlTaskList(db *sql.DB, d dialect, cfg common.Config) *sqlTaskList {
	return &sqlTaskList{
		db:        db,
		dialect:   d,
		validator: common.Validator{DateFormat: cfg.DateFormat},
		batchSize: cfg.BatchSize,
	}
}

// debugf 打印调试信息
func (list *sqlTaskList) debugf(str string, v ...any) {
	log.Debug().Str("mod", "sqltasklist").Str("driver", list.dialect.driver).Msgf(str, v...)
}

// errorf 打印错误信息
func (list *sqlTaskList) errorf(str string, v ...any) {
	log.Error().Str("mod", "sqltasklist").Str("driver", list.dialect.driver).Msgf(str, v...)
}

// init 检查连接并建表
func (list *sqlTaskList) init(ctx context.Context, pragmas ...string) error {
	if err := list.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", list.dialect.driver, err)
	}
	for _, pragma := range pragmas {
		if _, err := list.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	if _, err := list.db.ExecContext(ctx, list.dialect.createTable); err != nil {
		return fmt.Errorf("create table tasks: %w", err)
	}
	return nil
}

// Create 写入一个任务
func (list *sqlTaskList) Create(ctx context.Context, nt common.NewTask) (int64, error) {
	t := nt.Task()
	if err := list.validator.Validate(t); err != nil {
		return 0, err
	}

	res, err := list.db.ExecContext(ctx,
		"insert into tasks (title, description, due_date) values (?, ?, ?)",
		t.Title, t.Description, t.DueDate)
	if err != nil {
		list.errorf("insert: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	list.debugf("created %d", id)
	return id, nil
}

// Get 按id读出任务
func (list *sqlTaskList) Get(ctx context.Context, id int64) (common.Task, error) {
	return list.get(ctx, list.db, id, "")
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (list *sqlTaskList) get(ctx context.Context, q queryRower, id int64, lock string) (common.Task, error) {
	var t common.Task
	err := q.QueryRowContext(ctx, "select "+columns+" from tasks where task_id = ?"+lock, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.DueDate)
	if errors.Is(err, sql.ErrNoRows) {
		return t, common.NotFound(id)
	}
	return t, err
}

// All 按id顺序读出全部任务
func (list *sqlTaskList) All(ctx context.Context) ([]common.Task, error) {
	rows, err := list.db.QueryContext(ctx, "select "+columns+" from tasks order by task_id")
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// Update 在一个事务内合并、校验、写回
func (list *sqlTaskList) Update(ctx context.Context, id int64, u common.TaskUpdate) (common.Task, error) {
	tx, err := list.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Task{}, err
	}
	defer tx.Rollback()

	t, err := list.get(ctx, tx, id, list.dialect.forUpdate)
	if err != nil {
		return t, err
	}

	updated := u.Apply(t)
	if err := list.validator.Validate(updated); err != nil {
		return common.Task{}, err
	}

	_, err = tx.ExecContext(ctx,
		"update tasks set title = ?, description = ?, due_date = ? where task_id = ?",
		updated.Title, updated.Description, updated.DueDate, id)
	if err != nil {
		list.errorf("update %d: %v", id, err)
		return common.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return common.Task{}, err
	}

	list.debugf("updated %d", id)
	return updated, nil
}

// Delete 删除任务，返回是否存在
func (list *sqlTaskList) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := list.db.ExecContext(ctx, "delete from tasks where task_id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	list.debugf("deleted %d: %v", id, n > 0)
	return n > 0, nil
}

// Search 按排序分批读取，每批从上一批最后一条之后开始，在内存中逐条匹配
func (list *sqlTaskList) Search(ctx context.Context, q common.SearchQuery) (common.Cursor, error) {
	field, err := common.ParseSortField(string(q.SortBy))
	if err != nil {
		return nil, err
	}

	order := list.dialect.orderBy(field, q.SortDesc)
	fetch := func(ctx context.Context, last *common.Task, limit int) ([]common.Task, error) {
		where, args := "", []any{}
		if last != nil {
			var cond string
			cond, args = list.dialect.after(field, q.SortDesc, *last)
			where = "where " + cond
		}
		stmt := strings.Join([]string{"select", columns, "from tasks", where, order, "limit ?"}, " ")

		list.debugf("fetch %s limit=%d", where, limit)
		rows, err := list.db.QueryContext(ctx, stmt, append(args, limit)...)
		if err != nil {
			return nil, err
		}
		return scanTasks(rows)
	}

	return common.NewBatchCursor(fetch, list.batchSize, func(t common.Task) bool {
		return common.Matches(t, q.Query)
	}), nil
}

// Close 关闭数据库
func (list *sqlTaskList) Close(ctx context.Context) error {
	return list.db.Close()
}

func scanTasks(rows *sql.Rows) ([]common.Task, error) {
	defer rows.Close()

	tasks := make([]common.Task, 0)
	for rows.Next() {
		var t common.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
