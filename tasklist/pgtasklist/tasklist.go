package pgtasklist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist/common"
)

const columns = "task_id, title, description, due_date"

// Init 初始化pgTaskList
func Init(ctx context.Context, cfg common.Config) (*pgTaskList, error) {
	cfg = cfg.WithDefaults()
	conn, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}

	list := pgTaskList{
		conn:      conn,
		validator: common.Validator{DateFormat: cfg.DateFormat},
		batchSize: cfg.BatchSize,
	}
	if err := list.init(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return &list, nil
}

// pgTaskList 可从pg读写任务
type pgTaskList struct {
	conn      *pgxpool.Pool
	validator common.Validator
	batchSize int
}

// debugf 打印调试信息
func (list *pgTaskList) debugf(str string, v ...any) {
	log.Debug().Str("mod", "pgtasklist").Msgf(str, v...)
}

// errorf 打印错误信息
func (list *pgTaskList) errorf(str string, v ...any) {
	log.Error().Str("mod", "pgtasklist").Msgf(str, v...)
}

// init 初始化pg任务列表
func (list *pgTaskList) init(ctx context.Context) error {
	_, err := list.conn.Exec(ctx, `
	create table if not exists tasks (
		task_id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table tasks: %w", err)
	}

	return nil
}

// Create 往pg写入一个任务
func (list *pgTaskList) Create(ctx context.Context, nt common.NewTask) (int64, error) {
	t := nt.Task()
	if err := list.validator.Validate(t); err != nil {
		return 0, err
	}

	sql := "insert into tasks (title, description, due_date) values ($1, $2, $3) returning task_id"
	var id int64
	if err := list.conn.QueryRow(ctx, sql, t.Title, t.Description, t.DueDate).Scan(&id); err != nil {
		list.errorf("insert: %v", err)
		return 0, err
	}

	list.debugf("created %d", id)
	return id, nil
}

// Get 从pg读出一个任务
func (list *pgTaskList) Get(ctx context.Context, id int64) (common.Task, error) {
	return fetchOne(ctx, list.conn, id, "")
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// fetchOne 读出一个任务，lock为附加的行锁子句
func fetchOne(ctx context.Context, q rowQuerier, id int64, lock string) (common.Task, error) {
	var t common.Task
	sql := "select " + columns + " from tasks where task_id = $1" + lock
	err := q.QueryRow(ctx, sql, id).Scan(&t.ID, &t.Title, &t.Description, &t.DueDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, common.NotFound(id)
	}
	return t, err
}

// All 按id顺序读出全部任务
func (list *pgTaskList) All(ctx context.Context) ([]common.Task, error) {
	rows, err := list.conn.Query(ctx, "select "+columns+" from tasks order by task_id")
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Update 锁住该行，合并修改后写回
func (list *pgTaskList) Update(ctx context.Context, id int64, u common.TaskUpdate) (common.Task, error) {
	var updated common.Task
	err := pgx.BeginTxFunc(ctx, list.conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		t, err := fetchOne(ctx, tx, id, " for update")
		if err != nil {
			return err
		}

		updated = u.Apply(t)
		if err := list.validator.Validate(updated); err != nil {
			return err
		}

		sql := "update tasks set title = $1, description = $2, due_date = $3 where task_id = $4"
		_, err = tx.Exec(ctx, sql, updated.Title, updated.Description, updated.DueDate, id)
		return err
	})
	if err != nil {
		return common.Task{}, err
	}

	list.debugf("updated %d", id)
	return updated, nil
}

// Delete 删除任务
func (list *pgTaskList) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := list.conn.Exec(ctx, "delete from tasks where task_id = $1", id)
	if err != nil {
		return false, err
	}

	list.debugf("deleted %d: %v", id, tag.RowsAffected() > 0)
	return tag.RowsAffected() > 0, nil
}

// Search 分批从pg读取排好序的任务，每批从上一批最后一条之后开始
func (list *pgTaskList) Search(ctx context.Context, q common.SearchQuery) (common.Cursor, error) {
	field, err := common.ParseSortField(string(q.SortBy))
	if err != nil {
		return nil, err
	}

	order := orderBy(field, q.SortDesc)
	fetch := func(ctx context.Context, last *common.Task, limit int) ([]common.Task, error) {
		where, args := "", []any{}
		if last != nil {
			var cond string
			cond, args = after(field, q.SortDesc, *last)
			where = "where " + cond
		}
		args = append(args, limit)
		sql := fmt.Sprintf("select %s from tasks %s %s limit $%d", columns, where, order, len(args))

		list.debugf("fetch %s limit=%d", where, limit)
		rows, err := list.conn.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		return collectTasks(rows)
	}

	return common.NewBatchCursor(fetch, list.batchSize, func(t common.Task) bool {
		return common.Matches(t, q.Query)
	}), nil
}

// Close 断开pg任务列表
func (list *pgTaskList) Close(ctx context.Context) error {
	list.conn.Close()
	return nil
}

// orderBy 文本用C排序规则，即按字节比较
func orderBy(field common.SortField, desc bool) string {
	direction := ""
	if desc {
		direction = " desc"
	}

	switch field {
	case common.SortNone:
		return "order by task_id"
	case common.SortTaskID:
		return "order by task_id" + direction
	}
	return fmt.Sprintf(`order by %s collate "C"%s, task_id`, field, direction)
}

// after 排在last之后的条件，与orderBy的顺序一致
func after(field common.SortField, desc bool, last common.Task) (string, []any) {
	op := ">"
	if desc {
		op = "<"
	}

	switch field {
	case common.SortNone:
		return "task_id > $1", []any{last.ID}
	case common.SortTaskID:
		return "task_id " + op + " $1", []any{last.ID}
	}
	return fmt.Sprintf(`(%[1]s collate "C" %[2]s $1 or (%[1]s = $1 and task_id > $2))`, field, op), []any{field.Key(last), last.ID}
}

func collectTasks(rows pgx.Rows) ([]common.Task, error) {
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (common.Task, error) {
		var t common.Task
		err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate)
		return t, err
	})
	if tasks == nil {
		tasks = []common.Task{}
	}
	return tasks, err
}
