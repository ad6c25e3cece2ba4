package sqltasklist

import (
	"fmt"
	"strings"

	"github.com/turnon/tasks/tasklist/common"
)

// dialect 不同数据库之间的差异
type dialect struct {
	driver      string
	createTable string
	// forUpdate 事务内读取时追加的锁
	forUpdate string
	// textOrder 让文本按字节序比较
	textOrder func(col string) string
}

var sqliteDialect = dialect{
	driver: "sqlite3",
	createTable: `
	create table if not exists tasks (
		task_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date TEXT NOT NULL
	)`,
	textOrder: func(col string) string { return col },
}

var mysqlDialect = dialect{
	driver: "mysql",
	createTable: `
	create table if not exists tasks (
		task_id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		due_date VARCHAR(32) NOT NULL
	)`,
	forUpdate: " for update",
	textOrder: func(col string) string { return "cast(" + col + " as binary)" },
}

// orderBy 生成排序子句，总是以task_id收尾
func (d dialect) orderBy(field common.SortField, desc bool) string {
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
	return fmt.Sprintf("order by %s%s, task_id", d.textOrder(string(field)), direction)
}

// after 排在last之后的条件，与orderBy的顺序一致
func (d dialect) after(field common.SortField, desc bool, last common.Task) (string, []any) {
	op := ">"
	if desc {
		op = "<"
	}

	switch field {
	case common.SortNone:
		return "task_id > ?", []any{last.ID}
	case common.SortTaskID:
		return "task_id " + op + " ?", []any{last.ID}
	}
	col, param := d.textOrder(string(field)), d.textOrder("?")
	key := field.Key(last)
	return fmt.Sprintf("(%s %s %s or (%s = %s and task_id > ?))", col, op, param, col, param), []any{key, key, last.ID}
}

// sqliteDSN 打开sqlite时附加锁等待参数
func sqliteDSN(url string) string {
	if strings.Contains(url, "_busy_timeout") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_busy_timeout=5000"
}
