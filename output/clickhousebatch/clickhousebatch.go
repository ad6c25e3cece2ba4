package clickhousebatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/benthosdev/benthos/v4/public/service"
	"github.com/rs/zerolog/log"
)

func init() {
	err := service.RegisterBatchOutput(
		"clickhousebatch",
		clickhousebatchConfigSpec,
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.BatchOutput, service.BatchPolicy, int, error) {
			batchPolicy, err := conf.FieldBatchPolicy("batching")
			if err != nil {
				return nil, batchPolicy, 0, err
			}
			if batchPolicy.Count == 0 {
				batchPolicy.Count = 1
			}
			if batchPolicy.Period == "" {
				batchPolicy.Period = "10s"
			}

			ckb, err := newClickhousebatch(conf)
			if err != nil {
				return nil, batchPolicy, 0, err
			}
			return ckb, batchPolicy, 1, nil
		},
	)
	if err != nil {
		panic(err)
	}
}

var clickhousebatchConfigSpec = service.NewConfigSpec().
	Summary("Load tasks into clickhouse").
	Field(service.NewObjectField(
		"connect",
		service.NewStringListField("addrs"),
		service.NewStringField("database").Default("default"),
		service.NewStringField("username").Default("default"),
		service.NewStringField("password").Default(""),
	)).
	Field(service.NewObjectField(
		"table",
		service.NewStringField("name").Default("tasks"),
		service.NewObjectListField(
			"columns",
			service.NewStringField("name"),
			service.NewStringField("type"),
		).Default(defaultColumns()),
		service.NewStringField("engine").Default("MergeTree()"),
		service.NewStringListField("order").Default([]any{"task_id"}),
		service.NewStringListField("partition").Default([]any{}),
	)).
	Field(service.NewStringField("date_format").Default("2006-01-02")).
	Field(service.NewBatchPolicyField("batching"))

// defaultColumns 与任务json字段一一对应
func defaultColumns() []any {
	return []any{
		map[string]any{"name": "task_id", "type": "Int64"},
		map[string]any{"name": "title", "type": "String"},
		map[string]any{"name": "description", "type": "String"},
		map[string]any{"name": "due_date", "type": "Date"},
	}
}

func newClickhousebatch(conf *service.ParsedConfig) (*clickhousebatch, error) {
	ckbConnect, err := newClickhousebatchConnect(conf)
	if err != nil {
		return nil, err
	}
	ckbTable, err := newClickhousebatchTable(conf)
	if err != nil {
		return nil, err
	}
	dateFormat, err := conf.FieldString("date_format")
	if err != nil {
		return nil, err
	}
	return &clickhousebatch{connect: ckbConnect, table: ckbTable, dateFormat: dateFormat}, nil
}

func newClickhousebatchConnect(conf *service.ParsedConfig) (clickhousebatchConnect, error) {
	addrs, err := conf.FieldStringList("connect", "addrs")
	if err != nil {
		return clickhousebatchConnect{}, err
	}
	database, err := conf.FieldString("connect", "database")
	if err != nil {
		return clickhousebatchConnect{}, err
	}
	username, err := conf.FieldString("connect", "username")
	if err != nil {
		return clickhousebatchConnect{}, err
	}
	password, err := conf.FieldString("connect", "password")
	if err != nil {
		return clickhousebatchConnect{}, err
	}
	return clickhousebatchConnect{addrs: addrs, database: database, username: username, password: password}, nil
}

func newClickhousebatchTable(conf *service.ParsedConfig) (clickhousebatchTable, error) {
	// name
	name, err := conf.FieldString("table", "name")
	if err != nil {
		return clickhousebatchTable{}, err
	}

	// columns
	columns, err := conf.FieldObjectList("table", "columns")
	if err != nil {
		return clickhousebatchTable{}, err
	}
	clickhousebatchTableColumnArr := make([]clickhousebatchTableColumn, 0, len(columns))
	for _, col := range columns {
		colName, err := col.FieldString("name")
		if err != nil {
			return clickhousebatchTable{}, err
		}
		colType, err := col.FieldString("type")
		if err != nil {
			return clickhousebatchTable{}, err
		}
		clickhousebatchTableColumnArr = append(clickhousebatchTableColumnArr, clickhousebatchTableColumn{name: colName, ty: colType})
	}
	if len(clickhousebatchTableColumnArr) == 0 {
		return clickhousebatchTable{}, fmt.Errorf("table %s has no columns", name)
	}

	// engine
	engine, err := conf.FieldString("table", "engine")
	if err != nil {
		return clickhousebatchTable{}, err
	}

	// order
	order, err := conf.FieldStringList("table", "order")
	if err != nil {
		return clickhousebatchTable{}, err
	}

	// partition
	partition, err := conf.FieldStringList("table", "partition")
	if err != nil {
		return clickhousebatchTable{}, err
	}

	// result
	return clickhousebatchTable{
		name:      name,
		columns:   clickhousebatchTableColumnArr,
		engine:    engine,
		order:     order,
		partition: partition,
	}, nil
}

//------------------------------------------------------------------------------

type clickhousebatch struct {
	connect    clickhousebatchConnect
	table      clickhousebatchTable
	dateFormat string

	conn driver.Conn
}

type clickhousebatchConnect struct {
	addrs    []string
	database string
	username string
	password string
}

type clickhousebatchTable struct {
	name      string
	columns   []clickhousebatchTableColumn
	engine    string
	order     []string
	partition []string
}

type clickhousebatchTableColumn struct {
	name string
	ty   string
}

// createSQL 建表语句
func (table clickhousebatchTable) createSQL() string {
	sb := &strings.Builder{}
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(table.name)
	sb.WriteString(" (\n")
	for i, col := range table.columns {
		sb.WriteString("  ")
		sb.WriteString(col.name)
		sb.WriteString(" ")
		sb.WriteString(col.ty)
		if i < len(table.columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(") ENGINE = ")
	sb.WriteString(table.engine)
	if len(table.partition) > 0 {
		sb.WriteString(" PARTITION BY (")
		sb.WriteString(strings.Join(table.partition, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" ORDER BY (")
	sb.WriteString(strings.Join(table.order, ", "))
	sb.WriteString(")")
	return sb.String()
}

// insertSQL 批量插入语句
func (table clickhousebatchTable) insertSQL() string {
	names := make([]string, 0, len(table.columns))
	for _, col := range table.columns {
		names = append(names, col.name)
	}
	return "INSERT INTO " + table.name + " (" + strings.Join(names, ", ") + ")"
}

func (ckb *clickhousebatch) Connect(ctx context.Context) error {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: ckb.connect.addrs,
		Auth: clickhouse.Auth{
			Database: ckb.connect.database,
			Username: ckb.connect.username,
			Password: ckb.connect.password,
		},
	})
	if err != nil {
		return err
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return err
	}
	if err := conn.Exec(ctx, ckb.table.createSQL()); err != nil {
		conn.Close()
		return err
	}

	ckb.conn = conn
	log.Info().Str("mod", "clickhousebatch").Strs("addrs", ckb.connect.addrs).Str("table", ckb.table.name).Msg("connected")
	return nil
}

func (ckb *clickhousebatch) WriteBatch(ctx context.Context, msgs service.MessageBatch) error {
	if ckb.conn == nil {
		return service.ErrNotConnected
	}

	batch, err := ckb.conn.PrepareBatch(ctx, ckb.table.insertSQL())
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		structed, err := msg.AsStructured()
		if err != nil {
			batch.Abort()
			return err
		}
		asMap, ok := structed.(map[string]any)
		if !ok {
			batch.Abort()
			return fmt.Errorf("expect a json object, got %T", structed)
		}
		row, err := ckb.row(asMap)
		if err != nil {
			batch.Abort()
			return err
		}
		if err := batch.Append(row...); err != nil {
			batch.Abort()
			return err
		}
	}

	if err := batch.Send(); err != nil {
		return err
	}
	log.Debug().Str("mod", "clickhousebatch").Int("rows", len(msgs)).Msg("sent")
	return nil
}

// row 按列顺序取出一条任务的值
func (ckb *clickhousebatch) row(asMap map[string]any) ([]any, error) {
	row := make([]any, 0, len(ckb.table.columns))
	for _, col := range ckb.table.columns {
		v, err := columnValue(col.ty, asMap[col.name], ckb.dateFormat)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.name, err)
		}
		row = append(row, v)
	}
	return row, nil
}

func (ckb *clickhousebatch) Close(ctx context.Context) error {
	if ckb.conn == nil {
		return nil
	}
	return ckb.conn.Close()
}
