package clickhousebatch

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewClickhousebatchDefaults(t *testing.T) {
	conf, err := clickhousebatchConfigSpec.ParseYAML(`
connect:
  addrs: [ "localhost:9000" ]
`, nil)
	if err != nil {
		t.Fatal(err)
	}
	ckb, err := newClickhousebatch(conf)
	if err != nil {
		t.Fatal(err)
	}

	if ckb.connect.database != "default" || ckb.table.name != "tasks" || len(ckb.table.columns) != 4 {
		t.Fatalf("unexpected %+v", ckb)
	}

	wantCreate := "CREATE TABLE IF NOT EXISTS tasks (\n" +
		"  task_id Int64,\n" +
		"  title String,\n" +
		"  description String,\n" +
		"  due_date Date\n" +
		") ENGINE = MergeTree() ORDER BY (task_id)"
	if got := ckb.table.createSQL(); got != wantCreate {
		t.Fatalf("got\n%s\nwant\n%s", got, wantCreate)
	}
	if got := ckb.table.insertSQL(); got != "INSERT INTO tasks (task_id, title, description, due_date)" {
		t.Fatalf("insert: %s", got)
	}
}

func TestCreateSQLPartition(t *testing.T) {
	table := clickhousebatchTable{
		name:      "report",
		columns:   []clickhousebatchTableColumn{{name: "due_date", ty: "Date"}},
		engine:    "ReplacingMergeTree()",
		order:     []string{"due_date"},
		partition: []string{"toYYYYMM(due_date)"},
	}
	want := "CREATE TABLE IF NOT EXISTS report (\n  due_date Date\n) ENGINE = ReplacingMergeTree() PARTITION BY (toYYYYMM(due_date)) ORDER BY (due_date)"
	if got := table.createSQL(); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestRow(t *testing.T) {
	ckb := &clickhousebatch{
		table: clickhousebatchTable{columns: []clickhousebatchTableColumn{
			{name: "task_id", ty: "Int64"},
			{name: "title", ty: "String"},
			{name: "description", ty: "Nullable(String)"},
			{name: "due_date", ty: "Date"},
		}},
		dateFormat: "2006-01-02",
	}

	row, err := ckb.row(map[string]any{"task_id": json.Number("7"), "title": "t", "due_date": "2024-05-01"})
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != int64(7) || row[1] != "t" || row[2] != nil || !row[3].(time.Time).Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected %v", row)
	}

	if _, err := ckb.row(map[string]any{"task_id": 1.0, "due_date": "01-05-2024"}); err == nil {
		t.Fatal("want date error")
	}
}

func TestColumnValue(t *testing.T) {
	tests := []struct {
		ty   string
		in   any
		want any
	}{
		{"String", nil, ""},
		{"String", 3.5, "3.5"},
		{"LowCardinality(String)", "x", "x"},
		{"Int64", 12.0, int64(12)},
		{"Int64", nil, int64(0)},
		{"UInt8", "3", uint8(3)},
		{"Float64", json.Number("1.5"), 1.5},
		{"Nullable(Int64)", nil, nil},
	}
	for _, tt := range tests {
		got, err := columnValue(tt.ty, tt.in, "2006-01-02")
		if err != nil {
			t.Fatalf("%s %v: %v", tt.ty, tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%s %v: got %v (%T), want %v", tt.ty, tt.in, got, got, tt.want)
		}
	}

	if _, err := columnValue("Array(String)", nil, "2006-01-02"); err == nil {
		t.Fatal("want unsupported type error")
	}
}
