package tasklistinput

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/benthosdev/benthos/v4/public/service"
	"github.com/turnon/tasks/tasklist"
	"github.com/turnon/tasks/tasklist/common"
)

func seed(t *testing.T, cfg common.Config, tasks ...common.NewTask) {
	t.Helper()
	ctx := context.Background()
	list, err := tasklist.NewTaskList(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer list.Close(ctx)
	for _, nt := range tasks {
		if _, err := list.Create(ctx, nt); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTasklistInput(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tasks.sqlite3")
	seed(t, common.Config{Type: "sqlite", URL: dbPath},
		common.NewTask{Title: "task a", DueDate: "2024-01-01"},
		common.NewTask{Title: "other", DueDate: "2024-01-01"},
		common.NewTask{Title: "task b", DueDate: "2024-03-01"},
	)

	conf, err := tasklistConfigSpec.ParseYAML(fmt.Sprintf(`
store:
  type: sqlite
  url: %s
  batch_size: 1
query: task
sort: due_date
desc: true
`, dbPath), nil)
	if err != nil {
		t.Fatal(err)
	}
	in, err := newTasklistInput(conf)
	if err != nil {
		t.Fatal(err)
	}
	if err := in.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	defer in.Close(ctx)

	var ids []int64
	for {
		msg, ack, err := in.Read(ctx)
		if errors.Is(err, service.ErrEndOfInput) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		bytes, err := msg.AsBytes()
		if err != nil {
			t.Fatal(err)
		}
		var task common.Task
		if err := json.Unmarshal(bytes, &task); err != nil {
			t.Fatal(err)
		}
		if meta, _ := msg.MetaGet("task_id"); meta == "" {
			t.Fatal("missing task_id metadata")
		}
		ids = append(ids, task.ID)
		if err := ack(ctx, nil); err != nil {
			t.Fatal(err)
		}
	}

	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("got %v", ids)
	}
}

func TestTasklistInputInvalidSort(t *testing.T) {
	conf, err := tasklistConfigSpec.ParseYAML(`
store:
  type: memory
sort: priority
`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTasklistInput(conf); err == nil {
		t.Fatal("want error for invalid sort")
	}
}
