package common

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
)

func TestMatches(t *testing.T) {
	tasks := []Task{{ID: 1, Title: "my task"}, {ID: 2, Title: "other"}}
	var got []int64
	for _, task := range tasks {
		if Matches(task, "task") {
			got = append(got, task.ID)
		}
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v", got)
	}

	if !Matches(Task{Title: "x", Description: "has Task inside"}, "Task") {
		t.Fatal("description should match")
	}
	if Matches(Task{Title: "Task"}, "task") {
		t.Fatal("match must be case-sensitive")
	}
}

func TestParseSortField(t *testing.T) {
	for _, name := range []string{"", "title", "description", "due_date", "task_id"} {
		if _, err := ParseSortField(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	_, err := ParseSortField("priority")
	var se *InvalidSortError
	if !errors.As(err, &se) || se.Field != "priority" {
		t.Fatalf("want InvalidSortError, got %v", err)
	}
}

func TestLessDueDateDesc(t *testing.T) {
	tasks := []Task{
		{ID: 1, DueDate: "2024-01-01"},
		{ID: 2, DueDate: "2024-03-01"},
		{ID: 3, DueDate: "2024-01-01"},
		{ID: 4, DueDate: "2024-03-01"},
	}
	sort.SliceStable(tasks, func(i, j int) bool { return Less(SortDueDate, true)(tasks[i], tasks[j]) })

	want := []int64{2, 4, 1, 3}
	for i, task := range tasks {
		if task.ID != want[i] {
			t.Fatalf("position %d: got %d, want %d", i, task.ID, want[i])
		}
	}
}

func TestBatchCursor(t *testing.T) {
	all := make([]Task, 0, 25)
	for i := 1; i <= 25; i++ {
		title := "odd"
		if i%2 == 0 {
			title = "even"
		}
		all = append(all, Task{ID: int64(i), Title: title})
	}

	fetches := 0
	var afters []int64
	fetch := func(ctx context.Context, after *Task, limit int) ([]Task, error) {
		fetches++
		if limit != 10 {
			t.Fatalf("limit %d", limit)
		}
		start := 0
		if after != nil {
			afters = append(afters, after.ID)
			start = int(after.ID)
		}
		if start >= len(all) {
			return nil, nil
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		return all[start:end], nil
	}

	cur := NewBatchCursor(fetch, 10, func(task Task) bool { return Matches(task, "even") })
	got, err := Drain(context.Background(), cur)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 12 || got[0].ID != 2 || got[11].ID != 24 {
		t.Fatalf("unexpected result %v", got)
	}
	if fetches != 3 {
		t.Fatalf("fetched %d batches, want 3", fetches)
	}
	if len(afters) != 2 || afters[0] != 10 || afters[1] != 20 {
		t.Fatalf("batches continued after %v, want [10 20]", afters)
	}

	if _, err := cur.Next(context.Background()); err != io.EOF {
		t.Fatalf("want io.EOF after drain, got %v", err)
	}

	afters = nil
	cur.Reset()
	first, err := cur.Next(context.Background())
	if err != nil || first.ID != 2 {
		t.Fatalf("reset: got %v %v", first, err)
	}
	if len(afters) != 0 {
		t.Fatalf("reset continued after %v", afters)
	}
	cur.Close()
	if _, err := cur.Next(context.Background()); err != io.EOF {
		t.Fatalf("want io.EOF after close, got %v", err)
	}
}

func TestBatchCursorFetchError(t *testing.T) {
	boom := errors.New("boom")
	cur := NewBatchCursor(func(context.Context, *Task, int) ([]Task, error) { return nil, boom }, 5, nil)
	if _, err := cur.Next(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestSortFieldKey(t *testing.T) {
	task := Task{ID: 4, Title: "t", Description: "d", DueDate: "2024-01-01"}
	for field, want := range map[SortField]string{
		SortTitle:       "t",
		SortDescription: "d",
		SortDueDate:     "2024-01-01",
		SortTaskID:      "",
	} {
		if got := field.Key(task); got != want {
			t.Errorf("%s: got %q, want %q", field, got, want)
		}
	}
}
