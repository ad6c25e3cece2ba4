// Package tasklisttest 各个任务存储共用的行为测试
package tasklisttest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/turnon/tasks/tasklist/common"
)

// Run 对一个空的任务列表执行全部用例，newList每次返回一个新的空列表
func Run(t *testing.T, newList func(t *testing.T) common.Tasklist) {
	cases := []struct {
		name string
		fn   func(*testing.T, common.Tasklist)
	}{
		{"CreateRoundTrip", testCreateRoundTrip},
		{"CreateInvalid", testCreateInvalid},
		{"IdsNotReused", testIdsNotReused},
		{"AllInIdOrder", testAllInIdOrder},
		{"NotFound", testNotFound},
		{"UpdatePartial", testUpdatePartial},
		{"UpdateInvalidKeepsRecord", testUpdateInvalidKeepsRecord},
		{"Delete", testDelete},
		{"Search", testSearch},
		{"SearchSort", testSearchSort},
		{"SearchInvalidSort", testSearchInvalidSort},
		{"SearchManyBatches", testSearchManyBatches},
		{"SearchStableAcrossDeletes", testSearchStableAcrossDeletes},
		{"SearchStableSortedText", testSearchStableSortedText},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			list := newList(t)
			defer list.Close(context.Background())
			c.fn(t, list)
		})
	}
}

func mustCreate(t *testing.T, list common.Tasklist, title, desc, due string) int64 {
	t.Helper()
	id, err := list.Create(context.Background(), common.NewTask{Title: title, Description: desc, DueDate: due})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return id
}

func ids(tasks []common.Task) []int64 {
	res := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

func equalIds(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testCreateRoundTrip(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	for _, due := range []string{"2024-01-01", "2000-02-29", "2031-12-31"} {
		id := mustCreate(t, list, "title "+due, "", due)
		got, err := list.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		want := common.Task{ID: id, Title: "title " + due, DueDate: due}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	}
}

func testCreateInvalid(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	bad := []common.NewTask{
		{Title: "a", DueDate: "2024-13-40"},
		{Title: "a", DueDate: "01-01-2024"},
		{Title: "a"},
		{DueDate: "2024-01-01"},
	}
	for _, nt := range bad {
		if _, err := list.Create(ctx, nt); !common.IsValidation(err) {
			t.Errorf("%+v: want ValidationError, got %v", nt, err)
		}
	}
	all, err := list.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("invalid creates persisted %v", all)
	}
}

func testIdsNotReused(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	first := mustCreate(t, list, "a", "", "2024-01-01")
	second := mustCreate(t, list, "b", "", "2024-01-01")
	if second <= first {
		t.Fatalf("ids not increasing: %d, %d", first, second)
	}
	if _, err := list.Delete(ctx, second); err != nil {
		t.Fatal(err)
	}
	third := mustCreate(t, list, "c", "", "2024-01-01")
	if third == second || third == first {
		t.Fatalf("id %d reused", third)
	}
}

func testAllInIdOrder(t *testing.T, list common.Tasklist) {
	want := []int64{
		mustCreate(t, list, "z", "", "2024-05-01"),
		mustCreate(t, list, "a", "", "2024-01-01"),
		mustCreate(t, list, "m", "", "2024-03-01"),
	}
	all, err := list.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !equalIds(ids(all), want) {
		t.Fatalf("got %v, want %v", ids(all), want)
	}
}

func testNotFound(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	if _, err := list.Get(ctx, 404); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("get: %v", err)
	}
	title := "x"
	if _, err := list.Update(ctx, 404, common.TaskUpdate{Title: &title}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("update: %v", err)
	}
	existed, err := list.Delete(ctx, 404)
	if err != nil || existed {
		t.Errorf("delete: %v %v", existed, err)
	}
}

func testUpdatePartial(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	id := mustCreate(t, list, "old", "keep me", "2024-01-01")
	title := "X"
	for i := 0; i < 2; i++ {
		got, err := list.Update(ctx, id, common.TaskUpdate{Title: &title})
		if err != nil {
			t.Fatal(err)
		}
		want := common.Task{ID: id, Title: "X", Description: "keep me", DueDate: "2024-01-01"}
		if got != want {
			t.Fatalf("round %d: got %+v, want %+v", i, got, want)
		}
	}

	due := "2025-06-30"
	desc := ""
	got, err := list.Update(ctx, id, common.TaskUpdate{DueDate: &due, Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	stored, err := list.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got != stored || stored.DueDate != due || stored.Description != "" || stored.Title != "X" {
		t.Fatalf("got %+v, stored %+v", got, stored)
	}
}

func testUpdateInvalidKeepsRecord(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	id := mustCreate(t, list, "t", "d", "2024-01-01")
	due := "2024-02-30"
	title := "changed"
	_, err := list.Update(ctx, id, common.TaskUpdate{Title: &title, DueDate: &due})
	var ve *common.ValidationError
	if !errors.As(err, &ve) || ve.Field != "due_date" {
		t.Fatalf("want due_date ValidationError, got %v", err)
	}
	got, err := list.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "t" || got.DueDate != "2024-01-01" {
		t.Fatalf("failed update was persisted: %+v", got)
	}
}

func testDelete(t *testing.T, list common.Tasklist) {
	ctx := context.Background()
	id := mustCreate(t, list, "t", "", "2024-01-01")
	existed, err := list.Delete(ctx, id)
	if err != nil || !existed {
		t.Fatalf("first delete: %v %v", existed, err)
	}
	if _, err := list.Get(ctx, id); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	existed, err = list.Delete(ctx, id)
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
}

func search(t *testing.T, list common.Tasklist, q common.SearchQuery) []common.Task {
	t.Helper()
	ctx := context.Background()
	cur, err := list.Search(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()
	res, err := common.Drain(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func testSearch(t *testing.T, list common.Tasklist) {
	mine := mustCreate(t, list, "my task", "", "2024-01-01")
	mustCreate(t, list, "other", "", "2024-01-01")
	described := mustCreate(t, list, "third", "a task in the description", "2024-01-01")
	mustCreate(t, list, "Task upper", "", "2024-01-01")

	got := search(t, list, common.SearchQuery{Query: "task"})
	if !equalIds(ids(got), []int64{mine, described}) {
		t.Fatalf("got %v", ids(got))
	}
}

func testSearchSort(t *testing.T, list common.Tasklist) {
	a := mustCreate(t, list, "task a", "", "2024-01-01")
	b := mustCreate(t, list, "task b", "", "2024-03-01")
	c := mustCreate(t, list, "task c", "", "2024-01-01")
	d := mustCreate(t, list, "task d", "", "2024-03-01")
	mustCreate(t, list, "nope", "", "2030-01-01")

	got := search(t, list, common.SearchQuery{Query: "task", SortBy: common.SortDueDate, SortDesc: true})
	if want := []int64{b, d, a, c}; !equalIds(ids(got), want) {
		t.Fatalf("desc: got %v, want %v", ids(got), want)
	}

	got = search(t, list, common.SearchQuery{Query: "task", SortBy: common.SortDueDate})
	if want := []int64{a, c, b, d}; !equalIds(ids(got), want) {
		t.Fatalf("asc: got %v, want %v", ids(got), want)
	}

	got = search(t, list, common.SearchQuery{Query: "task", SortBy: common.SortTitle, SortDesc: true})
	if want := []int64{d, c, b, a}; !equalIds(ids(got), want) {
		t.Fatalf("title desc: got %v, want %v", ids(got), want)
	}
}

func testSearchInvalidSort(t *testing.T, list common.Tasklist) {
	_, err := list.Search(context.Background(), common.SearchQuery{Query: "x", SortBy: "priority"})
	var se *common.InvalidSortError
	if !errors.As(err, &se) {
		t.Fatalf("want InvalidSortError, got %v", err)
	}
}

func testSearchManyBatches(t *testing.T, list common.Tasklist) {
	var want []int64
	for i := 0; i < 250; i++ {
		title := "filler"
		if i%7 == 0 {
			title = "needle"
		}
		id := mustCreate(t, list, title, "", "2024-01-01")
		if title == "needle" {
			want = append(want, id)
		}
	}

	ctx := context.Background()
	cur, err := list.Search(ctx, common.SearchQuery{Query: "needle", SortBy: common.SortTaskID})
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()
	got, err := common.Drain(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	if !equalIds(ids(got), want) {
		t.Fatalf("got %d matches, want %d", len(got), len(want))
	}

	cur.Reset()
	again, err := common.Drain(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	if !equalIds(ids(again), want) {
		t.Fatal("cursor did not restart")
	}
}

// 已读过的任务被删除后，后续批次既不跳过也不重复
func testSearchStableAcrossDeletes(t *testing.T, list common.Tasklist) {
	var created []int64
	for i := 0; i < 150; i++ {
		created = append(created, mustCreate(t, list, "task", "", "2024-01-01"))
	}

	ctx := context.Background()
	cur, err := list.Search(ctx, common.SearchQuery{Query: "task"})
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()

	for i, id := range created[:50] {
		task, err := cur.Next(ctx)
		if err != nil || task.ID != id {
			t.Fatalf("position %d: %v %v", i, task, err)
		}
	}
	for _, id := range created[:50] {
		if _, err := list.Delete(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	rest, err := common.Drain(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	if !equalIds(ids(rest), created[50:]) {
		t.Fatalf("got %d tasks after deletes, want %d", len(rest), len(created)-50)
	}
}

// 按文本倒序且有重复值时，分批读取与一次读取的顺序一致
func testSearchStableSortedText(t *testing.T, list common.Tasklist) {
	titles := []string{"b", "a", "c", "b", "a", "c", "b"}
	var created []int64
	for i := 0; i < 40; i++ {
		created = append(created, mustCreate(t, list, titles[i%len(titles)], "", "2024-01-01"))
	}

	ctx := context.Background()
	all, err := list.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	less := common.Less(common.SortTitle, true)
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })

	got := search(t, list, common.SearchQuery{SortBy: common.SortTitle, SortDesc: true})
	if !equalIds(ids(got), ids(all)) {
		t.Fatalf("got %v, want %v", ids(got), ids(all))
	}
}
