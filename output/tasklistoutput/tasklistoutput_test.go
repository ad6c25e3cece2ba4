package tasklistoutput

import (
	"context"
	"testing"

	"github.com/benthosdev/benthos/v4/public/service"
)

func parse(t *testing.T, yml string) *tasklistOutput {
	t.Helper()
	conf, err := tasklistConfigSpec.ParseYAML(yml, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := newTasklistOutput(conf)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestTasklistOutput(t *testing.T) {
	ctx := context.Background()
	out := parse(t, "store:\n  type: memory\n")
	if err := out.Write(ctx, service.NewMessage([]byte(`{}`))); err == nil {
		t.Fatal("want error before connect")
	}
	if err := out.Connect(ctx); err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{
		`{"title": "seeded", "description": "from generate", "due_date": "2024-06-01"}`,
		`{"title": "second", "due_date": "2024-06-02", "extra": true}`,
		`{"title": "", "due_date": "2024-06-02"}`,
		`{"title": "bad date", "due_date": "tomorrow"}`,
		`not json`,
	} {
		if err := out.Write(ctx, service.NewMessage([]byte(raw))); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
	}

	all, err := out.tasks.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Title != "seeded" || all[1].ID != 2 {
		t.Fatalf("got %+v", all)
	}
	if out.created != 2 || out.skipped != 3 {
		t.Fatalf("created %d skipped %d", out.created, out.skipped)
	}
	if err := out.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestTasklistOutputStrict(t *testing.T) {
	ctx := context.Background()
	out := parse(t, "store:\n  type: memory\nskip_invalid: false\n")
	if err := out.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	defer out.Close(ctx)

	if err := out.Write(ctx, service.NewMessage([]byte(`{"title": "x", "due_date": "2024-02-30"}`))); err == nil {
		t.Fatal("want validation error")
	}
}
