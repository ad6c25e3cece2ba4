package common

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDueDate(t *testing.T) {
	v := Validator{DateFormat: DefaultDateFormat}

	for _, ok := range []string{"2024-01-01", "2000-02-29", "1999-12-31"} {
		if err := v.ValidateDueDate(ok); err != nil {
			t.Errorf("%s: unexpected error %v", ok, err)
		}
	}

	for _, bad := range []string{"2024-13-40", "01-01-2024", "2023-02-29", "2024-1-5", "", "tomorrow", "2024-01-01T00:00:00"} {
		err := v.ValidateDueDate(bad)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%q: want ValidationError, got %v", bad, err)
			continue
		}
		if ve.Field != "due_date" {
			t.Errorf("%q: field %s", bad, ve.Field)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	v := Validator{}
	err := v.Validate(Task{Title: "  ", DueDate: "2024-01-01"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("want title ValidationError, got %v", err)
	}
	if err := v.Validate(Task{Title: "x", DueDate: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}
}

func TestTaskUpdateApply(t *testing.T) {
	orig := Task{ID: 7, Title: "a", Description: "d", DueDate: "2024-01-01"}
	title := "X"
	u := TaskUpdate{Title: &title}

	once := u.Apply(orig)
	twice := u.Apply(once)
	want := Task{ID: 7, Title: "X", Description: "d", DueDate: "2024-01-01"}
	if once != want || twice != want {
		t.Fatalf("got %+v / %+v, want %+v", once, twice, want)
	}
	if (TaskUpdate{}).Apply(orig) != orig {
		t.Fatal("empty update changed the task")
	}
}

func TestDecodeTaskUpdate(t *testing.T) {
	u, err := DecodeTaskUpdate(strings.NewReader(`{"description": "new"}`))
	if err != nil {
		t.Fatal(err)
	}
	if u.Title != nil || u.DueDate != nil || u.Description == nil || *u.Description != "new" {
		t.Fatalf("unexpected update %+v", u)
	}

	cases := map[string]string{
		`{"invalid_field": "v"}`: "invalid_field",
		`{"task_id": 3}`:         "task_id",
	}
	for body, field := range cases {
		_, err := DecodeTaskUpdate(strings.NewReader(body))
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Errorf("%s: want ValidationError on %s, got %v", body, field, err)
		}
	}

	nulls := []struct{ body, field string }{
		{`{"title": null}`, "title"},
		{`{"due_date": null, "title": "x"}`, "due_date"},
		{`{"description": "d", "title": null}`, "title"},
	}
	for _, tt := range nulls {
		_, err := DecodeTaskUpdate(strings.NewReader(tt.body))
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tt.field {
			t.Errorf("%s: want ValidationError on %s, got %v", tt.body, tt.field, err)
		}
	}

	u, err = DecodeTaskUpdate(strings.NewReader(`{"description": null}`))
	if err != nil || !u.IsEmpty() {
		t.Fatalf("null description: %+v %v", u, err)
	}

	if _, err := DecodeTaskUpdate(strings.NewReader(`{`)); err == nil || IsValidation(err) {
		t.Fatalf("want syntax error, got %v", err)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Type != "sqlite" || cfg.URL != "tasks.sqlite3" || cfg.DateFormat != "2006-01-02" || cfg.BatchSize != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	cfg = Config{Type: "pg", URL: "postgres://x", BatchSize: 5}.WithDefaults()
	if cfg.URL != "postgres://x" || cfg.BatchSize != 5 {
		t.Fatalf("overrode explicit values %+v", cfg)
	}
}
