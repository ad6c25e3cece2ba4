package tasklist

import (
	"testing"

	"github.com/benthosdev/benthos/v4/public/service"
)

func TestStoreConfig(t *testing.T) {
	spec := service.NewConfigSpec().Field(StoreField("store"))

	conf, err := spec.ParseYAML(`
store:
  type: mysql
  url: root:secret@tcp(localhost:3306)/tasks
`, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := StoreConfig(conf, "store")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != "mysql" || cfg.URL != "root:secret@tcp(localhost:3306)/tasks" || cfg.BatchSize != 100 || cfg.DateFormat != "2006-01-02" {
		t.Fatalf("unexpected %+v", cfg)
	}

	conf, err = spec.ParseYAML(`store: {}`, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = StoreConfig(conf, "store")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != "sqlite" || cfg.URL != "tasks.sqlite3" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
