package stdoutvertical

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/benthosdev/benthos/v4/public/service"
)

// 任务字段按固定顺序打印，其余字段排在后面
var leadingKeys = []string{"task_id", "title", "description", "due_date"}

func init() {
	err := service.RegisterOutput(
		"stdoutvertical",
		service.NewConfigSpec().
			Summary("Prints each task vertically, one field per line").
			Field(service.NewBoolField("meta").Default(false)),
		func(conf *service.ParsedConfig, mgr *service.Resources) (out service.Output, maxInFlight int, err error) {
			meta, err := conf.FieldBool("meta")
			if err != nil {
				return nil, 1, err
			}
			return &stdoutvertical{meta: meta, w: os.Stdout}, 1, nil
		},
	)
	if err != nil {
		panic(err)
	}
}

//------------------------------------------------------------------------------

type stdoutvertical struct {
	count uint64
	meta  bool
	w     io.Writer
}

func (stdver *stdoutvertical) Connect(ctx context.Context) error {
	return nil
}

func (stdver *stdoutvertical) Write(ctx context.Context, msg *service.Message) error {
	structed, err := msg.AsStructured()
	if err != nil {
		return err
	}

	asMap, ok := structed.(map[string]any)
	if !ok {
		return fmt.Errorf("expect a json object, got %T", structed)
	}

	stdver.count += 1

	sb := &strings.Builder{}
	sb.WriteString("Task ")
	sb.WriteString(strconv.FormatUint(stdver.count, 10))
	sb.WriteString(":")
	titleLen := sb.Len()
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", titleLen))
	sb.WriteString("\n")
	for _, k := range orderedKeys(asMap) {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(fmt.Sprintf("%v", asMap[k]))
		sb.WriteString("\n")
	}

	if stdver.meta {
		sb.WriteString("---\n")
		msg.MetaWalk(func(k string, v string) error {
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\n")
			return nil
		})
	}

	_, err = fmt.Fprintln(stdver.w, sb)
	return err
}

func (stdver *stdoutvertical) Close(ctx context.Context) error {
	return nil
}

// orderedKeys 先任务字段，再按字母序的其它字段
func orderedKeys(asMap map[string]any) []string {
	keys := make([]string, 0, len(asMap))
	for _, k := range leadingKeys {
		if _, ok := asMap[k]; ok {
			keys = append(keys, k)
		}
	}

	rest := make([]string, 0, len(asMap)-len(keys))
	for k := range asMap {
		if !isLeading(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func isLeading(k string) bool {
	for _, lk := range leadingKeys {
		if k == lk {
			return true
		}
	}
	return false
}
