package tasklistinput

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/benthosdev/benthos/v4/public/service"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist"
	"github.com/turnon/tasks/tasklist/common"
)

// 注册----------

var tasklistConfigSpec = service.NewConfigSpec().
	Summary("Creates an input that reads tasks from a tasklist").
	Field(tasklist.StoreField("store")).
	Field(service.NewStringField("query").Default("")).
	Field(service.NewStringField("sort").Default("")).
	Field(service.NewBoolField("desc").Default(false))

func newTasklistInput(conf *service.ParsedConfig) (service.Input, error) {
	store, err := tasklist.StoreConfig(conf, "store")
	if err != nil {
		return nil, err
	}
	query, err := conf.FieldString("query")
	if err != nil {
		return nil, err
	}
	sort, err := conf.FieldString("sort")
	if err != nil {
		return nil, err
	}
	sortBy, err := common.ParseSortField(sort)
	if err != nil {
		return nil, err
	}
	desc, err := conf.FieldBool("desc")
	if err != nil {
		return nil, err
	}

	return service.AutoRetryNacks(&tasklistInput{
		store: store,
		query: common.SearchQuery{Query: query, SortBy: sortBy, SortDesc: desc},
	}), nil
}

func init() {
	err := service.RegisterInput(
		"tasklist",
		tasklistConfigSpec,
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Input, error) {
			return newTasklistInput(conf)
		},
	)
	if err != nil {
		panic(err)
	}
}

// 实现----------

type tasklistInput struct {
	store common.Config
	query common.SearchQuery

	tasks common.Tasklist
	cur   common.Cursor
	count int
}

func (in *tasklistInput) Connect(ctx context.Context) error {
	tasks, err := tasklist.NewTaskList(ctx, in.store)
	if err != nil {
		return err
	}

	cur, err := tasks.Search(ctx, in.query)
	if err != nil {
		tasks.Close(ctx)
		return err
	}

	in.tasks, in.cur = tasks, cur
	debugf("reading %s tasklist, query %q", in.store.Type, in.query.Query)
	return nil
}

func (in *tasklistInput) Read(ctx context.Context) (*service.Message, service.AckFunc, error) {
	if in.cur == nil {
		return nil, nil, service.ErrNotConnected
	}

	t, err := in.cur.Next(ctx)
	if errors.Is(err, io.EOF) {
		debugf("read %d tasks", in.count)
		return nil, nil, service.ErrEndOfInput
	}
	if err != nil {
		return nil, nil, err
	}
	in.count++

	bytes, err := json.Marshal(t)
	if err != nil {
		return nil, nil, err
	}

	msg := service.NewMessage(bytes)
	msg.MetaSet("task_id", strconv.FormatInt(t.ID, 10))
	return msg, func(ctx context.Context, err error) error {
		return nil
	}, nil
}

func (in *tasklistInput) Close(ctx context.Context) error {
	if in.cur != nil {
		in.cur.Close()
	}
	if in.tasks == nil {
		return nil
	}
	return in.tasks.Close(ctx)
}

func debugf(str string, v ...any) {
	log.Debug().Str("mod", "tasklistinput").Msgf(str, v...)
}
