package tasklistoutput

import (
	"context"
	"encoding/json"

	"github.com/benthosdev/benthos/v4/public/service"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist"
	"github.com/turnon/tasks/tasklist/common"
)

var tasklistConfigSpec = service.NewConfigSpec().
	Summary("Creates an output that adds tasks to a tasklist").
	Field(tasklist.StoreField("store")).
	Field(service.NewBoolField("skip_invalid").Default(true))

func init() {
	err := service.RegisterOutput(
		"tasklist",
		tasklistConfigSpec,
		func(conf *service.ParsedConfig, mgr *service.Resources) (out service.Output, maxInFlight int, err error) {
			tlo, err := newTasklistOutput(conf)
			if err != nil {
				return nil, 1, err
			}
			return tlo, 1, nil
		},
	)
	if err != nil {
		panic(err)
	}
}

func newTasklistOutput(conf *service.ParsedConfig) (*tasklistOutput, error) {
	store, err := tasklist.StoreConfig(conf, "store")
	if err != nil {
		return nil, err
	}
	skipInvalid, err := conf.FieldBool("skip_invalid")
	if err != nil {
		return nil, err
	}
	return &tasklistOutput{store: store, skipInvalid: skipInvalid}, nil
}

//------------------------------------------------------------------------------

type tasklistOutput struct {
	store       common.Config
	skipInvalid bool

	tasks   common.Tasklist
	created int
	skipped int
}

func (out *tasklistOutput) Connect(ctx context.Context) error {
	tasks, err := tasklist.NewTaskList(ctx, out.store)
	if err != nil {
		return err
	}
	out.tasks = tasks
	return nil
}

func (out *tasklistOutput) Write(ctx context.Context, msg *service.Message) error {
	if out.tasks == nil {
		return service.ErrNotConnected
	}

	bytes, err := msg.AsBytes()
	if err != nil {
		return err
	}

	var nt common.NewTask
	if err := json.Unmarshal(bytes, &nt); err != nil {
		return out.invalid(err, bytes)
	}

	id, err := out.tasks.Create(ctx, nt)
	if common.IsValidation(err) {
		return out.invalid(err, bytes)
	}
	if err != nil {
		return err
	}

	out.created++
	log.Debug().Str("mod", "tasklistoutput").Int64("task_id", id).Msg("created")
	return nil
}

// invalid 跳过或拒绝无法建成任务的消息
func (out *tasklistOutput) invalid(err error, bytes []byte) error {
	if !out.skipInvalid {
		return err
	}
	out.skipped++
	log.Warn().Str("mod", "tasklistoutput").Err(err).Bytes("msg", bytes).Msg("skip invalid task")
	return nil
}

func (out *tasklistOutput) Close(ctx context.Context) error {
	if out.tasks == nil {
		return nil
	}
	log.Info().Str("mod", "tasklistoutput").Int("created", out.created).Int("skipped", out.skipped).Send()
	return out.tasks.Close(ctx)
}
