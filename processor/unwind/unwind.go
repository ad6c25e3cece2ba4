package unwind

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benthosdev/benthos/v4/public/service"
)

var unwindConfigSpec = service.NewConfigSpec().
	Summary("Splits an array field into one message per element").
	Field(service.NewStringField("field")).
	Field(service.NewBoolField("as_root").Default(true).
		Description("Emit each element as the whole message instead of replacing the field"))

func init() {
	constructor := func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
		return newUnwindProcessor(conf)
	}

	err := service.RegisterProcessor("unwind", unwindConfigSpec, constructor)
	if err != nil {
		panic(err)
	}
}

func newUnwindProcessor(conf *service.ParsedConfig) (*unwindProcessor, error) {
	field, err := conf.FieldString("field")
	if err != nil {
		return nil, err
	}
	asRoot, err := conf.FieldBool("as_root")
	if err != nil {
		return nil, err
	}
	return &unwindProcessor{field: field, asRoot: asRoot}, nil
}

//------------------------------------------------------------------------------

type unwindProcessor struct {
	field  string
	asRoot bool
}

func (un *unwindProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	structed, err := msg.AsStructured()
	if err != nil {
		return nil, err
	}
	msgAsMap, ok := structed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expect a json object, got %T", structed)
	}
	valueMaybeArray := msgAsMap[un.field]
	if valueMaybeArray == nil {
		return []*service.Message{msg}, nil
	}

	valueAsArray, ok := valueMaybeArray.([]any)
	if !ok {
		return nil, fmt.Errorf("field %s is %T, not an array", un.field, valueMaybeArray)
	}
	msgs := make([]*service.Message, 0, len(valueAsArray))
	for _, element := range valueAsArray {
		var out any = element
		if !un.asRoot {
			msgAsMap[un.field] = element
			out = msgAsMap
		}
		bytes, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, service.NewMessage(bytes))
	}

	return msgs, nil
}

func (un *unwindProcessor) Close(ctx context.Context) error {
	return nil
}
