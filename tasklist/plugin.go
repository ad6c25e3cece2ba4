package tasklist

import (
	"github.com/benthosdev/benthos/v4/public/service"
	"github.com/turnon/tasks/tasklist/common"
)

// StoreField benthos插件共用的存储配置字段
func StoreField(name string) *service.ConfigField {
	return service.NewObjectField(
		name,
		service.NewStringField("type").Default(common.DefaultType),
		service.NewStringField("url").Default(""),
		service.NewStringField("date_format").Default(common.DefaultDateFormat),
		service.NewIntField("batch_size").Default(common.DefaultBatchSize),
	).Description("Where tasks are stored")
}

// StoreConfig 从benthos配置中读取存储配置
func StoreConfig(conf *service.ParsedConfig, name string) (common.Config, error) {
	var cfg common.Config

	ty, err := conf.FieldString(name, "type")
	if err != nil {
		return cfg, err
	}
	url, err := conf.FieldString(name, "url")
	if err != nil {
		return cfg, err
	}
	dateFormat, err := conf.FieldString(name, "date_format")
	if err != nil {
		return cfg, err
	}
	batchSize, err := conf.FieldInt(name, "batch_size")
	if err != nil {
		return cfg, err
	}

	cfg = common.Config{Type: ty, URL: url, DateFormat: dateFormat, BatchSize: batchSize}
	return cfg.WithDefaults(), nil
}
