package local

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benthosdev/benthos/v4/public/service"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/util"
)

// Run 在本地运行一条benthos流水线，anchorsPath非空时先展开公共锚点
func Run(path string, anchorsPath string) {
	ymlStr, err := loadYaml(path, anchorsPath)
	if err != nil {
		logFatal(err)
	}

	builder := service.NewStreamBuilder()

	if err = builder.SetYAML(ymlStr); err != nil {
		logFatal(err)
	}

	stream, err := builder.Build()
	if err != nil {
		logFatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("mod", "local").Str("path", path).Msg("running pipeline")
	if err = stream.Run(ctx); err != nil && ctx.Err() == nil {
		logFatal(err)
	}
}

// loadYaml 读取流水线配置
func loadYaml(path string, anchorsPath string) (string, error) {
	bytesArr, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if anchorsPath == "" {
		return string(bytesArr), nil
	}

	anchors, err := os.ReadFile(anchorsPath)
	if err != nil {
		return "", err
	}
	return util.MergeYamlAnchors(string(anchors), string(bytesArr))
}

func logFatal(err error) {
	log.Fatal().Stack().Err(err).Send()
}
