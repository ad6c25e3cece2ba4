package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist"
)

// mainServer 主服务器
type mainServer struct {
	cfg *config
}

// subordinate 从服务器
type subordinate interface {
	wait() chan struct{}
}

// Run 根据配置启动服务器，cfgPath为空时只用环境变量和缺省值
func Run(cfgPath string) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal().Str("mod", "server").Err(err).Msg("load config")
	}
	cfg.setupLog()

	srv := mainServer{cfg: cfg}
	<-srv.run()
}

// run 运行主服务器和从服务器
func (srv *mainServer) run() chan struct{} {
	ch := make(chan struct{})
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// 连接任务列表
	tasks, err := tasklist.NewTaskList(sigCtx, srv.cfg.Tasklist)
	if err != nil {
		log.Error().Str("mod", "server").Msgf("NewTaskList err: %v", err)
		stop()
		close(ch)
		return ch
	}
	log.Info().Str("mod", "server").Str("tasklist", srv.cfg.Tasklist.Type).Msg("tasklist ready")

	children := []subordinate{
		newApi(sigCtx, srv.cfg.Port, srv.cfg.PageSize, tasks),
	}

	// 等待从服务器退出后关闭任务列表
	go func() {
		defer stop()
		for _, child := range children {
			<-child.wait()
		}
		if err := tasks.Close(context.Background()); err != nil {
			log.Error().Str("mod", "server").Msgf("close tasklist: %v", err)
		}
		close(ch)
	}()

	return ch
}
