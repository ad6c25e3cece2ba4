package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/benthosdev/benthos/v4/public/components/io"
	_ "github.com/benthosdev/benthos/v4/public/components/pure"

	_ "github.com/turnon/tasks/input"
	"github.com/turnon/tasks/local"
	_ "github.com/turnon/tasks/output"
	_ "github.com/turnon/tasks/processor"
	"github.com/turnon/tasks/server"
)

func main() {
	fmt.Printf("pid: %d\n", os.Getpid())

	serverCfgFile := flag.String("s", "", "server config, env and defaults are used when empty")
	localCfgFile := flag.String("l", "", "run a pipeline locally")
	anchorsFile := flag.String("a", "", "shared yaml anchors for the local pipeline")
	flag.Parse()

	if *localCfgFile != "" {
		local.Run(*localCfgFile, *anchorsFile)
		return
	}

	server.Run(*serverCfgFile)
}
