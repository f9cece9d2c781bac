/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-core/engine"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer"
	"github.com/spaghettifunk/anima-core/testbed"
)

const defaultConfigPath = "anima.toml"

func loadConfig() (*core.EngineConfig, string, error) {
	path := defaultConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := core.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) && len(os.Args) <= 1 {
		core.LogWarn("no %s found, using the default configuration", path)
		return core.DefaultEngineConfig(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	cfg, path, err := loadConfig()
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	tb, err := testbed.NewTestGame()
	if err != nil {
		core.LogFatal(err.Error())
	}

	var opts []engine.Option
	if path != "" {
		opts = append(opts, engine.WithConfigWatch(path))
	}
	e, err := engine.New(tb.Game, cfg, renderer.NewHeadlessBackend(), opts...)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// capture sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
