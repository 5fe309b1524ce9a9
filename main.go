/*
This is an example of application that will use the
engine package to play a scene of animated skeletons
*/
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-skeletal/engine"
	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spaghettifunk/anima-skeletal/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the testbed configuration")
	flag.Parse()

	config, err := testbed.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("%s not found, using the default configuration", *configPath)
		config, err = testbed.DefaultConfig(), nil
	}
	if err != nil {
		core.LogFatal("%s", err)
	}

	tb := testbed.NewTestGame(config)

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := engine.Initialize(); err != nil {
		_ = engine.Shutdown()
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the run loop on sigterm and other system calls
	go func() {
		<-sigCh
		engine.Quit()
	}()

	// run engine
	runErr := engine.Run()
	if err := engine.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
