package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const userConfigPath = "~/.config/frameclock/demo.json"

func main() {
	var cli CLI
	parser, err := newParser(&cli, userConfigPath)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	// The terminal UI owns stdout; only headless runs log to the console
	var fallback io.Writer = io.Discard
	if cli.Headless {
		fallback = os.Stderr
	}
	logFile := setupLogging(cli.Debug, fallback)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, &cli)
	stop()

	if logFile != nil {
		logFile.Close()
	}
	kctx.FatalIfErrorf(err)
}
