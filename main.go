package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/ledger-import/cmd/classify"
	"fjacquet/ledger-import/cmd/ingest"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/cmd/serve"
	"fjacquet/ledger-import/cmd/summary"
	"fjacquet/ledger-import/cmd/watch"
	"fjacquet/ledger-import/internal/config"
)

func init() {
	// .env must be loaded before any flag default or logger reads the environment
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(watch.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Cmd.ExecuteContext(ctx)
	stop()
	if closeErr := root.Close(); closeErr != nil {
		root.Log.WithError(closeErr).Warn("Shutdown incomplete")
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
