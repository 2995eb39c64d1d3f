package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/expense-categorizer/cmd/classify"
	"fjacquet/expense-categorizer/cmd/confirm"
	"fjacquet/expense-categorizer/cmd/export"
	"fjacquet/expense-categorizer/cmd/importer"
	"fjacquet/expense-categorizer/cmd/list"
	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/cmd/rules"
	"fjacquet/expense-categorizer/cmd/serve"
	"fjacquet/expense-categorizer/cmd/summary"
	"fjacquet/expense-categorizer/cmd/worker"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(confirm.Cmd)
	root.Cmd.AddCommand(list.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(importer.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(worker.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
