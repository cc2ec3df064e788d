// Command filterctl inspects the conditional filter catalog, renders filter rows as SQL
// and searches dynamic attributes in PostgreSQL.
//
// Usage:
//
//	filterctl options price
//	filterctl sql --row price:between:10,20 --constraint default-channel
//	filterctl sql --row color@DROPDOWN:in:red,blue --format json
//	filterctl search --config filterctl.yaml col size
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand(newApp(os.Stdout, os.Stderr)).ExecuteContext(ctx)
	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
