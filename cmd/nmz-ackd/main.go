// Command nmz-ackd is a minimal orchestrator for inspected processes.
//
// It accepts runtime connections, ACKs every FUNC_CALL and FUNC_RETURN
// (optionally after a delay) and sends END after a configurable number of
// FUNC_CALL events. EXIT is never
// ACKed; the connection is closed instead, which releases the runtime.
// It is useful for smoke-testing instrumented binaries without a full
// scheduling orchestrator.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nmz-ackd: %v\n", err)
		os.Exit(1)
	}
}
