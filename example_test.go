package inspector_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	inspector "github.com/wagiedev/nmz-inspector-go"
)

// Startup failures are returned; an instrumented process aborts on them.
func ExampleNew() {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	rt, err := inspector.New(ctx, inspector.WithLogger(log))
	if err != nil {
		log.Error("inspection unavailable", "error", err)
		os.Exit(1)
	}

	defer func() { _ = rt.Exit() }()

	rt.FuncCall("store.Put")
	defer rt.FuncReturn("store.Put")
}

func ExampleInit() {
	if _, err := inspector.Init(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "nmz-inspector: %v\n", err)
		os.Exit(1)
	}

	defer func() { _ = inspector.Exit() }()

	inspector.FuncCall("store.Put")
	defer inspector.FuncReturn("store.Put")
}

// With inspection disabled the same call sites run without a connection.
func ExampleWithConfig() {
	rt, err := inspector.New(context.Background(),
		inspector.WithConfig(&inspector.Config{Disabled: true}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nmz-inspector: %v\n", err)
		os.Exit(1)
	}

	rt.FuncCall("store.Put")
	fmt.Println(rt.Active())
	// Output: false
}
