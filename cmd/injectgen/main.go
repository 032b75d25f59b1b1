package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
)

// version is stamped in generated headers; overridden with -ldflags "-X main.version=..."
var version = "0.1.0"

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		var reported *reportedError
		if !goerrors.As(err, &reported) {
			fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n\n", err)
			fmt.Fprint(root.ErrOrStderr(), root.UsageString())
		}
		os.Exit(1)
	}
}
