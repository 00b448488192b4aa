package main

import (
	"fmt"
	"os"

	"github.com/cadre-oss/sherpa/internal/cli"
	sherpaErrors "github.com/cadre-oss/sherpa/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if s := sherpaErrors.Suggestion(err); s != "" {
			fmt.Fprintln(os.Stderr, "Hint: ", s)
		}
		os.Exit(1)
	}
}
