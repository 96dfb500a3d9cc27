// Command preppal indexes study material and turns it into answers,
// quizzes and study plans.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/preppal/internal/adapters/driving/cli"
)

// Set by the release build.
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
