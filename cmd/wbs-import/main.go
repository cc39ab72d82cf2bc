package main

import (
	"context"
	"os"

	"github.com/ksysoev/wbs-import/internal/cli"
	"github.com/sethvargo/go-githubactions"
)

func main() {
	action := githubactions.New()

	if err := cli.NewRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		action.Fatalf("%v", err)
	}
}
