package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/ksysoev/wbs-import/pkg/plane"
)

// test-client creates one module and one linked issue against a real Plane project
func main() {
	if err := core.LoadEnvFile(""); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, err := core.LoadConfig(nil, false)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("Using %s\n", cfg)

	ctx := context.Background()
	client := plane.NewClient(cfg)

	if err := client.Validate(ctx); err != nil {
		fmt.Printf("Error connecting to Plane: %v\n", err)
		os.Exit(1)
	}

	suffix := time.Now().Format("20060102-150405")

	moduleID, err := client.CreateModule(ctx, "[TEST WBS] Module "+suffix)
	if err != nil {
		fmt.Printf("Error creating module: %v\n", err)
		os.Exit(1)
	}

	issueID, err := client.CreateIssue(ctx, "[TEST WBS] Issue "+suffix)
	if err != nil {
		fmt.Printf("Error creating issue: %v\n", err)
		os.Exit(1)
	}

	if err := client.LinkIssueToModule(ctx, moduleID, issueID); err != nil {
		fmt.Printf("Error linking issue: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created module %s and linked issue %s\n", moduleID, issueID)
}
