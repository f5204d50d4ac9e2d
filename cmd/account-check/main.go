package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/core"
	"github.com/mikey/spam-detective/internal/di"
	"github.com/mikey/spam-detective/internal/engine"
)

func main() {
	flags := di.ParseFlags()

	if flags.Username == "" || flags.Email == "" {
		fmt.Println("Both -username and -email are required")
		os.Exit(1)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the analysis
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes a single ad-hoc account described by the flags
func run(flags *di.CLIFlags, logger *zap.Logger, eng *engine.Engine) error {
	defer logger.Sync()

	registered := time.Now()
	if flags.RegisteredAt != "" {
		parsed, err := time.Parse(time.RFC3339, flags.RegisteredAt)
		if err != nil {
			logger.Fatal("Invalid -registered value, want RFC3339", zap.Error(err))
			return err
		}
		registered = parsed
	}

	acct := &core.Account{
		Username:       flags.Username,
		Email:          flags.Email,
		DisplayName:    flags.DisplayName,
		FirstName:      flags.FirstName,
		LastName:       flags.LastName,
		RegisteredAt:   registered,
		PostCount:      flags.Posts,
		CommentCount:   flags.Comments,
		RegistrationIP: flags.IP,
	}

	startTime := time.Now()
	result, err := eng.Analyze(context.Background(), acct)
	if err != nil {
		logger.Fatal("Analysis failed", zap.Error(err))
		return err
	}
	duration := time.Since(startTime)

	if flags.JSONOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Username: %s\n", acct.Username)
	fmt.Printf("Email: %s\n", acct.Email)
	fmt.Printf("Suspicious: %t\n", result.IsSuspicious)
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	fmt.Printf("Score: %d\n", result.Score)
	if len(result.Reasons) == 0 {
		fmt.Printf("Reasons: none\n")
	} else {
		fmt.Printf("Reasons:\n")
		for _, reason := range result.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
	fmt.Printf("Processing time: %v\n", duration)
	return nil
}
