// cmd/property-intel/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"property-intel/internal/common/errors"
)

var (
	version = "dev"

	flagConfig  string
	flagUser    string
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "property-intel",
	Short:         "Property lookup, investment scoring and usage quota tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "user id issued by the identity provider")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "overall deadline for the command")

	rootCmd.AddCommand(versionCmd, migrateCmd, searchCmd, usageCmd, portfolioCmd, pingCmd, loginCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("property-intel %s\n", version)
	},
}

// withApp runs fn with a fully wired app under the command deadline and
// interrupt handling.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, flagTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

func requireUser() error {
	if flagUser == "" {
		return errors.NewValidationError("--user is required")
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes retryable failures so wrappers can decide to retry.
func exitCode(err error) int {
	switch {
	case errors.IsRetryable(err):
		return 75
	case errors.CodeOf(err) == errors.ErrCodeQuotaExceeded:
		return 3
	default:
		return 1
	}
}
