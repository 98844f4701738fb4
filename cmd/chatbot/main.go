// Command chatbot is the terminal client of the Redis chat agent.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minu803/redis-chatbot/internal/config"
)

var (
	redisURL string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "chatbot",
	Short:         "Redis-backed chat agent",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis URL (defaults to REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (defaults to LOG_LEVEL)")

	rootCmd.AddCommand(chatCmd, seedCmd, historyCmd, whoamiCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig applies flag overrides on top of the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}
