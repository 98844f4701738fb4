package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/minu803/redis-chatbot/internal/agent"
	"github.com/minu803/redis-chatbot/internal/logging"
	"github.com/minu803/redis-chatbot/internal/repl"
	"github.com/minu803/redis-chatbot/internal/store"
)

var noSeed bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAgent(cmd.Context(), func(ctx context.Context, a *agent.Agent) error {
			return repl.New(a, cmd.InOrStdin(), cmd.OutOrStdout(), repl.Options{SeedOnStart: !noSeed}).Run(ctx)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Regenerate the weather table and reset the fact rotation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAgent(cmd.Context(), func(ctx context.Context, a *agent.Agent) error {
			table, err := a.Content.SeedWeather(ctx)
			if err != nil {
				return err
			}
			if err := a.Content.SeedFacts(ctx, agent.DefaultFacts); err != nil {
				return err
			}

			cities := make([]string, 0, len(table))
			for city := range table {
				cities = append(cities, city)
			}
			sort.Strings(cities)

			out := cmd.OutOrStdout()
			for _, city := range cities {
				fmt.Fprintf(out, "  %-14s %s\n", city, table[city])
			}
			fmt.Fprintf(out, "Seeded %d cities and %d facts.\n", len(table), len(agent.DefaultFacts))
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <channel>",
	Short: "Print a channel's message history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAgent(cmd.Context(), func(ctx context.Context, a *agent.Agent) error {
			messages, err := a.Messaging.ReadHistory(ctx, args[0])
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No messages in %s.\n", args[0])
				return nil
			}
			for _, msg := range messages {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami <username>",
	Short: "Show a stored user profile and its channels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAgent(cmd.Context(), func(ctx context.Context, a *agent.Agent) error {
			profile, err := a.Identity.Profile(ctx, args[0])
			if err != nil {
				return err
			}
			if profile == nil {
				return fmt.Errorf("unknown user %s", args[0])
			}

			channels, err := a.Membership.Channels(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s, Age: %s, Gender: %s, Location: %s\n",
				profile.Username, profile.Age, profile.Gender, profile.Location)
			fmt.Fprintf(out, "Channels: %v\n", channels)
			return nil
		})
	},
}

func init() {
	chatCmd.Flags().BoolVar(&noSeed, "no-seed", false, "keep the existing weather table and facts")
}

// withAgent connects to Redis and runs fn with a ready agent. Logs go to
// stderr so they do not mix with the chat.
func withAgent(ctx context.Context, fn func(context.Context, *agent.Agent) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.IsDevelopment(), cfg.LogLevel)

	s, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.PollTimeout)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer s.Close()

	return fn(ctx, agent.New(s, logger, agent.Options{HistoryLimit: cfg.HistoryLimit}))
}
