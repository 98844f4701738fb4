// Package repl is the interactive terminal front end of the chat agent.
package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minu803/redis-chatbot/internal/agent"
	"github.com/minu803/redis-chatbot/internal/models"
	"github.com/minu803/redis-chatbot/internal/session"
)

const menu = `
Options:
1. Join a channel
2. Leave a channel
3. Send a message to a channel
4. Read a message from a channel
5. Send a private message to a user
6. Get info about yourself
7. Exit
8. Show channel history
Anything else is sent to the bot as a command.`

// Options configures a REPL.
type Options struct {
	// SeedOnStart reseeds the weather table and facts after identification.
	SeedOnStart bool
}

// REPL reads menu choices and commands line by line.
type REPL struct {
	agent *agent.Agent
	in    *bufio.Scanner
	out   io.Writer
	opts  Options
}

// New creates a REPL over in and out.
func New(a *agent.Agent, in io.Reader, out io.Writer, opts Options) *REPL {
	return &REPL{
		agent: a,
		in:    bufio.NewScanner(in),
		out:   out,
		opts:  opts,
	}
}

// Run identifies the user and serves the menu until the user exits, input
// ends or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	sess := r.agent.NewSession(ctx)
	defer sess.Close()

	r.println(agent.HelpText)

	if err := r.identify(ctx, sess); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	if r.opts.SeedOnStart {
		if err := r.agent.Content.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.println(menu)
		choice, ok := r.prompt("Enter your choice: ")
		if !ok {
			return r.in.Err()
		}

		if choice == "7" {
			r.println("Goodbye!")
			return nil
		}

		if err := r.handle(ctx, sess, choice); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.printf("Error: %v\n", err)
			sess.Logger().Warn().Err(err).Str("choice", choice).Msg("menu action failed")
		}
	}
}

func (r *REPL) identify(ctx context.Context, sess *session.Session) error {
	var profile models.UserProfile
	fields := []struct {
		label string
		dst   *string
	}{
		{"Enter your username: ", &profile.Username},
		{"Enter your age: ", &profile.Age},
		{"Enter your gender: ", &profile.Gender},
		{"Enter your location: ", &profile.Location},
	}

	for {
		for _, f := range fields {
			v, ok := r.prompt(f.label)
			if !ok {
				return io.EOF
			}
			*f.dst = v
		}

		err := r.agent.Identity.Identify(ctx, sess, profile)
		if errors.Is(err, agent.ErrInvalidUsername) {
			r.println("A username is required.")
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	r.printf("Identified as %s!\n", profile.Username)

	// Resume the channels recorded by an earlier run.
	if err := r.agent.Membership.Sync(ctx, sess); err != nil {
		return err
	}
	if channels := sess.Subscription().Channels(); len(channels) > 0 {
		r.printf("Rejoined %s.\n", strings.Join(channels, ", "))
	}
	return nil
}

func (r *REPL) handle(ctx context.Context, sess *session.Session, choice string) error {
	switch choice {
	case "1":
		channel, err := r.require("Enter channel name to join: ")
		if err != nil {
			return err
		}
		if err := r.agent.Membership.Join(ctx, sess, channel); err != nil {
			return err
		}
		r.printf("Joined %s!\n", channel)

	case "2":
		channel, err := r.require("Enter channel name to leave: ")
		if err != nil {
			return err
		}
		if err := r.agent.Membership.Leave(ctx, sess, channel); err != nil {
			return err
		}
		r.printf("Left %s!\n", channel)

	case "3":
		channel, err := r.require("Enter channel name: ")
		if err != nil {
			return err
		}
		message, err := r.require("Enter your message: ")
		if err != nil {
			return err
		}
		if err := r.agent.Messaging.Broadcast(ctx, channel, message); err != nil {
			return err
		}
		r.println("Message sent!")

	case "4":
		msg, ok, err := r.agent.Messaging.PollNext(ctx, sess)
		if err != nil {
			return err
		}
		if !ok {
			r.println("No new messages.")
			return nil
		}
		r.println(formatMessage(sess.Username(), msg))

	case "5":
		to, err := r.require("Enter the recipient's username: ")
		if err != nil {
			return err
		}
		message, err := r.require("Enter your private message: ")
		if err != nil {
			return err
		}
		if err := r.agent.Messaging.SendPrivate(ctx, sess.Username(), to, message); err != nil {
			return err
		}
		r.printf("Private message sent to %s!\n", to)

	case "6":
		response, err := r.agent.Dispatcher.DispatchText(ctx, sess, "!whoami")
		if err != nil {
			return err
		}
		r.println(response)

	case "8":
		channel, err := r.require("Enter channel name: ")
		if err != nil {
			return err
		}
		history, err := r.agent.Messaging.ReadHistory(ctx, channel)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			r.printf("No messages in %s.\n", channel)
			return nil
		}
		for _, line := range history {
			r.println(line)
		}

	default:
		response, err := r.agent.Dispatcher.DispatchText(ctx, sess, choice)
		if err != nil {
			return err
		}
		r.println(response)
	}

	return nil
}

// formatMessage renders a polled delivery. Deliveries on the user's own
// name channel are shown as private messages when they carry an envelope.
func formatMessage(username string, msg models.Message) string {
	if msg.Channel == username {
		var pm models.PrivateMessage
		if err := json.Unmarshal([]byte(msg.Payload), &pm); err == nil && pm.From != "" {
			return fmt.Sprintf("[private] %s: %s", pm.From, pm.Message)
		}
	}
	return fmt.Sprintf("[%s] %s", msg.Channel, msg.Payload)
}

// prompt writes label and reads one trimmed line. ok is false at end of input.
func (r *REPL) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

// require prompts until a non-empty line is entered.
func (r *REPL) require(label string) (string, error) {
	for {
		v, ok := r.prompt(label)
		if !ok {
			return "", io.EOF
		}
		if v != "" {
			return v, nil
		}
	}
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
