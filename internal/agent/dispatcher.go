package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/command"
	"github.com/minu803/redis-chatbot/internal/metrics"
	"github.com/minu803/redis-chatbot/internal/session"
)

// HelpText lists the supported commands.
const HelpText = `Here are the commands this bot supports:
!help: List of commands
!weather <city>: Weather update
!fact: Random fun fact
!whoami: Your user information`

const (
	msgUnknownCommand = "Unknown command!"
	msgNotIdentified  = "You need to identify first!"
	msgNoFacts        = "No fun facts available right now."
	msgWeatherUsage   = "Which city's weather would you like to know? Usage: !weather <city>"
)

// Dispatcher turns parsed commands into response text.
type Dispatcher struct {
	identity *Identity
	content  *Content
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over the identity and content components.
func NewDispatcher(identity *Identity, content *Content, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{identity: identity, content: content, logger: logger}
}

// Dispatch executes cmd for sess. Missing data is reported in the response
// text; only store failures are returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, cmd command.Command) (string, error) {
	metrics.CommandsTotal.WithLabelValues(cmd.Name()).Inc()

	switch c := cmd.(type) {
	case command.Help:
		return HelpText, nil

	case command.Weather:
		if c.City == "" {
			return msgWeatherUsage, nil
		}
		weather, ok, err := d.content.LookupWeather(ctx, c.City)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("No weather data available for %s.", c.City), nil
		}
		return fmt.Sprintf("It's %s in %s!", weather, c.City), nil

	case command.Fact:
		fact, err := d.content.NextFact(ctx)
		if errors.Is(err, ErrEmptyRotation) {
			return msgNoFacts, nil
		}
		if err != nil {
			return "", err
		}
		return fact, nil

	case command.WhoAmI:
		if !sess.Identified() {
			return msgNotIdentified, nil
		}
		profile, err := d.identity.Profile(ctx, sess.Username())
		if errors.Is(err, ErrIncompleteProfile) || (err == nil && profile == nil) {
			return fmt.Sprintf("Unknown user %s.", sess.Username()), nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Name: %s, Age: %s, Gender: %s, Location: %s",
			profile.Username, profile.Age, profile.Gender, profile.Location), nil

	default:
		d.logger.Debug().Str("session", sess.ID()).Msgf("unknown command %T", cmd)
		return msgUnknownCommand, nil
	}
}

// DispatchText parses input and dispatches the result.
func (d *Dispatcher) DispatchText(ctx context.Context, sess *session.Session, input string) (string, error) {
	return d.Dispatch(ctx, sess, command.Parse(input))
}
