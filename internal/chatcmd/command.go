// Package chatcmd turns chat messages into calls against the fare HTTP API.
package chatcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/api"
	"github.com/fareroute/backend-go/pkg/http/client"
)

const (
	addStationCommand = "!addStation"
	searchCommand     = "!search"
	stationsCommand   = "!stations"

	addStationUsage = "usage: !addStation <line> <station> <distance>"
	searchUsage     = "usage: !search <start> [via...] <end>"
)

type Kind int

const (
	KindNone Kind = iota
	KindAddStation
	KindSearch
	KindStations
	// KindUsage is a recognised command with missing arguments.
	KindUsage
)

type Command struct {
	Kind   Kind
	Add    api.AddStationRequest
	Search api.SearchRequest
	Usage  string
}

// Parse splits a message on whitespace. Anything not starting with a known
// command is KindNone.
func Parse(content string) Command {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return Command{Kind: KindNone}
	}

	args := fields[1:]
	switch fields[0] {
	case addStationCommand:
		if len(args) < 3 {
			return Command{Kind: KindUsage, Usage: addStationUsage}
		}
		distance, _ := json.Marshal(args[2])
		return Command{
			Kind: KindAddStation,
			Add: api.AddStationRequest{
				Line:     args[0],
				Station:  args[1],
				Distance: distance,
			},
		}

	case searchCommand:
		if len(args) < 2 {
			return Command{Kind: KindUsage, Usage: searchUsage}
		}
		return Command{
			Kind: KindSearch,
			Search: api.SearchRequest{
				Start: args[0],
				End:   args[len(args)-1],
				Via:   append([]string{}, args[1:len(args)-1]...),
			},
		}

	case stationsCommand:
		return Command{Kind: KindStations}

	default:
		return Command{Kind: KindNone}
	}
}

// Executor runs commands against the HTTP API.
type Executor struct {
	client client.Interface
}

func NewExecutor(c client.Interface) *Executor {
	return &Executor{client: c}
}

// Reply runs the command in content and returns the text to send back. ok is
// false when the message is not a command.
func (e *Executor) Reply(ctx context.Context, content string) (reply string, ok bool) {
	cmd := Parse(content)

	switch cmd.Kind {
	case KindUsage:
		return cmd.Usage, true
	case KindAddStation:
		return e.call(ctx, "/addStation", cmd.Add, "station add result"), true
	case KindSearch:
		return e.call(ctx, "/search", cmd.Search, "search result"), true
	case KindStations:
		return e.list(ctx, "/stations", "stations"), true
	default:
		return "", false
	}
}

func (e *Executor) list(ctx context.Context, path, label string) string {
	resp, err := e.client.Get(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Fare API call failed")
		return fmt.Sprintf("%s: request failed", label)
	}
	return fmt.Sprintf("%s: %s", label, strings.TrimSpace(string(resp.Body)))
}

func (e *Executor) call(ctx context.Context, path string, body any, label string) string {
	resp, err := e.client.Post(ctx, path, body)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Fare API call failed")
		return fmt.Sprintf("%s: request failed", label)
	}
	return fmt.Sprintf("%s: %s", label, strings.TrimSpace(string(resp.Body)))
}
