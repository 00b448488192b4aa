package action

import (
	"strings"

	"github.com/cadre-oss/sherpa/internal/errors"
	"github.com/cadre-oss/sherpa/internal/provider"
)

// Deps carries what the built-in actions need.
type Deps struct {
	Provider  provider.Provider
	Searcher  Searcher
	Role      string
	MaxTokens int

	// Used to create the default searcher when Searcher is nil.
	SearchResults   int
	SearchUserAgent string
}

// Names lists the built-in actions.
var Names = []string{"search", "planning", "synthesis", "arithmetic", "deliberation"}

// Build constructs the named actions in the given order.
func Build(names []string, deps Deps) ([]Action, error) {
	actions := make([]Action, 0, len(names))
	for _, name := range names {
		switch name {
		case "search":
			searcher := deps.Searcher
			if searcher == nil {
				ddg, err := NewDuckDuckGo(deps.SearchResults, deps.SearchUserAgent)
				if err != nil {
					return nil, err
				}
				searcher = ddg
			}
			actions = append(actions, NewSearch(searcher))
		case "planning":
			actions = append(actions, NewPlanning(deps.Provider, deps.MaxTokens))
		case "synthesis":
			actions = append(actions, NewSynthesis(deps.Provider, deps.Role, deps.MaxTokens))
		case "arithmetic":
			actions = append(actions, NewArithmetic(deps.Provider, deps.MaxTokens))
		case "deliberation":
			actions = append(actions, NewDeliberation(deps.Provider, deps.Role, deps.MaxTokens))
		default:
			return nil, errors.Newf(errors.CodeActionNotFound, "unknown action %q", name).
				WithSuggestion("available actions: " + strings.Join(Names, ", "))
		}
	}
	return actions, nil
}
