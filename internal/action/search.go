package action

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"
	"mvdan.cc/xurls/v2"
)

// Searcher runs a web query and returns result text.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// DuckDuckGo is the default Searcher.
type DuckDuckGo struct {
	tool *duckduckgo.Tool
}

// NewDuckDuckGo creates a DuckDuckGo searcher returning up to maxResults hits.
func NewDuckDuckGo(maxResults int, userAgent string) (*DuckDuckGo, error) {
	tool, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, fmt.Errorf("create duckduckgo tool: %w", err)
	}
	return &DuckDuckGo{tool: tool}, nil
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	return d.tool.Call(ctx, query)
}

// Search looks a query up on the web and lists the result links as sources.
type Search struct {
	Base
	searcher Searcher
}

// NewSearch creates the search action.
func NewSearch(searcher Searcher) *Search {
	return &Search{
		Base: Base{
			ActionName:        "search",
			ActionDescription: "Search the web for up-to-date information on a topic.",
			ActionArgs: []Argument{
				{Name: "query", Description: "the search query"},
			},
		},
		searcher: searcher,
	}
}

func (s *Search) Execute(ctx context.Context, args map[string]string) (string, error) {
	query, err := Require(s, args, "query")
	if err != nil {
		return "", err
	}

	res, err := s.searcher.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}

	sources := ExtractLinks(res)
	if len(sources) == 0 {
		return res, nil
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(res))
	sb.WriteString("\n\nSources:")
	for _, u := range sources {
		sb.WriteString("\n- ")
		sb.WriteString(u)
	}
	return sb.String(), nil
}

// ExtractLinks returns the distinct URLs in text, in order of appearance, with
// DuckDuckGo redirect wrappers removed.
func ExtractLinks(text string) []string {
	found := xurls.Strict().FindAllString(text, -1)

	seen := make(map[string]bool, len(found))
	links := make([]string, 0, len(found))
	for _, u := range found {
		u = unwrapRedirect(u)
		if seen[u] {
			continue
		}
		seen[u] = true
		links = append(links, u)
	}
	return links
}

// unwrapRedirect returns the target of a DuckDuckGo redirect link, or u itself.
func unwrapRedirect(u string) string {
	if !strings.Contains(u, "duckduckgo.com/l/") {
		return u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return u
}
