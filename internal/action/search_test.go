package action_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadre-oss/sherpa/internal/action"
	"github.com/cadre-oss/sherpa/internal/testutil"
)

func TestSearch_AppendsSources(t *testing.T) {
	searcher := &testutil.MockSearcher{
		Result: "1. Go (programming language)\nInfo: Go is statically typed.\nURL: https://go.dev/doc\n\n" +
			"2. Go FAQ\nURL: https://go.dev/doc\n\n" +
			"3. Redirected\nURL: https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=abc123\n",
	}

	out, err := action.NewSearch(searcher).Execute(context.Background(), map[string]string{"query": "golang"})
	require.NoError(t, err)

	assert.Equal(t, []string{"golang"}, searcher.Queries)
	assert.Contains(t, out, "Go is statically typed.")
	assert.Contains(t, out, "\n\nSources:\n- https://go.dev/doc\n- https://example.com/page")
}

func TestSearch_NoLinks(t *testing.T) {
	searcher := &testutil.MockSearcher{Result: "nothing linkable here"}

	out, err := action.NewSearch(searcher).Execute(context.Background(), map[string]string{"query": "q"})
	require.NoError(t, err)
	assert.Equal(t, "nothing linkable here", out)
}

func TestSearch_Error(t *testing.T) {
	searcher := &testutil.MockSearcher{Err: fmt.Errorf("rate limited")}

	_, err := action.NewSearch(searcher).Execute(context.Background(), map[string]string{"query": "q"})
	assert.ErrorContains(t, err, "rate limited")
}

func TestSearch_MissingQuery(t *testing.T) {
	searcher := &testutil.MockSearcher{}

	_, err := action.NewSearch(searcher).Execute(context.Background(), nil)
	assert.Error(t, err)
	assert.Empty(t, searcher.Queries)
}

func TestExtractLinks(t *testing.T) {
	links := action.ExtractLinks("see http://a.example/x and https://b.example/y, then http://a.example/x again")
	assert.Equal(t, []string{"http://a.example/x", "https://b.example/y"}, links)
	assert.Empty(t, action.ExtractLinks("no links"))
}
