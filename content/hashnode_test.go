package content_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubtheme/content"
)

type gqlCall struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// newGraphQLServer answers every query with body and records the decoded
// requests.
func newGraphQLServer(t *testing.T, body string) (*httptest.Server, *[]gqlCall) {
	t.Helper()
	var calls []gqlCall
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var call gqlCall
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		calls = append(calls, call)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func newClient(ts *httptest.Server) *content.HashnodeClient {
	return content.NewHashnodeClient("robinconnect.hashnode.dev",
		content.WithEndpoint(ts.URL), content.WithHTTPClient(ts.Client()))
}

func TestHashnodeClient_Publication(t *testing.T) {
	t.Parallel()

	ts, calls := newGraphQLServer(t, `{"data":{"publication":{
		"id":"pub1","title":"RobinConnect","displayTitle":"RobinConnect Blog",
		"descriptionSEO":"China sourcing notes",
		"about":{"html":"<p>About us</p>","text":"About us"},
		"author":{"name":"Robin","username":"robin","profilePicture":"https://cdn.example/r.png"},
		"ogMetaData":{"image":"https://cdn.example/og.png"},
		"links":{"website":"https://robinconnect.com","twitter":"","github":"https://github.com/robin"},
		"preferences":{"logo":"https://cdn.example/logo.png","darkMode":{"enabled":true,"logo":"https://cdn.example/dark.png"},
			"navbarItems":[{"id":"1","label":"China Assistant","url":"https://robinconnect.com","type":"link"}]}
	}}}`)

	pub, err := newClient(ts).Publication(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "RobinConnect Blog", pub.Name())
	assert.Equal(t, "China sourcing notes", pub.Description)
	assert.Equal(t, "<p>About us</p>", pub.AboutHTML)
	assert.True(t, pub.DarkMode)
	assert.Equal(t, "https://cdn.example/dark.png", pub.HeaderLogo())
	assert.Equal(t, "robin", pub.Author.Username)
	assert.Equal(t, []content.NavbarItem{{ID: "1", Label: "China Assistant", URL: "https://robinconnect.com", Type: "link"}}, pub.NavbarItems)
	assert.Equal(t, []content.NavLink{
		{Label: "Website", URL: "https://robinconnect.com"},
		{Label: "GitHub", URL: "https://github.com/robin"},
	}, pub.Links.All())

	require.Len(t, *calls, 1)
	assert.Equal(t, "robinconnect.hashnode.dev", (*calls)[0].Variables["host"])
	assert.Contains(t, (*calls)[0].Query, "navbarItems")
}

func TestHashnodeClient_Posts(t *testing.T) {
	t.Parallel()

	ts, calls := newGraphQLServer(t, `{"data":{"publication":{"posts":{"edges":[
		{"node":{"id":"p1","slug":"hello","title":"Hello","brief":"first",
			"publishedAt":"2025-03-01T10:00:00.000Z","readTimeInMinutes":4,"reactionCount":7,
			"coverImage":{"url":"https://cdn.example/c.png"},
			"author":{"name":"Robin","username":"robin"},
			"tags":[{"name":"Sourcing","slug":"sourcing"}],
			"content":{"markdown":"# Hi","html":"<h1>Hi</h1>"},
			"seo":{"title":"Hello SEO","description":"seo desc"}}},
		{"node":{"id":"p2","slug":"second","title":"Second","publishedAt":"2025-02-01T10:00:00Z",
			"author":{"name":"Robin"},"tags":[],"content":{"markdown":"","html":""}}}
	]}}}}`)

	posts, err := newClient(ts).Posts(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	p := posts[0]
	assert.Equal(t, "hello", p.Slug)
	assert.Equal(t, "# Hi", p.Markdown)
	assert.Equal(t, 4, p.ReadTime)
	assert.Equal(t, 7, p.Reactions)
	assert.Equal(t, "https://cdn.example/c.png", p.CoverURL)
	assert.Equal(t, []string{"Sourcing"}, p.TagNames())
	assert.Equal(t, "Hello SEO", p.SEOTitle)
	assert.True(t, p.PublishedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, p.UpdatedAt.IsZero())
	assert.Empty(t, posts[1].CoverURL)

	assert.EqualValues(t, 20, (*calls)[0].Variables["first"])
}

func TestHashnodeClient_PostNotFound(t *testing.T) {
	t.Parallel()

	ts, calls := newGraphQLServer(t, `{"data":{"publication":{"post":null}}}`)

	_, err := newClient(ts).Post(context.Background(), "missing")
	require.ErrorIs(t, err, content.ErrNotFound)
	assert.Equal(t, "missing", (*calls)[0].Variables["slug"])
}

func TestHashnodeClient_PublicationNotFound(t *testing.T) {
	t.Parallel()

	ts, _ := newGraphQLServer(t, `{"data":{"publication":null}}`)

	_, err := newClient(ts).Publication(context.Background())
	assert.ErrorIs(t, err, content.ErrNotFound)
	_, err = newClient(ts).Posts(context.Background(), 1)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestHashnodeClient_Comments(t *testing.T) {
	t.Parallel()

	ts, _ := newGraphQLServer(t, `{"data":{"publication":{"post":{"comments":{"edges":[
		{"node":{"id":"c1","content":{"html":"<p>Great</p>"},"author":{"name":"Ann","username":"ann"},
			"dateAdded":"2025-03-02T08:00:00Z","totalReactions":2}}
	]}}}}}`)

	comments, err := newClient(ts).Comments(context.Background(), "hello", 20)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "<p>Great</p>", comments[0].HTML)
	assert.Equal(t, "Ann", comments[0].Author.Name)
	assert.Equal(t, 2, comments[0].Reactions)
}

func TestHashnodeClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"graphql errors", http.StatusOK, `{"errors":[{"message":"bad host"},{"message":"twice"}]}`, "hashnode: bad host; twice"},
		{"http status", http.StatusBadGateway, `upstream down`, "hashnode status 502: upstream down"},
		{"null data", http.StatusOK, `{"data":null}`, "hashnode: empty response"},
		{"invalid json", http.StatusOK, `{`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newClient(ts).Post(context.Background(), "x")
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
			assert.NotErrorIs(t, err, content.ErrNotFound)
		})
	}
}

func TestHashnodeClient_ContextCanceled(t *testing.T) {
	t.Parallel()

	ts, _ := newGraphQLServer(t, `{"data":{}}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(ts).Publication(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
