package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the public Hashnode GraphQL API.
const DefaultEndpoint = "https://gql.hashnode.com"

// HashnodeClient reads a publication through the Hashnode GraphQL API.
type HashnodeClient struct {
	endpoint   string
	host       string
	httpClient *http.Client
}

// ClientOption configures a HashnodeClient.
type ClientOption func(*HashnodeClient)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(u string) ClientOption {
	return func(c *HashnodeClient) {
		if u != "" {
			c.endpoint = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for queries.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HashnodeClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewHashnodeClient returns a client for the publication served at host,
// e.g. "robinconnect.hashnode.dev".
func NewHashnodeClient(host string, opts ...ClientOption) *HashnodeClient {
	c := &HashnodeClient{
		endpoint:   DefaultEndpoint,
		host:       host,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the publication host queries are keyed by.
func (c *HashnodeClient) Host() string { return c.host }

const postFields = `
	id slug title brief publishedAt updatedAt readTimeInMinutes reactionCount
	coverImage { url }
	author { name username profilePicture }
	tags { name slug }
	content { markdown html }
	seo { title description }`

const publicationQuery = `query Publication($host: String!) {
  publication(host: $host) {
    id title displayTitle descriptionSEO
    about { html text }
    author { name username profilePicture }
    ogMetaData { image }
    links { website twitter github linkedin hashnode instagram facebook youtube mastodon }
    preferences {
      logo
      darkMode { enabled logo }
      navbarItems { id label url type }
    }
  }
}`

const postsQuery = `query Posts($host: String!, $first: Int!) {
  publication(host: $host) {
    posts(first: $first) { edges { node {` + postFields + ` } } }
  }
}`

const postQuery = `query Post($host: String!, $slug: String!) {
  publication(host: $host) {
    post(slug: $slug) {` + postFields + ` }
  }
}`

const commentsQuery = `query Comments($host: String!, $slug: String!, $first: Int!) {
  publication(host: $host) {
    post(slug: $slug) {
      comments(first: $first) {
        edges { node { id content { html } author { name username profilePicture } dateAdded totalReactions } }
      }
    }
  }
}`

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlAuthor struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

func (a gqlAuthor) author() Author {
	return Author{Name: a.Name, Username: a.Username, Picture: a.ProfilePicture}
}

type gqlPost struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	Title             string     `json:"title"`
	Brief             string     `json:"brief"`
	PublishedAt       time.Time  `json:"publishedAt"`
	UpdatedAt         *time.Time `json:"updatedAt"`
	ReadTimeInMinutes int        `json:"readTimeInMinutes"`
	ReactionCount     int        `json:"reactionCount"`
	CoverImage        *struct {
		URL string `json:"url"`
	} `json:"coverImage"`
	Author gqlAuthor `json:"author"`
	Tags   []Tag     `json:"tags"`
	Content struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	} `json:"content"`
	SEO *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"seo"`
}

func (p gqlPost) post() Post {
	out := Post{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Brief:       p.Brief,
		Markdown:    p.Content.Markdown,
		HTML:        p.Content.HTML,
		PublishedAt: p.PublishedAt,
		ReadTime:    p.ReadTimeInMinutes,
		Reactions:   p.ReactionCount,
		Author:      p.Author.author(),
		Tags:        p.Tags,
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	if p.CoverImage != nil {
		out.CoverURL = p.CoverImage.URL
	}
	if p.SEO != nil {
		out.SEOTitle = p.SEO.Title
		out.SEODesc = p.SEO.Description
	}
	return out
}

// Publication implements Source.
func (c *HashnodeClient) Publication(ctx context.Context) (Publication, error) {
	var data struct {
		Publication *struct {
			ID             string `json:"id"`
			Title          string `json:"title"`
			DisplayTitle   string `json:"displayTitle"`
			DescriptionSEO string `json:"descriptionSEO"`
			About          *struct {
				HTML string `json:"html"`
				Text string `json:"text"`
			} `json:"about"`
			Author     gqlAuthor `json:"author"`
			OGMetaData *struct {
				Image string `json:"image"`
			} `json:"ogMetaData"`
			Links *struct {
				Website   string `json:"website"`
				Twitter   string `json:"twitter"`
				GitHub    string `json:"github"`
				LinkedIn  string `json:"linkedin"`
				Hashnode  string `json:"hashnode"`
				Instagram string `json:"instagram"`
				Facebook  string `json:"facebook"`
				YouTube   string `json:"youtube"`
				Mastodon  string `json:"mastodon"`
			} `json:"links"`
			Preferences struct {
				Logo     string `json:"logo"`
				DarkMode *struct {
					Enabled bool   `json:"enabled"`
					Logo    string `json:"logo"`
				} `json:"darkMode"`
				NavbarItems []NavbarItem `json:"navbarItems"`
			} `json:"preferences"`
		} `json:"publication"`
	}
	if err := c.query(ctx, publicationQuery, map[string]any{"host": c.host}, &data); err != nil {
		return Publication{}, err
	}
	p := data.Publication
	if p == nil {
		return Publication{}, fmt.Errorf("publication %q: %w", c.host, ErrNotFound)
	}
	out := Publication{
		ID:           p.ID,
		Title:        p.Title,
		DisplayTitle: p.DisplayTitle,
		Description:  p.DescriptionSEO,
		Logo:         p.Preferences.Logo,
		Author:       p.Author.author(),
		NavbarItems:  p.Preferences.NavbarItems,
	}
	if p.About != nil {
		out.AboutHTML, out.AboutText = p.About.HTML, p.About.Text
	}
	if p.OGMetaData != nil {
		out.OGImage = p.OGMetaData.Image
	}
	if p.Preferences.DarkMode != nil {
		out.DarkMode = p.Preferences.DarkMode.Enabled
		out.DarkLogo = p.Preferences.DarkMode.Logo
	}
	if l := p.Links; l != nil {
		out.Links = SocialLinks{
			Website:   l.Website,
			Twitter:   l.Twitter,
			GitHub:    l.GitHub,
			LinkedIn:  l.LinkedIn,
			Hashnode:  l.Hashnode,
			Instagram: l.Instagram,
			Facebook:  l.Facebook,
			YouTube:   l.YouTube,
			Mastodon:  l.Mastodon,
		}
	}
	return out, nil
}

// Posts implements Source.
func (c *HashnodeClient) Posts(ctx context.Context, first int) ([]Post, error) {
	var data struct {
		Publication *struct {
			Posts struct {
				Edges []struct {
					Node gqlPost `json:"node"`
				} `json:"edges"`
			} `json:"posts"`
		} `json:"publication"`
	}
	if err := c.query(ctx, postsQuery, map[string]any{"host": c.host, "first": first}, &data); err != nil {
		return nil, err
	}
	if data.Publication == nil {
		return nil, fmt.Errorf("publication %q: %w", c.host, ErrNotFound)
	}
	posts := make([]Post, 0, len(data.Publication.Posts.Edges))
	for _, e := range data.Publication.Posts.Edges {
		posts = append(posts, e.Node.post())
	}
	return posts, nil
}

// Post implements Source.
func (c *HashnodeClient) Post(ctx context.Context, slug string) (Post, error) {
	var data struct {
		Publication *struct {
			Post *gqlPost `json:"post"`
		} `json:"publication"`
	}
	if err := c.query(ctx, postQuery, map[string]any{"host": c.host, "slug": slug}, &data); err != nil {
		return Post{}, err
	}
	if data.Publication == nil || data.Publication.Post == nil {
		return Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return data.Publication.Post.post(), nil
}

// Comments implements Source.
func (c *HashnodeClient) Comments(ctx context.Context, slug string, first int) ([]Comment, error) {
	var data struct {
		Publication *struct {
			Post *struct {
				Comments struct {
					Edges []struct {
						Node struct {
							ID      string `json:"id"`
							Content struct {
								HTML string `json:"html"`
							} `json:"content"`
							Author         gqlAuthor `json:"author"`
							DateAdded      time.Time `json:"dateAdded"`
							TotalReactions int       `json:"totalReactions"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"comments"`
			} `json:"post"`
		} `json:"publication"`
	}
	vars := map[string]any{"host": c.host, "slug": slug, "first": first}
	if err := c.query(ctx, commentsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Publication == nil || data.Publication.Post == nil {
		return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	edges := data.Publication.Post.Comments.Edges
	out := make([]Comment, 0, len(edges))
	for _, e := range edges {
		out = append(out, Comment{
			ID:        e.Node.ID,
			HTML:      e.Node.Content.HTML,
			Author:    e.Node.Author.author(),
			DateAdded: e.Node.DateAdded,
			Reactions: e.Node.TotalReactions,
		})
	}
	return out, nil
}

func (c *HashnodeClient) query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hashnode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hashnode status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("hashnode: %s", strings.Join(msgs, "; "))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("hashnode: empty response")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
