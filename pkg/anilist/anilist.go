// Package anilist is a small GraphQL client for the AniList viewer, search and progress mutations.
package anilist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/animesync/animesync/internal/utils"
	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/whttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const DefaultEndpoint = "https://graphql.anilist.co"

// Client talks to the AniList GraphQL API. Calls are single-shot: retrying is
// left to whoever configured the underlying HTTP client.
type Client struct {
	endpoint string
	token    string
	http     *retryablehttp.Client
}

// NewClient builds a client. An empty endpoint means DefaultEndpoint and a nil
// httpClient means the whttp default client.
func NewClient(endpoint, token string, httpClient *retryablehttp.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, token: token, http: httpClient}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) HasToken() bool {
	return c.token != ""
}

// Viewer returns the account that owns the configured token.
func (c *Client) Viewer(ctx context.Context) (anime.Viewer, error) {
	if c.token == "" {
		return anime.Viewer{}, fmt.Errorf("%w: missing token", anime.ErrInvalidCredential)
	}

	body, err := c.do(ctx, "verification", viewerQuery, nil, true)
	if err != nil {
		return anime.Viewer{}, err
	}

	viewer := gjson.Get(body, "data.Viewer")
	if !viewer.Exists() || viewer.Get("name").String() == "" {
		return anime.Viewer{}, fmt.Errorf("%w: no viewer in API response", anime.ErrInvalidCredential)
	}
	return anime.Viewer{ID: int(viewer.Get("id").Int()), Name: viewer.Get("name").String()}, nil
}

// VerifyCredentials checks that the token belongs to username. Names are
// compared case-insensitively.
func (c *Client) VerifyCredentials(ctx context.Context, username string) (anime.Viewer, error) {
	if strings.TrimSpace(username) == "" {
		return anime.Viewer{}, fmt.Errorf("%w: missing username", anime.ErrInvalidCredential)
	}

	viewer, err := c.Viewer(ctx)
	if err != nil {
		return anime.Viewer{}, err
	}

	utils.Log.Debugf("API returned username: %s, expected: %s", viewer.Name, username)
	if !strings.EqualFold(viewer.Name, strings.TrimSpace(username)) {
		return viewer, fmt.Errorf("%w: token belongs to %s", anime.ErrInvalidCredential, viewer.Name)
	}
	return viewer, nil
}

// SearchAnime returns up to five candidates ranked by AniList's relevance.
// An empty slice means nothing matched.
func (c *Client) SearchAnime(ctx context.Context, title string) ([]anime.Media, error) {
	if title == "" {
		return nil, errors.New("no title provided for search")
	}

	body, err := c.do(ctx, "search", searchAnimeQuery, map[string]interface{}{"search": title}, false)
	if err != nil {
		return nil, err
	}

	var results []anime.Media
	gjson.Get(body, "data.Page.media").ForEach(func(_, m gjson.Result) bool {
		results = append(results, anime.Media{
			ID: int(m.Get("id").Int()),
			Title: anime.Title{
				Romaji:  m.Get("title.romaji").String(),
				English: m.Get("title.english").String(),
				Native:  m.Get("title.native").String(),
			},
			Status:   m.Get("status").String(),
			Episodes: int(m.Get("episodes").Int()),
		})
		return true
	})

	utils.Log.Debugf("Found %d results for %q", len(results), title)
	return results, nil
}

// SaveProgress sets the progress of mediaID to progress and marks the entry as
// currently watching.
func (c *Client) SaveProgress(ctx context.Context, mediaID, progress int) (anime.SaveResult, error) {
	if c.token == "" {
		return anime.SaveResult{}, fmt.Errorf("%w: no access token provided", anime.ErrInvalidCredential)
	}
	if mediaID <= 0 || progress <= 0 {
		return anime.SaveResult{}, errors.New("invalid anime ID or episode number")
	}

	body, err := c.do(ctx, "update", saveProgressMutation, map[string]interface{}{
		"mediaId":  mediaID,
		"progress": progress,
	}, true)
	if err != nil {
		return anime.SaveResult{}, err
	}

	entry := gjson.Get(body, "data.SaveMediaListEntry")
	if !entry.IsObject() {
		return anime.SaveResult{}, &anime.RemoteAPIError{Message: "unknown error updating anime progress"}
	}
	return anime.SaveResult{
		ID:       int(entry.Get("id").Int()),
		Progress: int(entry.Get("progress").Int()),
		Status:   entry.Get("status").String(),
	}, nil
}

// do posts a GraphQL document and returns the raw JSON body. A non-empty
// errors array is reported as a RemoteAPIError carrying the first message.
func (c *Client) do(ctx context.Context, op, query string, variables map[string]interface{}, auth bool) (string, error) {
	data, err := sjson.Set(`{}`, "query", query)
	if err != nil {
		return "", err
	}
	for name, value := range variables {
		if data, err = sjson.Set(data, "variables."+name, value); err != nil {
			return "", err
		}
	}

	headers := []whttp.WHTTPHeader{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Accept", Value: "application/json"},
	}
	if auth {
		headers = append(headers, whttp.WHTTPHeader{Name: "Authorization", Value: "Bearer " + c.token})
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.endpoint,
		Body:    data,
		Headers: headers,
	}, c.http)
	if err != nil {
		return "", &anime.NetworkError{Op: op, Err: err}
	}

	if !gjson.Valid(res.BodyString) {
		return "", &anime.RemoteAPIError{Message: fmt.Sprintf("invalid API response (HTTP %d)", res.StatusCode)}
	}

	if errs := gjson.Get(res.BodyString, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		utils.Log.Debugf("%s error: %s", op, utils.Truncate(errs.Raw, 500))
		msg := errs.Get("0.message").String()
		if msg == "" {
			msg = fmt.Sprintf("%s failed (HTTP %d)", op, res.StatusCode)
		}
		return "", &anime.RemoteAPIError{Message: msg}
	}

	return res.BodyString, nil
}
