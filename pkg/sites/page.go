package sites

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/animesync/animesync/pkg/whttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

// Page is a parsed document together with the address it was loaded from.
type Page struct {
	URL   *url.URL
	Doc   *goquery.Document
	Title string
}

// NewPage parses body as the document served at rawURL.
func NewPage(rawURL string, body io.Reader) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid page URL %q: missing host", rawURL)
	}

	root, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Url = u

	return &Page{
		URL:   u,
		Doc:   doc,
		Title: strings.TrimSpace(doc.Find("head title").First().Text()),
	}, nil
}

// FetchPage downloads rawURL and parses it. client may be nil.
func FetchPage(ctx context.Context, rawURL string, client *retryablehttp.Client) (*Page, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    rawURL,
		Headers: []whttp.WHTTPHeader{
			{Name: "Accept", Value: "text/html,application/xhtml+xml"},
		},
	}, client)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, res.StatusCode)
	}
	return NewPage(rawURL, strings.NewReader(res.BodyString))
}

// Origin returns scheme://host of the page.
func (p *Page) Origin() string {
	return p.URL.Scheme + "://" + p.URL.Host
}
