// Package parser holds the vendor firmware parsers and the registry that
// picks one for a fetched modem page.
package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dm/cmm-go/internal/client"
	"github.com/dm/cmm-go/internal/model"
)

// Session is the transport a parser uses for login and restart requests.
// *client.Session satisfies it.
type Session interface {
	URL(path string) string
	Get(ctx context.Context, rawURL string, basicAuth bool) (*client.Response, error)
	PostForm(ctx context.Context, rawURL string, form url.Values) (*client.Response, error)
}

// Credentials are the modem admin credentials.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether login should be skipped.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// LoginResult is the outcome of a vendor login. When HTML is non-empty the
// vendor flow returned the authenticated status page directly and it must be
// parsed in place of the page fetched before login.
type LoginResult struct {
	OK   bool
	HTML string
}

// Page is a fetched modem page, parsed once and shared by every detector.
type Page struct {
	Doc  *goquery.Document
	HTML string
	URL  string
}

// NewPage parses html fetched from pageURL.
func NewPage(html, pageURL string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	return Page{Doc: doc, HTML: html, URL: pageURL}, nil
}

// Title returns the trimmed <title> text, or "".
func (p Page) Title() string {
	if p.Doc == nil {
		return ""
	}
	return strings.TrimSpace(p.Doc.Find("title").First().Text())
}

// Parser is one supported vendor firmware family.
type Parser interface {
	// Name is the modem family shown to users, e.g. "Motorola MB Series".
	Name() string
	Manufacturer() string
	// Detect reports whether this parser understands page.
	Detect(page Page) bool
	// Parse extracts channels and system info. Malformed values degrade to
	// zero; Parse never fails the whole page.
	Parse(page Page) model.RawExtraction
	// Login authenticates s. Implementations may return the authenticated
	// status page in LoginResult.HTML.
	Login(ctx context.Context, s Session, creds Credentials) (LoginResult, error)
}

// Restarter is implemented by parsers whose firmware supports a remote reboot.
type Restarter interface {
	Restart(ctx context.Context, s Session) (bool, error)
}
