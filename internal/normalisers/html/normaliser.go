package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML pages, such as saved lecture notes or web articles.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts readable text from an HTML page. The title comes from
// <title>, then the first <h1>, then the filename.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: no document", domain.ErrInvalidArgument)
	}

	page, err := extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNoContent, raw.Filename(), err)
	}

	title := page.title
	if title == "" {
		title = page.heading
	}
	if title == "" {
		title = raw.Title()
	}

	return &driven.NormaliseResult{Title: title, Text: page.text}, nil
}

// Elements whose content is never study text.
var hidden = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// Elements that start and end a line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Figure: true, atom.Figcaption: true, atom.Hr: true, atom.Br: true,
}

type page struct {
	title   string
	heading string
	text    string
}

// extract walks the token stream once, collecting body text, the <title>
// and the first <h1>.
func extract(content []byte) (page, error) {
	var (
		p         page
		body      strings.Builder
		title     strings.Builder
		heading   strings.Builder
		skip      int
		inTitle   bool
		inHeading bool
		seenH1    bool
	)

	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return p, err
			}
			p.title = collapse(title.String())
			p.heading = collapse(heading.String())
			p.text = lines(body.String())
			return p, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			switch {
			case tag == atom.Title:
				inTitle = tt == html.StartTagToken
			case tag == atom.Body:
				// Browsers close an unterminated <head> here too.
				skip = 0
			case hidden[tag]:
				if tt == html.StartTagToken {
					skip++
				}
			case tag == atom.H1 && !seenH1:
				inHeading = tt == html.StartTagToken
				seenH1 = true
			}
			if blocks[tag] {
				body.WriteByte('\n')
			}
			if tag == atom.Li {
				body.WriteString("- ")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			switch {
			case tag == atom.Title:
				inTitle = false
			case tag == atom.H1:
				inHeading = false
			case hidden[tag] && skip > 0:
				skip--
			}
			if blocks[tag] {
				body.WriteByte('\n')
			}
			if tag == atom.Td || tag == atom.Th {
				body.WriteByte(' ')
			}

		case html.TextToken:
			text := z.Text()
			switch {
			case inTitle:
				title.Write(text)
			case skip > 0:
			default:
				body.Write(text)
				if inHeading {
					heading.Write(text)
				}
			}
		}
	}
}

// lines collapses spaces within each line and drops blank lines.
func lines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = collapse(line); line != "" && line != "-" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
