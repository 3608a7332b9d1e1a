// Package markdown renders pod descriptions from Markdown to HTML.
//
// The renderer follows CommonMark (ATX headers need a space after the
// hashes), never starts emphasis inside a word, passes raw HTML through,
// turns bare URLs into links, and highlights code blocks with chroma using inline styles so feed
// readers without stylesheets still show colors. Code blocks without a
// language hint are highlighted as Ruby unless configured otherwise.
package markdown

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

const (
	// DefaultLanguage is assumed for code blocks without a language hint.
	DefaultLanguage = "ruby"

	// DefaultStyle is the chroma style used for highlighting.
	DefaultStyle = "github"
)

// Renderer converts Markdown text to HTML.
type Renderer interface {
	Render(src string) (string, error)
}

// Option configures a Goldmark renderer.
type Option func(*config)

type config struct {
	language string
	style    string
}

// WithDefaultLanguage sets the language used for code blocks without a hint.
func WithDefaultLanguage(lang string) Option {
	return func(c *config) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithStyle sets the chroma style name (e.g. "github", "monokai").
// Unknown names fall back to chroma's default style.
func WithStyle(name string) Option {
	return func(c *config) {
		if name != "" {
			c.style = name
		}
	}
}

// Goldmark is a Renderer backed by goldmark. It is built once and is safe
// for concurrent use.
type Goldmark struct {
	md goldmark.Markdown
}

// New creates a Goldmark renderer.
func New(opts ...Option) *Goldmark {
	cfg := config{language: DefaultLanguage, style: DefaultStyle}
	for _, opt := range opts {
		opt(&cfg)
	}

	code := &codeBlockRenderer{
		language:  cfg.language,
		style:     styles.Get(cfg.style),
		formatter: chromahtml.New(chromahtml.TabWidth(4)),
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithParserOptions(
			parser.WithInlineParsers(util.Prioritized(emphasisParser{}, 450)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(code, 100)),
		),
	)
	return &Goldmark{md: md}
}

// Render converts src to HTML.
func (g *Goldmark) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(src), &buf); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeRenderFailed, err, "render markdown")
	}
	return strings.TrimSpace(buf.String()), nil
}

var _ Renderer = (*Goldmark)(nil)

// codeBlockRenderer replaces goldmark's plain <pre><code> output for fenced
// and indented code blocks with chroma-highlighted HTML.
type codeBlockRenderer struct {
	language  string
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	lang := r.language
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		if info := strings.Fields(string(fenced.Language(source))); len(info) > 0 {
			lang = info[0]
		}
	}

	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if err := r.highlight(w, code.String(), lang); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) highlight(w util.BufWriter, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	return r.formatter.Format(w, r.style, it)
}

// emphasisParser runs ahead of goldmark's own emphasis parser. A '*' or '_'
// run directly after a letter or digit cannot open emphasis, so
// "foo*bar*baz" stays literal.
type emphasisParser struct{}

func (emphasisParser) Trigger() []byte { return []byte{'*', '_'} }

func (emphasisParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, emphasisDelimiters{})
	if node == nil {
		return nil
	}
	if unicode.IsLetter(before) || unicode.IsDigit(before) {
		node.CanOpen = false
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

type emphasisDelimiters struct{}

func (emphasisDelimiters) IsDelimiter(b byte) bool { return b == '*' || b == '_' }

func (emphasisDelimiters) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (emphasisDelimiters) OnMatch(consumes int) ast.Node { return ast.NewEmphasis(consumes) }
