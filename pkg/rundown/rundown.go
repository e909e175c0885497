// Package rundown splits a markdown document into literal text and code
// blocks.
//
// Markdown structure is recognized entirely by goldmark; this package only
// maps goldmark's line segments and fence positions back onto the original
// bytes. The components
// returned by Split tile the input exactly, so writing their sources back in
// order reproduces the document byte for byte.
package rundown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ComponentKind distinguishes literal text from code blocks
type ComponentKind int

const (
	LiteralText ComponentKind = iota
	CodeBlock
)

func (k ComponentKind) String() string {
	switch k {
	case LiteralText:
		return "text"
	case CodeBlock:
		return "code"
	default:
		return fmt.Sprintf("ComponentKind(%d)", k)
	}
}

// FlavorKind is the markdown syntax a code block was written with
type FlavorKind int

const (
	Indented FlavorKind = iota
	Fenced
)

func (k FlavorKind) String() string {
	switch k {
	case Indented:
		return "indented"
	case Fenced:
		return "fenced"
	default:
		return fmt.Sprintf("FlavorKind(%d)", k)
	}
}

// Flavor describes how a code block was delimited. The line fields are only
// set for fenced blocks and never include the line ending.
type Flavor struct {
	Kind       FlavorKind
	StartLine  string // opening fence line
	EndLine    string // closing fence line, if HasEndLine
	HasEndLine bool   // false when the fence runs to the end of its container
	InfoString string
}

// Component is one slice of the document. Source is input[Start:End].
type Component struct {
	Kind   ComponentKind
	Source string
	Start  int
	End    int

	// Code blocks only
	Flavor Flavor
	Body   string // content as goldmark reports it, indentation removed
}

// Language returns the first word of a fenced block's info string.
func (c Component) Language() string {
	if c.Kind != CodeBlock || c.Flavor.Kind != Fenced {
		return ""
	}
	fields := strings.Fields(c.Flavor.InfoString)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Split parses source as markdown and returns its components. The result
// alternates literal text and code blocks, always beginning and ending with
// a (possibly empty) literal text component.
func Split(source string) []Component {
	src := []byte(source)
	fences := make(map[gmast.Node]*fence)
	doc := newParser(fences).Parse(text.NewReader(src))

	var components []Component
	cursor := 0

	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		var block Component
		var ok bool
		switch node := n.(type) {
		case *gmast.FencedCodeBlock:
			block, ok = fencedBlock(src, node, fences[node])
		case *gmast.CodeBlock:
			block, ok = indentedBlock(src, node)
		default:
			return gmast.WalkContinue, nil
		}

		if ok && block.Start >= cursor {
			components = append(components, literal(source, cursor, block.Start), block)
			cursor = block.End
		}
		return gmast.WalkSkipChildren, nil
	})

	return append(components, literal(source, cursor, len(source)))
}

// fence records where goldmark found a fenced block's delimiter lines.
// Offsets point somewhere inside the line, after any container markers.
type fence struct {
	open   int
	close  int
	closed bool
}

// fenceRecorder wraps goldmark's fenced code parser and notes the lines it
// opens and closes blocks on. The AST keeps neither position, and an empty
// block without an info string has no segment at all.
type fenceRecorder struct {
	parser.BlockParser
	fences map[gmast.Node]*fence
}

func (r *fenceRecorder) Open(parent gmast.Node, reader text.Reader, pc parser.Context) (gmast.Node, parser.State) {
	_, segment := reader.PeekLine()
	node, state := r.BlockParser.Open(parent, reader, pc)
	if node != nil {
		r.fences[node] = &fence{open: segment.Start}
	}
	return node, state
}

func (r *fenceRecorder) Continue(node gmast.Node, reader text.Reader, pc parser.Context) parser.State {
	_, segment := reader.PeekLine()
	state := r.BlockParser.Continue(node, reader, pc)
	if state&parser.Close != 0 {
		if f := r.fences[node]; f != nil {
			f.close = segment.Start
			f.closed = true
		}
	}
	return state
}

// newParser returns goldmark's default parser with the fenced code parser
// wrapped to fill fences
func newParser(fences map[gmast.Node]*fence) parser.Parser {
	blocks := parser.DefaultBlockParsers()
	for i, v := range blocks {
		if v.Value == parser.NewFencedCodeBlockParser() {
			bp := v.Value.(parser.BlockParser)
			blocks[i] = util.Prioritized(&fenceRecorder{BlockParser: bp, fences: fences}, v.Priority)
		}
	}
	return parser.NewParser(
		parser.WithBlockParsers(blocks...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
}

// Render writes the components back out.
func Render(w io.Writer, components []Component) error {
	for _, c := range components {
		if _, err := io.WriteString(w, c.Source); err != nil {
			return err
		}
	}
	return nil
}

// CodeBlocks returns only the code block components.
func CodeBlocks(components []Component) []Component {
	var blocks []Component
	for _, c := range components {
		if c.Kind == CodeBlock {
			blocks = append(blocks, c)
		}
	}
	return blocks
}

func literal(source string, start, end int) Component {
	return Component{Kind: LiteralText, Source: source[start:end], Start: start, End: end}
}

func indentedBlock(src []byte, n *gmast.CodeBlock) (Component, bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return Component{}, false
	}

	start := lineStart(src, lines.At(0).Start)
	end := lineEnd(src, lines.At(lines.Len()-1).Start)

	return Component{
		Kind:   CodeBlock,
		Source: string(src[start:end]),
		Start:  start,
		End:    end,
		Flavor: Flavor{Kind: Indented},
		Body:   blockBody(src, lines),
	}, true
}

func fencedBlock(src []byte, n *gmast.FencedCodeBlock, f *fence) (Component, bool) {
	if f == nil {
		return Component{}, false
	}
	lines := n.Lines()

	open := lineStart(src, f.open)
	flavor := Flavor{Kind: Fenced, StartLine: lineText(src, open)}
	if n.Info != nil {
		flavor.InfoString = string(n.Info.Segment.Value(src))
	}

	end := lineEnd(src, open)
	if lines.Len() > 0 {
		end = lineEnd(src, lines.At(lines.Len()-1).Start)
	}
	if f.closed {
		closeLine := lineStart(src, f.close)
		flavor.EndLine = lineText(src, closeLine)
		flavor.HasEndLine = true
		end = lineEnd(src, closeLine)
	}

	return Component{
		Kind:   CodeBlock,
		Source: string(src[open:end]),
		Start:  open,
		End:    end,
		Flavor: flavor,
		Body:   blockBody(src, lines),
	}, true
}

func blockBody(src []byte, lines *text.Segments) string {
	var buf strings.Builder
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

// lineStart returns the offset of the first byte of the line containing pos
func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

// lineEnd returns the offset just past the line ending of the line
// containing pos, or len(src) on the last line
func lineEnd(src []byte, pos int) int {
	i := bytes.IndexByte(src[pos:], '\n')
	if i < 0 {
		return len(src)
	}
	return pos + i + 1
}

// lineText returns the line starting at pos without its line ending
func lineText(src []byte, pos int) string {
	line := src[pos:lineEnd(src, pos)]
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return string(line)
}
