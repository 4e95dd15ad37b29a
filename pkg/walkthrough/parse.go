package walkthrough

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/codewalk/pkg/debug"
	"github.com/vanderheijden86/codewalk/pkg/metrics"
	"github.com/vanderheijden86/codewalk/pkg/step"
)

// focusScheme prefixes link destinations that request a file/focus change:
// [text](focus:main.go#3:5), [text](focus:#3) or [text](focus:util.go).
const focusScheme = "focus:"

// previewLang marks a fenced block as the step's preview descriptor.
const previewLang = "preview"

// Load reads and parses a walkthrough file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading walkthrough: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse parses walkthrough Markdown.
func Parse(content []byte) (*Document, error) {
	defer metrics.Timer(metrics.Parse)()

	meta, body, err := extractFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	root := newMarkdown().Parser().Parse(text.NewReader(body))
	lineStarts := lineOffsets(body)

	doc := &Document{Meta: meta}
	for _, g := range splitSteps(root, lineStarts) {
		b, err := parseBlock(len(doc.Blocks), g, body, lineStarts)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", len(doc.Blocks)+1, err)
		}
		doc.Blocks = append(doc.Blocks, b)
	}
	debug.Log("walkthrough: parsed %d steps", len(doc.Blocks))
	return doc, nil
}

// extractFrontmatter splits an optional YAML header off the content.
func extractFrontmatter(content []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, content, nil
	}

	rest := content[4:]
	var yamlContent, remaining []byte
	if bytes.HasPrefix(rest, []byte("---\n")) {
		remaining = rest[4:]
	} else {
		endIdx := bytes.Index(rest, []byte("\n---\n"))
		if endIdx == -1 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return fm, nil, fmt.Errorf("unclosed frontmatter")
			}
			endIdx = len(rest) - 4
			yamlContent, remaining = rest[:endIdx], nil
		} else {
			yamlContent, remaining = rest[:endIdx], rest[endIdx+5:]
		}
	}

	if err := yaml.Unmarshal(yamlContent, &fm); err != nil {
		return fm, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if fm.Start != nil && *fm.Start < 0 {
		return fm, nil, fmt.Errorf("start must not be negative, got %d", *fm.Start)
	}
	return fm, remaining, nil
}

// newMarkdown returns a GFM parser whose thematic breaks remember their
// source line.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithBlockParsers(
			util.Prioritized(breakParser{parser.NewThematicBreakParser()}, 199),
		)),
	)
}

// breakParser wraps the thematic break parser and stores the break's line
// segment in the node's lines.
type breakParser struct {
	parser.BlockParser
}

func (p breakParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, seg := reader.PeekLine()
	node, state := p.BlockParser.Open(parent, reader, pc)
	if node != nil {
		node.Lines().Append(seg)
	}
	return node, state
}

// stepGroup is the top-level nodes of one step and the source lines
// [first, last] between its separators.
type stepGroup struct {
	nodes       []ast.Node
	first, last int
}

// splitSteps groups the top-level children of root at thematic breaks.
// Groups without nodes (blank space between breaks) are dropped.
func splitSteps(root ast.Node, lineStarts []int) []stepGroup {
	var groups []stepGroup
	var cur stepGroup
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*ast.ThematicBreak); !ok || n.Lines().Len() == 0 {
			cur.nodes = append(cur.nodes, n)
			continue
		}
		at := lineAt(lineStarts, n.Lines().At(0).Start)
		cur.last = at - 1
		if len(cur.nodes) > 0 {
			groups = append(groups, cur)
		}
		cur = stepGroup{first: at + 1}
	}
	cur.last = len(lineStarts) - 1
	if len(cur.nodes) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// codeInfo is the parsed info string of a fenced block:
// "go main.go focus=3:5" -> lang go, name main.go, focus 3:5.
type codeInfo struct {
	Lang  string
	Name  string
	Focus string
	Attrs map[string]string
}

func parseInfo(info string) codeInfo {
	ci := codeInfo{Attrs: map[string]string{}}
	for i, part := range strings.Fields(info) {
		if k, v, ok := strings.Cut(part, "="); ok {
			ci.Attrs[k] = strings.Trim(v, `"'`)
			continue
		}
		switch {
		case i == 0:
			ci.Lang = part
		case ci.Name == "":
			ci.Name = part
		}
	}
	ci.Focus = ci.Attrs["focus"]
	if ci.Name == "" {
		ci.Name = ci.Attrs["file"]
	}
	return ci
}

// parseBlock builds one step from its group of nodes. Named code blocks
// become files, preview blocks become the preview descriptor, and both are
// cut from the narrative.
func parseBlock(index int, g stepGroup, src []byte, lineStarts []int) (Block, error) {
	b := Block{Index: index}
	removed := map[int]bool{}

	visit := func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if b.Title == "" {
				b.Title = plainText(node, src)
			}

		case *ast.FencedCodeBlock:
			if node.Info == nil {
				return ast.WalkSkipChildren, nil
			}
			ci := parseInfo(string(node.Info.Segment.Value(src)))
			code := blockContent(node, src)

			switch {
			case ci.Lang == previewLang:
				if b.HasPreview {
					return ast.WalkStop, fmt.Errorf("more than one preview block")
				}
				b.Preview = strings.TrimRight(code, "\n")
				b.HasPreview = true
			case ci.Name != "":
				if !step.ValidFocus(ci.Focus) {
					debug.Log("walkthrough: step %d file %s: unparseable focus %q", index+1, ci.Name, ci.Focus)
				}
				b.Files = append(b.Files, step.File{Name: ci.Name, Lang: ci.Lang, Code: code, Focus: ci.Focus})
				b.Active = ci.Name
			default:
				return ast.WalkSkipChildren, nil
			}
			markFence(node, src, lineStarts, removed)
			return ast.WalkSkipChildren, nil

		case *ast.Link:
			dest := string(node.Destination)
			if !strings.HasPrefix(dest, focusScheme) {
				return ast.WalkContinue, nil
			}
			id := fmt.Sprintf("%d-%d", index, len(b.Links))
			b.Links = append(b.Links, Link{
				ID:      id,
				Text:    plainText(node, src),
				Request: parseFocusLink(dest, id),
			})
		}
		return ast.WalkContinue, nil
	}
	for _, n := range g.nodes {
		if err := ast.Walk(n, visit); err != nil {
			return b, err
		}
	}

	b.Markdown = strings.TrimSpace(keepLines(src, lineStarts, g.first, g.last, removed))
	return b, nil
}

// parseFocusLink turns "focus:main.go#3:5" into a request.
func parseFocusLink(dest, id string) step.FocusRequest {
	target := strings.TrimPrefix(dest, focusScheme)
	file, focus, _ := strings.Cut(target, "#")
	return step.FocusRequest{FileName: file, Focus: focus, ID: id}
}

func blockContent(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.CodeSpan:
			for g := t.FirstChild(); g != nil; g = g.NextSibling() {
				if txt, ok := g.(*ast.Text); ok {
					buf.Write(txt.Segment.Value(src))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// lineOffsets returns the byte offset of every line start.
func lineOffsets(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineAt(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// markFence marks the lines of a fenced block, fences included, as removed.
func markFence(node *ast.FencedCodeBlock, src []byte, starts []int, removed map[int]bool) {
	open := lineAt(starts, node.Info.Segment.Start)
	last := open
	if lines := node.Lines(); lines.Len() > 0 {
		last = lineAt(starts, lines.At(lines.Len()-1).Start)
	}
	if next := last + 1; next < len(starts) && closesFence(line(src, starts, open), line(src, starts, next)) {
		last = next
	}
	for l := open; l <= last; l++ {
		removed[l] = true
	}
}

// closesFence reports whether candidate is the closing fence of the block
// opened by opening: the same fence character, at least as many times, and
// nothing else.
func closesFence(opening, candidate string) bool {
	opening = strings.TrimSpace(opening)
	candidate = strings.TrimSpace(candidate)
	if opening == "" || candidate == "" {
		return false
	}
	c := opening[0]
	n := len(opening) - len(strings.TrimLeft(opening, string(c)))
	return strings.Trim(candidate, string(c)) == "" && len(candidate) >= n
}

func line(src []byte, starts []int, i int) string {
	end := len(src)
	if i+1 < len(starts) {
		end = starts[i+1]
	}
	return string(src[starts[i]:end])
}

// keepLines joins lines first..last that were not removed.
func keepLines(src []byte, starts []int, first, last int, removed map[int]bool) string {
	var buf bytes.Buffer
	for i := first; i <= last && i < len(starts); i++ {
		if !removed[i] {
			buf.WriteString(line(src, starts, i))
		}
	}
	return buf.String()
}
