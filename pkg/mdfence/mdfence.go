// Package mdfence finds fenced code blocks of one language in a Markdown
// document and rewrites their contents in place, leaving every other byte
// of the document untouched.
package mdfence

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var mdParser = goldmark.New()

// Block is the content of one fenced code block.
type Block struct {
	Lang string
	Code []byte // content lines with the container prefix removed
	Line int    // 1-based line of the first content line

	start  int    // offset of the first content line
	end    int    // offset just past the last content line
	prefix []byte // container indentation (list item, blockquote) of each line
}

// Find returns the non-empty fenced code blocks whose info string starts
// with lang, in document order.
func Find(src []byte, lang string) []Block {
	doc := mdParser.Parser().Parse(text.NewReader(src))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok || string(fence.Language(src)) != lang {
			return ast.WalkContinue, nil
		}
		lines := fence.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		first, last := lines.At(0), lines.At(lines.Len()-1)
		lineStart := bytes.LastIndexByte(src[:first.Start], '\n') + 1
		b := Block{
			Lang:   lang,
			Line:   bytes.Count(src[:first.Start], []byte("\n")) + 1,
			start:  lineStart,
			end:    last.Stop,
			prefix: src[lineStart:first.Start],
		}
		var code bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}
		b.Code = code.Bytes()
		blocks = append(blocks, b)
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// Rewrite replaces the content of every lang block with the result of fn.
// The container prefix of the block is reapplied to each returned line.
// The first error from fn stops the rewrite; it is annotated with the
// block's line.
func Rewrite(src []byte, lang string, fn func(Block) ([]byte, error)) ([]byte, error) {
	var out bytes.Buffer
	last := 0
	for _, b := range Find(src, lang) {
		code, err := fn(b)
		if err != nil {
			return nil, fmt.Errorf("block at line %d: %w", b.Line, err)
		}
		out.Write(src[last:b.start])
		writePrefixed(&out, code, b.prefix)
		last = b.end
	}
	out.Write(src[last:])
	return out.Bytes(), nil
}

func writePrefixed(out *bytes.Buffer, code, prefix []byte) {
	if len(code) > 0 && code[len(code)-1] != '\n' {
		code = append(code[:len(code):len(code)], '\n')
	}
	blank := bytes.TrimRight(prefix, " \t")
	for len(code) > 0 {
		i := bytes.IndexByte(code, '\n') + 1
		line := code[:i]
		if len(bytes.TrimSpace(line)) == 0 {
			out.Write(blank)
			out.WriteByte('\n')
		} else {
			out.Write(prefix)
			out.Write(line)
		}
		code = code[i:]
	}
}
