// Package rbparse wraps the tree-sitter Ruby grammar behind a pooled
// parser, mirroring the single-language slice of a multi-language
// tree-sitter pool.
package rbparse

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

var (
	languageOnce sync.Once
	language     *tree_sitter.Language
	parserPool   *sync.Pool
)

func initLanguage() {
	languageOnce.Do(func() {
		language = tree_sitter.NewLanguage(tree_sitter_ruby.Language())
		parserPool = &sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(language); err != nil {
					panic("rbparse: set language: " + err.Error())
				}
				return p
			},
		}
	})
}

// Parse parses Ruby source into a tree-sitter AST. Returns nil if the
// grammar could not produce a tree at all (distinct from a tree full of
// ERROR nodes, which is still usable). The caller must call tree.Close()
// when done.
func Parse(source []byte) *tree_sitter.Tree {
	initLanguage()

	p, _ := parserPool.Get().(*tree_sitter.Parser)
	tree := p.Parse(source, nil)
	parserPool.Put(p)

	return tree
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
