// Package collector walks one file's Ruby AST and emits the raw,
// unresolved constant references and definitions the rest of the
// pipeline joins against a constant resolver. It also implements the
// Self-Reference Filter that drops a reference sitting at the exact
// source location of its own definition.
package collector

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	rubyrefs "github.com/perryqh/ruby-references-go"
	"github.com/perryqh/ruby-references-go/internal/inflect"
	"github.com/perryqh/ruby-references-go/internal/rbparse"
)

// builtinAssociations are the association DSL method names recognized
// regardless of configuration.
var builtinAssociations = []string{"has_one", "has_many", "belongs_to", "has_and_belongs_to_many"}

// callNodeKinds are the tree-sitter-ruby node kinds that represent a
// method invocation, with or without a receiver or parentheses.
var callNodeKinds = map[string]bool{"call": true, "command": true, "command_call": true}

// superclassRef mirrors a name seen while visiting a class's superclass
// expression, so the nesting rule in onConst can special-case it.
type superclassRef struct {
	name          string
	namespacePath []string
}

// Collector accumulates references and definitions while walking a
// single file's AST.
type Collector struct {
	source             []byte
	customAssociations []string
	acronyms           inflect.AcronymSet

	references []rubyrefs.UnresolvedReference
	definitions []rubyrefs.ParsedDefinition

	currentNamespaces []string
	inSuperclass      bool
	superclasses      []superclassRef
}

// Collect walks the AST rooted at root (the tree-sitter Ruby parse
// tree's root node) and returns every unresolved reference and
// definition it found, in source order.
func Collect(root *tree_sitter.Node, source []byte, customAssociations []string, acronyms inflect.AcronymSet) ([]rubyrefs.UnresolvedReference, []rubyrefs.ParsedDefinition) {
	c := &Collector{source: source, customAssociations: customAssociations, acronyms: acronyms}
	if root != nil {
		c.walkChildren(root)
	}
	return c.references, c.definitions
}

func rangeOf(n *tree_sitter.Node) rubyrefs.Range {
	start := n.StartPosition()
	end := n.EndPosition()
	return rubyrefs.Range{
		StartRow: int(start.Row) + 1,
		StartCol: int(start.Column),
		EndRow:   int(end.Row) + 1,
		EndCol:   int(end.Column),
	}
}

// walkChildren recurses into every named child of n using the default
// dispatch, the way a plain traversal over any node not otherwise
// special-cased behaves.
func (c *Collector) walkChildren(n *tree_sitter.Node) {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child != nil {
			c.visit(child)
		}
	}
}

// visit dispatches on node kind, matching the reference implementation's
// visitor overrides: class/module declarations, constant assignment,
// constant references, and association-DSL method calls all get
// special handling; everything else just recurses into its children.
func (c *Collector) visit(n *tree_sitter.Node) {
	switch n.Kind() {
	case "class":
		c.onClass(n)
	case "module":
		c.onModule(n)
	case "assignment":
		c.onAssignment(n)
	case "constant", "scope_resolution":
		c.onConst(n)
	case "call", "command", "command_call":
		c.onSend(n)
	default:
		c.walkChildren(n)
	}
}

func (c *Collector) onClass(n *tree_sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	namespace, ok := c.fetchConstName(nameNode)
	if !ok {
		// Metaprogramming in the class name; skip the declaration
		// entirely, matching the reference implementation.
		return
	}

	superclassesBefore := len(c.superclasses)
	if sc := n.ChildByFieldName("superclass"); sc != nil {
		expr := unwrapSuperclass(sc)
		if expr != nil {
			c.inSuperclass = true
			c.visit(expr)
			c.inSuperclass = false
		}
	}

	location := rangeOf(nameNode)
	definition := definitionFrom(namespace, c.currentNamespaces, location)
	namespacePath := append([]string(nil), c.currentNamespaces...)
	c.definitions = append(c.definitions, definition)
	// A declaration also counts as a reference to itself.
	c.references = append(c.references, rubyrefs.UnresolvedReference{
		Name:          definition.FullyQualifiedName,
		NamespacePath: namespacePath,
		Location:      location,
	})

	c.currentNamespaces = append(c.currentNamespaces, namespace)
	if body := n.ChildByFieldName("body"); body != nil {
		c.walkChildren(body)
	}
	c.currentNamespaces = c.currentNamespaces[:len(c.currentNamespaces)-1]
	c.superclasses = c.superclasses[:superclassesBefore]
}

func (c *Collector) onModule(n *tree_sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	namespace, ok := c.fetchConstName(nameNode)
	if !ok {
		return
	}

	location := rangeOf(nameNode)
	definition := definitionFrom(namespace, c.currentNamespaces, location)
	namespacePath := append([]string(nil), c.currentNamespaces...)
	c.definitions = append(c.definitions, definition)
	c.references = append(c.references, rubyrefs.UnresolvedReference{
		Name:          definition.FullyQualifiedName,
		NamespacePath: namespacePath,
		Location:      location,
	})

	c.currentNamespaces = append(c.currentNamespaces, namespace)
	if body := n.ChildByFieldName("body"); body != nil {
		c.walkChildren(body)
	}
	c.currentNamespaces = c.currentNamespaces[:len(c.currentNamespaces)-1]
}

// onAssignment handles CONST = expr; any other assignment target is
// left to the default recursive walk.
func (c *Collector) onAssignment(n *tree_sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || !isConstNode(left) {
		c.walkChildren(n)
		return
	}

	name, ok := c.fetchConstName(left)
	if ok {
		fqn := joinFQN(c.currentNamespaces, name)
		c.definitions = append(c.definitions, rubyrefs.ParsedDefinition{
			FullyQualifiedName: fqn,
			Location:           rangeOf(n),
		})
	}
	// Multi-assignment targets (A, B = 1, 2) are not handled: their left
	// side is not a constant node, so they took the default walk above
	// and define nothing.
	if right != nil {
		c.visit(right)
	}
}

// onConst handles a top-level constant/scope_resolution reference node.
// It does not recurse into the node's children: fetchConstName already
// consumes the whole scope chain in one pass.
func (c *Collector) onConst(n *tree_sitter.Node) {
	name, ok := c.fetchConstName(n)
	if !ok {
		return
	}

	if c.inSuperclass {
		c.superclasses = append(c.superclasses, superclassRef{
			name:          name,
			namespacePath: append([]string(nil), c.currentNamespaces...),
		})
	}

	// Packwerk-compatible nesting rule: a superclass with the same
	// name as this reference shadows the normal namespace filtering.
	var matched *superclassRef
	for i := range c.superclasses {
		if c.superclasses[i].name == name {
			matched = &c.superclasses[i]
			break
		}
	}

	var namespacePath []string
	if matched != nil {
		namespacePath = append([]string(nil), matched.namespacePath...)
	} else {
		hasMatchingSuperclass := false
		for _, sc := range c.superclasses {
			if sc.name == name {
				hasMatchingSuperclass = true
				break
			}
		}
		for _, ns := range c.currentNamespaces {
			if ns != name || hasMatchingSuperclass {
				namespacePath = append(namespacePath, ns)
			}
		}
	}

	c.references = append(c.references, rubyrefs.UnresolvedReference{
		Name:          name,
		NamespacePath: namespacePath,
		Location:      rangeOf(n),
	})
}

func (c *Collector) onSend(n *tree_sitter.Node) {
	if ref := c.associationReference(n); ref != nil {
		c.references = append(c.references, *ref)
	}
	c.walkChildren(n)
}

func (c *Collector) associationReference(n *tree_sitter.Node) *rubyrefs.UnresolvedReference {
	methodNode := n.ChildByFieldName("method")
	if methodNode == nil {
		return nil
	}
	method := rbparse.NodeText(methodNode, c.source)

	isAssociation := false
	for _, a := range builtinAssociations {
		if a == method {
			isAssociation = true
			break
		}
	}
	if !isAssociation {
		for _, a := range c.customAssociations {
			if a == method {
				isAssociation = true
				break
			}
		}
	}
	if !isAssociation {
		return nil
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	var name string
	var found bool
	var firstArg *tree_sitter.Node

	argCount := args.NamedChildCount()
	for i := uint(0); i < argCount; i++ {
		arg := args.NamedChild(i)
		if arg == nil {
			continue
		}
		if firstArg == nil {
			firstArg = arg
		}
		if className, ok := classNameFromPair(arg, c.source); ok {
			name = className
			found = true
		}
		if arg.Kind() == "hash" {
			hc := arg.NamedChildCount()
			for j := uint(0); j < hc; j++ {
				pair := arg.NamedChild(j)
				if pair == nil {
					continue
				}
				if className, ok := classNameFromPair(pair, c.source); ok {
					name = className
					found = true
				}
			}
		}
	}

	if !found && firstArg != nil && isSymbolNode(firstArg) {
		symText := symbolText(firstArg, c.source)
		name = inflect.ToClassCase(symText, true, c.acronyms)
		found = true
	}

	if !found {
		return nil
	}

	return &rubyrefs.UnresolvedReference{
		Name:          name,
		NamespacePath: append([]string(nil), c.currentNamespaces...),
		Location:      rangeOf(n),
	}
}

func classNameFromPair(n *tree_sitter.Node, source []byte) (string, bool) {
	if n == nil || n.Kind() != "pair" {
		return "", false
	}
	key := n.ChildByFieldName("key")
	value := n.ChildByFieldName("value")
	if key == nil || value == nil {
		return "", false
	}
	keyText := rbparse.NodeText(key, source)
	keyText = strings.TrimSuffix(keyText, ":")
	keyText = strings.TrimPrefix(keyText, ":")
	if keyText != "class_name" {
		return "", false
	}
	if value.Kind() != "string" {
		return "", false
	}
	return stringLiteralValue(value, source), true
}

func isSymbolNode(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "simple_symbol", "symbol", "bare_symbol":
		return true
	default:
		return false
	}
}

func symbolText(n *tree_sitter.Node, source []byte) string {
	return strings.TrimPrefix(rbparse.NodeText(n, source), ":")
}

// stringLiteralValue extracts the literal contents of a simple,
// unescaped "..." string node by taking the inner string_content
// child if present, else trimming the surrounding quote characters.
func stringLiteralValue(n *tree_sitter.Node, source []byte) string {
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := n.NamedChild(i)
		if child != nil && child.Kind() == "string_content" {
			return rbparse.NodeText(child, source)
		}
	}
	return strings.Trim(rbparse.NodeText(n, source), `"'`)
}

func unwrapSuperclass(n *tree_sitter.Node) *tree_sitter.Node {
	if n.Kind() == "superclass" {
		if n.NamedChildCount() > 0 {
			return n.NamedChild(0)
		}
		return nil
	}
	return n
}

func isConstNode(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "constant", "scope_resolution":
		return true
	default:
		return false
	}
}

// fetchConstName resolves a constant-like node to its textual name,
// recursively walking a scope_resolution's scope chain. Absolute
// references (leading "::") and any name nested under one keep the
// leading "::" through recursion; a bare constant never gains one.
// Any other node kind (a method call, local/instance variable, self,
// etc. used as a scope) is metaprogramming and resolution fails.
func (c *Collector) fetchConstName(n *tree_sitter.Node) (string, bool) {
	switch n.Kind() {
	case "constant":
		return rbparse.NodeText(n, c.source), true
	case "scope_resolution":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return "", false
		}
		name := rbparse.NodeText(nameNode, c.source)
		scope := n.ChildByFieldName("scope")
		if scope == nil {
			// "::Foo": the implicit root namespace.
			return "::" + name, true
		}
		parent, ok := c.fetchConstName(scope)
		if !ok {
			return "", false
		}
		return parent + "::" + name, true
	default:
		return "", false
	}
}

func definitionFrom(currentNesting string, parentNesting []string, location rubyrefs.Range) rubyrefs.ParsedDefinition {
	return rubyrefs.ParsedDefinition{
		FullyQualifiedName: joinFQN(parentNesting, currentNesting),
		Location:           location,
	}
}

func joinFQN(parentNesting []string, name string) string {
	if len(parentNesting) == 0 {
		return "::" + name
	}
	return "::" + strings.Join(append(append([]string(nil), parentNesting...), name), "::")
}
