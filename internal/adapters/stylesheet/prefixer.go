package stylesheet

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Prefixer = (*Prefixer)(nil)

// prefixedName is the vendor spelling of a property.
type prefixedName struct {
	vendor string
	name   string
}

func vendorName(vendor, name string) prefixedName {
	return prefixedName{vendor: vendor, name: "-" + vendor + "-" + name}
}

func webkit(name string) []prefixedName {
	return []prefixedName{vendorName(domain.VendorWebkit, name)}
}

// propertyPrefixes lists, per unprefixed property, the vendor spellings
// emitted in front of it.
var propertyPrefixes = map[string][]prefixedName{
	"transform":           {vendorName(domain.VendorWebkit, "transform"), vendorName(domain.VendorMs, "transform")},
	"transform-origin":    {vendorName(domain.VendorWebkit, "transform-origin"), vendorName(domain.VendorMs, "transform-origin")},
	"transform-style":     webkit("transform-style"),
	"perspective":         webkit("perspective"),
	"perspective-origin":  webkit("perspective-origin"),
	"backface-visibility": webkit("backface-visibility"),

	"transition":                 webkit("transition"),
	"transition-property":        webkit("transition-property"),
	"transition-duration":        webkit("transition-duration"),
	"transition-timing-function": webkit("transition-timing-function"),
	"transition-delay":           webkit("transition-delay"),

	"animation":                 webkit("animation"),
	"animation-name":            webkit("animation-name"),
	"animation-duration":        webkit("animation-duration"),
	"animation-timing-function": webkit("animation-timing-function"),
	"animation-delay":           webkit("animation-delay"),
	"animation-iteration-count": webkit("animation-iteration-count"),
	"animation-direction":       webkit("animation-direction"),
	"animation-fill-mode":       webkit("animation-fill-mode"),
	"animation-play-state":      webkit("animation-play-state"),

	"user-select": {
		vendorName(domain.VendorWebkit, "user-select"),
		vendorName(domain.VendorMoz, "user-select"),
		vendorName(domain.VendorMs, "user-select"),
	},
	"appearance": {vendorName(domain.VendorWebkit, "appearance"), vendorName(domain.VendorMoz, "appearance")},
	"hyphens": {
		vendorName(domain.VendorWebkit, "hyphens"),
		vendorName(domain.VendorMoz, "hyphens"),
		vendorName(domain.VendorMs, "hyphens"),
	},
	"text-size-adjust": {
		vendorName(domain.VendorWebkit, "text-size-adjust"),
		vendorName(domain.VendorMoz, "text-size-adjust"),
		vendorName(domain.VendorMs, "text-size-adjust"),
	},
	"box-sizing":      {vendorName(domain.VendorWebkit, "box-sizing"), vendorName(domain.VendorMoz, "box-sizing")},
	"filter":          webkit("filter"),
	"backdrop-filter": webkit("backdrop-filter"),
	"mask":            webkit("mask"),
	"mask-image":      webkit("mask-image"),

	"columns":      {vendorName(domain.VendorWebkit, "columns"), vendorName(domain.VendorMoz, "columns")},
	"column-count": {vendorName(domain.VendorWebkit, "column-count"), vendorName(domain.VendorMoz, "column-count")},
	"column-gap":   {vendorName(domain.VendorWebkit, "column-gap"), vendorName(domain.VendorMoz, "column-gap")},
	"column-rule":  {vendorName(domain.VendorWebkit, "column-rule"), vendorName(domain.VendorMoz, "column-rule")},
	"column-width": {vendorName(domain.VendorWebkit, "column-width"), vendorName(domain.VendorMoz, "column-width")},

	// The 2012 IE10 flexbox draft used different property names.
	"flex":            {vendorName(domain.VendorWebkit, "flex"), vendorName(domain.VendorMs, "flex")},
	"flex-direction":  {vendorName(domain.VendorWebkit, "flex-direction"), vendorName(domain.VendorMs, "flex-direction")},
	"flex-wrap":       {vendorName(domain.VendorWebkit, "flex-wrap"), vendorName(domain.VendorMs, "flex-wrap")},
	"flex-flow":       {vendorName(domain.VendorWebkit, "flex-flow"), vendorName(domain.VendorMs, "flex-flow")},
	"flex-grow":       {vendorName(domain.VendorWebkit, "flex-grow"), vendorName(domain.VendorMs, "flex-positive")},
	"flex-shrink":     {vendorName(domain.VendorWebkit, "flex-shrink"), vendorName(domain.VendorMs, "flex-negative")},
	"flex-basis":      {vendorName(domain.VendorWebkit, "flex-basis"), vendorName(domain.VendorMs, "flex-preferred-size")},
	"order":           {vendorName(domain.VendorWebkit, "order"), vendorName(domain.VendorMs, "flex-order")},
	"justify-content": webkit("justify-content"),
	"align-items":     webkit("align-items"),
	"align-self":      webkit("align-self"),
	"align-content":   webkit("align-content"),
}

// valuePrefixes lists, per "property:value", the vendor values emitted in
// front of the declaration.
var valuePrefixes = map[string][]prefixedName{
	"display:flex": {
		{vendor: domain.VendorWebkit, name: "-webkit-flex"},
		{vendor: domain.VendorMs, name: "-ms-flexbox"},
	},
	"display:inline-flex": {
		{vendor: domain.VendorWebkit, name: "-webkit-inline-flex"},
		{vendor: domain.VendorMs, name: "-ms-inline-flexbox"},
	},
	"position:sticky": {
		{vendor: domain.VendorWebkit, name: "-webkit-sticky"},
	},
}

// propertyListValues hold property names in their value; the prefixed
// declaration refers to the prefixed properties.
var propertyListValues = map[string]bool{
	"transition":          true,
	"transition-property": true,
	"will-change":         true,
}

const (
	keyframesRule       = "@keyframes"
	webkitKeyframesRule = "@-webkit-keyframes"
)

// Prefixer adds vendor-prefixed declarations and at-rules in front of their
// standard spelling. It is idempotent: a prefixed form already present in a
// block is not added again.
type Prefixer struct{}

// NewPrefixer creates a Prefixer.
func NewPrefixer() *Prefixer {
	return &Prefixer{}
}

// Prefix implements ports.Prefixer.
func (p *Prefixer) Prefix(src []byte, opts domain.AutoprefixOptions) ([]byte, error) {
	root, err := parseSheet(src)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrPrefixFailed.Error())
	}

	vendors := opts.Vendors
	if len(vendors) == 0 {
		vendors = domain.Vendors
	}
	run := prefixRun{vendors: vendors}
	run.block(root, "")

	var out bytes.Buffer
	root.writeChildren(&out)
	return out.Bytes(), nil
}

type prefixRun struct {
	vendors []string
}

// enabled reports whether vendor prefixes are emitted inside a block scoped
// to scope ("" outside vendor-specific at-rules).
func (r prefixRun) enabled(vendor, scope string) bool {
	if scope != "" && scope != vendor {
		return false
	}
	return slices.Contains(r.vendors, vendor)
}

func (r prefixRun) block(n *node, scope string) {
	present := make(map[string]bool)
	for _, child := range n.children {
		switch child.grammar {
		case css.DeclarationGrammar:
			present[child.name] = true
			present[child.name+":"+child.valueString()] = true
		case css.BeginAtRuleGrammar:
			present[child.name+child.valueString()] = true
		}
	}

	children := make([]*node, 0, len(n.children))
	for _, child := range n.children {
		switch child.grammar {
		case css.DeclarationGrammar:
			for _, variant := range r.declarationVariants(child, scope) {
				key := variant.name
				if variant.name == child.name {
					key += ":" + variant.valueString()
				}
				if !present[key] {
					present[key] = true
					children = append(children, variant)
				}
			}
		case css.BeginAtRuleGrammar:
			if child.name == keyframesRule && r.enabled(domain.VendorWebkit, scope) {
				vendored := child.clone()
				vendored.name = webkitKeyframesRule
				key := vendored.name + vendored.valueString()
				if !present[key] {
					present[key] = true
					r.block(vendored, domain.VendorWebkit)
					children = append(children, vendored)
				}
			}
			r.block(child, scopeOf(child.name, scope))
		case css.BeginRulesetGrammar:
			r.block(child, scope)
		}
		children = append(children, child)
	}
	n.children = children
}

// scopeOf returns the vendor an at-rule such as @-webkit-keyframes is
// specific to, or the enclosing scope.
func scopeOf(atRule, scope string) string {
	rest, ok := strings.CutPrefix(atRule, "@-")
	if !ok {
		return scope
	}
	vendor, _, ok := strings.Cut(rest, "-")
	if !ok {
		return scope
	}
	return vendor
}

func (r prefixRun) declarationVariants(decl *node, scope string) []*node {
	var variants []*node

	value := strings.ToLower(decl.valueString())
	for _, pv := range valuePrefixes[decl.name+":"+value] {
		if !r.enabled(pv.vendor, scope) {
			continue
		}
		variants = append(variants, &node{
			grammar: css.DeclarationGrammar,
			name:    decl.name,
			values:  []css.Token{{TokenType: css.IdentToken, Data: []byte(pv.name)}},
		})
	}

	for _, pn := range propertyPrefixes[decl.name] {
		if !r.enabled(pn.vendor, scope) {
			continue
		}
		values := decl.cloneValues()
		if propertyListValues[decl.name] {
			values = prefixPropertyIdents(values, pn.vendor)
		}
		variants = append(variants, &node{
			grammar: css.DeclarationGrammar,
			name:    pn.name,
			values:  values,
		})
	}
	return variants
}

// prefixPropertyIdents rewrites property names inside a transition value,
// e.g. "transform .2s" becomes "-webkit-transform .2s".
func prefixPropertyIdents(values []css.Token, vendor string) []css.Token {
	for i, tok := range values {
		if tok.TokenType != css.IdentToken {
			continue
		}
		for _, pn := range propertyPrefixes[strings.ToLower(string(tok.Data))] {
			if pn.vendor == vendor {
				values[i].Data = []byte(pn.name)
				break
			}
		}
	}
	return values
}

// node is one grammar element of a parsed stylesheet. Blocks (rulesets and
// at-rules with a body) hold their contents as children.
type node struct {
	grammar  css.GrammarType
	name     string
	values   []css.Token
	children []*node
}

func parseSheet(src []byte) (*node, error) {
	root := &node{}
	stack := []*node{root}

	p := css.NewParser(parse.NewInputBytes(src), false)
	for {
		gt, _, data := p.Next()
		top := stack[len(stack)-1]

		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return root, nil
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			n := &node{grammar: gt, name: string(data), values: cloneTokens(p.Values())}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			top.children = append(top.children, &node{grammar: gt, name: string(data), values: cloneTokens(p.Values())})
		}
	}
}

func cloneTokens(tokens []css.Token) []css.Token {
	out := make([]css.Token, len(tokens))
	for i, tok := range tokens {
		out[i] = css.Token{TokenType: tok.TokenType, Data: bytes.Clone(tok.Data)}
	}
	return out
}

func (n *node) cloneValues() []css.Token {
	return cloneTokens(n.values)
}

func (n *node) clone() *node {
	c := &node{grammar: n.grammar, name: n.name, values: n.cloneValues()}
	for _, child := range n.children {
		c.children = append(c.children, child.clone())
	}
	return c
}

func (n *node) valueString() string {
	var b strings.Builder
	for _, tok := range n.values {
		b.Write(tok.Data)
	}
	return b.String()
}

func (n *node) writeChildren(out *bytes.Buffer) {
	for _, child := range n.children {
		child.write(out)
	}
}

func (n *node) write(out *bytes.Buffer) {
	switch n.grammar {
	case css.DeclarationGrammar, css.CustomPropertyGrammar:
		out.WriteString(n.name)
		out.WriteByte(':')
		out.WriteString(n.valueString())
		out.WriteByte(';')
	case css.AtRuleGrammar:
		out.WriteString(n.name)
		out.WriteString(n.valueString())
		out.WriteByte(';')
	case css.QualifiedRuleGrammar:
		out.WriteString(n.valueString())
		out.WriteByte(',')
	case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
		out.WriteString(n.name)
		out.WriteString(n.valueString())
		out.WriteByte('{')
		n.writeChildren(out)
		out.WriteByte('}')
	default:
		out.WriteString(n.name)
	}
}
