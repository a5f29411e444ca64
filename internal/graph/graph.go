// Package graph projects the linear ownership trace into a node/edge model
// for downstream rendering. The projection is side-effect-free; actual
// drawing belongs to an external renderer consuming the DOT output.
package graph

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"ares-ubo/internal/resolve"
)

// NodeKind is the shape class of a node.
type NodeKind string

const (
	NodeCompany NodeKind = "company"
	NodePerson  NodeKind = "person"
	NodeLabel   NodeKind = "label"
)

// Node is one vertex of the ownership graph. Level is the tree tier used for
// same-rank layout; label nodes carry Level -1 and are suppressed by DOT().
type Node struct {
	ID    string
	Kind  NodeKind
	Label string
	Level int
}

// Edge connects a company to one of its owners; Label carries the parsed
// share text.
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is the projected node/edge model.
type Graph struct {
	Title   string
	RootICO string
	Nodes   []Node
	Edges   []Edge

	nodeIndex map[string]int
	edgeIndex map[[2]string]int
}

// Build walks the trace once, tracking the nearest enclosing company header,
// and derives an edge from that company to every owner line beneath it.
// Nested company owners repeat the process at the next level.
func Build(lines []resolve.Line, rootICO, title string) *Graph {
	g := &Graph{
		Title:     title,
		RootICO:   normalize8(rootICO),
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]int),
	}

	// depth -> (ico, level) of the company header seen at that depth
	type companyAt struct {
		ico   string
		level int
	}
	companyStack := make(map[int]companyAt)

	findParent := func(depth int) (companyAt, bool) {
		best := -1
		for d := range companyStack {
			if d < depth && d > best {
				best = d
			}
		}
		if best < 0 {
			return companyAt{}, false
		}
		return companyStack[best], true
	}

	for idx, ln := range lines {
		t := strings.TrimSpace(ln.Text)
		if t == "" || resolve.IsNoticeLine(t) {
			continue
		}

		if resolve.IsLabelLine(t) {
			g.addNode(Node{
				ID:    nodeID("L", fmt.Sprintf("%d:%s", ln.Depth, t)),
				Kind:  NodeLabel,
				Label: strings.TrimSuffix(t, ":"),
				Level: -1,
			})
			continue
		}

		// company-owner lines first, so the header regex cannot steal them
		if name, shareText, ownerICO, ok := parseCompanyOwner(t); ok {
			parent, found := findParent(ln.Depth)
			if !found {
				continue
			}
			ownerID := g.addNode(Node{
				ID:    "ICO_" + ownerICO,
				Kind:  NodeCompany,
				Label: fmt.Sprintf("%s\n(IČO %s)", name, ownerICO),
				Level: parent.level + 1,
			})
			g.recordEdge("ICO_"+parent.ico, ownerID, shareText)
			continue
		}

		if name, ico, ok := resolve.ParseCompanyHeader(t); ok {
			level := companyLevel(ln.Depth)
			id := g.addNode(Node{
				ID:    "ICO_" + ico,
				Kind:  NodeCompany,
				Label: fmt.Sprintf("%s\n(IČO %s)", name, ico),
				Level: level,
			})
			if parent, found := findParent(ln.Depth); found {
				g.recordEdge("ICO_"+parent.ico, id, "")
			}
			companyStack[ln.Depth] = companyAt{ico: ico, level: level}
			for d := range companyStack {
				if d > ln.Depth {
					delete(companyStack, d)
				}
			}
			continue
		}

		// person owner
		parent, found := findParent(ln.Depth)
		if !found {
			continue
		}
		personID := g.addNode(Node{
			ID:    nodeID("P", fmt.Sprintf("%s:%d:%s", parent.ico, idx, t)),
			Kind:  NodePerson,
			Label: t,
			Level: parent.level + 1,
		})
		_, shareText, hasShare := resolve.SplitNameShare(t)
		if hasShare {
			g.recordEdge("ICO_"+parent.ico, personID, shareText)
		} else {
			g.recordEdge("ICO_"+parent.ico, personID, "")
		}
	}

	return g
}

// DOT renders the model as Graphviz source. Label-group nodes are
// suppressed; companies draw as boxes, persons as ellipses; tiers share a
// rank.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph ownership {\n")
	fmt.Fprintf(&b, "  label=%q;\n", g.Title)
	b.WriteString("  labelloc=\"t\";\n")
	b.WriteString("  rankdir=\"TB\";\n")
	b.WriteString("  edge [dir=back, color=gray40];\n")

	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeCompany:
			fmt.Fprintf(&b, "  %s [shape=box, style=filled, fillcolor=%q, label=%q];\n",
				n.ID, "#2EA39C", n.Label)
		case NodePerson:
			fmt.Fprintf(&b, "  %s [shape=ellipse, style=filled, fillcolor=black, fontcolor=white, label=%q];\n",
				n.ID, n.Label)
		case NodeLabel:
			// suppressed when rendered
		}
	}

	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s -> %s [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&b, "  %s -> %s;\n", e.From, e.To)
		}
	}

	for _, level := range g.levels() {
		ids := g.levelNodes(level)
		if len(ids) < 2 {
			continue
		}
		fmt.Fprintf(&b, "  { rank=same; %s }\n", strings.Join(ids, "; "))
	}

	b.WriteString("}\n")
	return b.String()
}

func (g *Graph) addNode(n Node) string {
	if i, ok := g.nodeIndex[n.ID]; ok {
		// a revisited node ends up in the deepest tier where it appeared
		if n.Level > g.Nodes[i].Level {
			g.Nodes[i].Level = n.Level
		}
		return n.ID
	}
	g.nodeIndex[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return n.ID
}

// recordEdge upserts the edge; a label arriving later fills the blank left
// by a header-derived edge. Self-loops are dropped.
func (g *Graph) recordEdge(from, to, label string) {
	if from == "" || to == "" || from == to {
		return
	}
	key := [2]string{from, to}
	if i, ok := g.edgeIndex[key]; ok {
		if label != "" {
			g.Edges[i].Label = label
		}
		return
	}
	g.edgeIndex[key] = len(g.Edges)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Label: label})
}

func (g *Graph) levels() []int {
	seen := make(map[int]bool)
	var out []int
	for _, n := range g.Nodes {
		if n.Level >= 0 && !seen[n.Level] {
			seen[n.Level] = true
			out = append(out, n.Level)
		}
	}
	sort.Ints(out)
	return out
}

func (g *Graph) levelNodes(level int) []string {
	var out []string
	for _, n := range g.Nodes {
		if n.Level == level {
			out = append(out, n.ID)
		}
	}
	return out
}

// parseCompanyOwner splits "Name — share… (IČO 12345678)" owner lines; a
// company header has no dash and does not match.
func parseCompanyOwner(t string) (name, shareText, ico string, ok bool) {
	ico, found := resolve.CompanyICOInLine(t)
	if !found {
		return "", "", "", false
	}
	left := t
	if i := strings.Index(t, "(IČO"); i >= 0 {
		left = strings.TrimSpace(t[:i])
	}
	name, shareText, hasShare := resolve.SplitNameShare(left)
	if !hasShare {
		return "", "", "", false
	}
	return name, shareText, ico, true
}

func companyLevel(depth int) int {
	if depth <= 0 {
		return 0
	}
	return depth / 3
}

func nodeID(prefix, key string) string {
	h := sha1.Sum([]byte(key))
	return prefix + "_" + hex.EncodeToString(h[:])[:12]
}

func normalize8(ico string) string {
	digits := strings.TrimSpace(ico)
	if len(digits) == 7 {
		digits = "0" + digits
	}
	return digits
}
