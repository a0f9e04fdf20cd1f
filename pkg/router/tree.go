package router

import "sort"

// Node is one segment of the route tree. Each node maps child segments to
// child nodes and holds the routes terminating at its path. The tree is an
// index over the compiled route list, built once per compile pass and
// discarded with it; match precedence lives in the flat list, not here.
type Node struct {
	// Segment is the path segment this node represents ("" at the root).
	Segment string

	// Routes are the routes whose pattern ends at this node.
	Routes []Route

	// Children maps segment to child node.
	Children map[string]*Node
}

// buildTree indexes routes by their pattern segments.
func buildTree(routes []Route) *Node {
	root := &Node{Children: make(map[string]*Node)}
	for _, r := range routes {
		cur := root
		for _, seg := range r.Segments {
			child, ok := cur.Children[seg]
			if !ok {
				child = &Node{Segment: seg, Children: make(map[string]*Node)}
				cur.Children[seg] = child
			}
			cur = child
		}
		cur.Routes = append(cur.Routes, r)
	}
	return root
}

// Child returns the child node for a segment, or nil.
func (n *Node) Child(segment string) *Node {
	return n.Children[segment]
}

// Walk visits the tree depth-first. Children are visited in sorted segment
// order so traversal is deterministic. The path passed to fn is the joined
// URL path of the node ("/" for the root).
func (n *Node) Walk(fn func(path string, node *Node)) {
	n.walk("", fn)
}

func (n *Node) walk(prefix string, fn func(string, *Node)) {
	path := prefix
	if n.Segment != "" {
		path = prefix + "/" + n.Segment
	}
	display := path
	if display == "" {
		display = "/"
	}
	fn(display, n)

	segments := make([]string, 0, len(n.Children))
	for seg := range n.Children {
		segments = append(segments, seg)
	}
	sort.Strings(segments)
	for _, seg := range segments {
		n.Children[seg].walk(path, fn)
	}
}
