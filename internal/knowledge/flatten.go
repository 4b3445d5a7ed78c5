package knowledge

import "strings"

const (
	DefaultMaxDepth = 64

	// BreadcrumbSeparator joins field names in fragment text.
	BreadcrumbSeparator = " > "
)

// Fragment is one leaf of the knowledge document with its field path.
type Fragment struct {
	Path []string
	Text string
}

func (f Fragment) Breadcrumb() string {
	return strings.Join(f.Path, BreadcrumbSeparator)
}

type FlattenOptions struct {
	// MaxDepth bounds container nesting; deeper subtrees are skipped.
	MaxDepth int
}

// Flatten walks root in document order. Every non-blank scalar becomes one
// Fragment whose text is prefixed with its breadcrumb. Sequences add no path
// segment.
func Flatten(root *Node, opts FlattenOptions) []Fragment {
	out, _ := flatten(root, opts)
	return out
}

// flatten also reports how many subtrees were cut by MaxDepth.
func flatten(root *Node, opts FlattenOptions) ([]Fragment, int) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	f := flattener{maxDepth: maxDepth}
	f.walk(root, nil, 0)
	return f.out, f.skipped
}

type flattener struct {
	maxDepth int
	out      []Fragment
	skipped  int
}

func (f *flattener) walk(n *Node, path []string, depth int) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindScalar:
		text := strings.TrimSpace(n.Value)
		if text == "" {
			return
		}
		p := append([]string(nil), path...)
		if len(p) > 0 {
			text = strings.Join(p, BreadcrumbSeparator) + ": " + text
		}
		f.out = append(f.out, Fragment{Path: p, Text: text})
	case KindSequence:
		if depth >= f.maxDepth {
			f.skipped++
			return
		}
		for _, item := range n.Items {
			f.walk(item, path, depth+1)
		}
	case KindMapping:
		if depth >= f.maxDepth {
			f.skipped++
			return
		}
		for _, field := range n.Fields {
			// full slice expression keeps sibling appends from sharing a backing array
			f.walk(field.Value, append(path[:len(path):len(path)], field.Key), depth+1)
		}
	}
}

// LeafCount counts non-blank scalars in n, ignoring depth limits.
func LeafCount(n *Node) int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindScalar:
		if strings.TrimSpace(n.Value) != "" {
			return 1
		}
	case KindSequence:
		total := 0
		for _, item := range n.Items {
			total += LeafCount(item)
		}
		return total
	case KindMapping:
		total := 0
		for _, field := range n.Fields {
			total += LeafCount(field.Value)
		}
		return total
	}
	return 0
}
