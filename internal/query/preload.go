package query

import "strings"

// PreloadNode is one eager-load instruction. Children are loaded inside the
// relation's own query.
type PreloadNode struct {
	Relation string
	// Fields narrows the related rows. Empty means every column.
	Fields   []string
	Children []PreloadNode
}

// PreloadTree builds the instruction tree for one relation path.
//
// A single segment yields a leaf, narrowed to fields when they are given.
// A dotted path nests every segment inside the previous one and is never
// narrowed.
func PreloadTree(path string, fields []string) PreloadNode {
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		return PreloadNode{Relation: segments[0], Fields: fields}
	}
	return nestPreload(segments)
}

// nestPreload consumes the path one segment at a time. len(segments) >= 2.
func nestPreload(segments []string) PreloadNode {
	if len(segments) == 2 {
		return PreloadNode{
			Relation: segments[0],
			Children: []PreloadNode{{Relation: segments[1]}},
		}
	}
	return PreloadNode{
		Relation: segments[0],
		Children: []PreloadNode{nestPreload(segments[1:])},
	}
}

// BuildPreloads turns a with parameter into independent preload trees, one
// per top-level entry. identifier is prepended to any projection.
func BuildPreloads(with Param, identifier string) []PreloadNode {
	if !with.IsMap() {
		return []PreloadNode{PreloadTree(with.Value, nil)}
	}

	nodes := make([]PreloadNode, 0, len(with.Fields))
	for _, path := range with.Keys() {
		var fields []string
		if projection := splitList(with.Fields[path]); len(projection) > 0 {
			fields = withIdentifier(identifier, projection)
		}
		nodes = append(nodes, PreloadTree(path, fields))
	}
	return nodes
}

// ApplyPreloads replays preload trees onto q.
func ApplyPreloads(q Clauses, nodes []PreloadNode) {
	for _, node := range nodes {
		q.Preload(node.Relation, preloadScope(node))
	}
}

func preloadScope(node PreloadNode) func(Clauses) {
	if len(node.Fields) == 0 && len(node.Children) == 0 {
		return nil
	}
	return func(related Clauses) {
		if len(node.Fields) > 0 {
			related.Select(node.Fields)
		}
		ApplyPreloads(related, node.Children)
	}
}

// AddWithClauses eager-loads every relation named by with.
func AddWithClauses(q Clauses, with Param, identifier string) {
	ApplyPreloads(q, BuildPreloads(with, identifier))
}

// withIdentifier prepends identifier unless the caller already listed it.
func withIdentifier(identifier string, fields []string) []string {
	out := make([]string, 0, len(fields)+1)
	out = append(out, identifier)
	for _, f := range fields {
		if f != identifier {
			out = append(out, f)
		}
	}
	return out
}
