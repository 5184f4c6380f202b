package graph

// Merge combines two co-occurrence graphs. Nodes are unified by path and the
// weights of edges present in both graphs are added, so Merge is associative
// and commutative up to node enumeration order. The empty graph (or nil) is
// the identity. Both graphs must hold counts; merging distance graphs is
// not meaningful.
//
// Weights are summed unchecked; a pair whose total overflows int64 turns
// negative and is rejected by Validate, DistanceGraph and the centrality
// functions.
//
// The smaller graph is folded into the larger one, which is mutated and
// returned. Callers must not use either argument after the call.
func Merge(a, b *Graph) *Graph {
	if a == nil || a.Len() == 0 {
		if b == nil {
			return New()
		}
		return b
	}
	if b == nil || b.Len() == 0 {
		return a
	}

	dst, src := a, b
	if src.Len() > dst.Len() {
		dst, src = src, dst
	}

	// translate[i] is the dst ID of src node i.
	translate := make([]NodeID, src.Len())
	for i, n := range src.nodes {
		translate[i] = dst.AddNode(n.Path, n.Kind)
	}

	for u, m := range src.adj {
		for v, w := range m {
			if NodeID(u) < v {
				dst.addWeight(translate[u], translate[v], w)
			}
		}
	}
	return dst
}
