package thing

// Recompute derives one property's bounds from the current state of the
// device. It reads its operands by name and must not change any value, so
// running it never triggers further edges.
type Recompute func(d *Device)

// Edge is a directed dependency: when From changes, Fn recomputes To.
type Edge struct {
	From string
	To   string
	Fn   Recompute
}

// Graph is a small adjacency structure of update edges between properties.
type Graph struct {
	edges map[string][]Edge
	order []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]Edge)}
}

// Connect adds an edge from -> to.
func (g *Graph) Connect(from, to string, fn Recompute) {
	if _, ok := g.edges[from]; !ok {
		g.order = append(g.order, from)
	}
	g.edges[from] = append(g.edges[from], Edge{From: from, To: to, Fn: fn})
}

// Edges returns all edges, grouped by source in registration order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.order {
		out = append(out, g.edges[from]...)
	}
	return out
}

// Dependents returns the names of the properties recomputed when from changes.
func (g *Graph) Dependents(from string) []string {
	var out []string
	for _, e := range g.edges[from] {
		out = append(out, e.To)
	}
	return out
}

func (g *Graph) fire(d *Device, from string) {
	for _, e := range g.edges[from] {
		e.Fn(d)
	}
}
