package demand

import "math"

type edge struct {
	to   int
	cap  int // residual
	orig int
}

// Network is a Dinic max-flow graph. Storage is kept across Reset calls, so
// a long-lived Network stops allocating once it has seen its largest graph.
//
// Edges are stored in pairs: the forward edge returned by AddEdge has an
// even id and its residual twin is id^1.
type Network struct {
	edges []edge
	adj   [][]int
	level []int
	iter  []int
	queue []int
}

// Reset clears the graph and sizes it for n nodes.
func (g *Network) Reset(n int) {
	g.edges = g.edges[:0]
	if cap(g.adj) < n {
		g.adj = append(g.adj[:cap(g.adj)], make([][]int, n-cap(g.adj))...)
	}
	g.adj = g.adj[:n]
	for i := range g.adj {
		g.adj[i] = g.adj[i][:0]
	}
	g.level = resize(g.level, n)
	g.iter = resize(g.iter, n)
}

// Nodes returns the node count set by the last Reset.
func (g *Network) Nodes() int { return len(g.adj) }

// AddEdge adds a directed edge and returns its id.
func (g *Network) AddEdge(from, to, capacity int) int {
	id := len(g.edges)
	g.edges = append(g.edges, edge{to: to, cap: capacity, orig: capacity}, edge{to: from})
	g.adj[from] = append(g.adj[from], id)
	g.adj[to] = append(g.adj[to], id+1)
	return id
}

// Flow is the flow currently routed through edge id.
func (g *Network) Flow(id int) int { return g.edges[id].orig - g.edges[id].cap }

// Cap is the capacity edge id was added with.
func (g *Network) Cap(id int) int { return g.edges[id].orig }

// MaxFlow pushes as much flow from s to t as the capacities allow.
func (g *Network) MaxFlow(s, t int) int {
	flow := 0
	for g.bfs(s, t) {
		clear(g.iter)
		for {
			f := g.dfs(s, t, math.MaxInt)
			if f == 0 {
				break
			}
			flow += f
		}
	}
	return flow
}

func (g *Network) bfs(s, t int) bool {
	for i := range g.level {
		g.level[i] = -1
	}
	g.level[s] = 0
	q := append(g.queue[:0], s)
	for head := 0; head < len(q); head++ {
		v := q[head]
		for _, id := range g.adj[v] {
			e := g.edges[id]
			if e.cap <= 0 || g.level[e.to] >= 0 {
				continue
			}
			g.level[e.to] = g.level[v] + 1
			q = append(q, e.to)
		}
	}
	g.queue = q
	return g.level[t] >= 0
}

func (g *Network) dfs(v, t, f int) int {
	if v == t {
		return f
	}
	for ; g.iter[v] < len(g.adj[v]); g.iter[v]++ {
		id := g.adj[v][g.iter[v]]
		e := &g.edges[id]
		if e.cap <= 0 || g.level[e.to] != g.level[v]+1 {
			continue
		}
		if pushed := g.dfs(e.to, t, min(f, e.cap)); pushed > 0 {
			e.cap -= pushed
			g.edges[id^1].cap += pushed
			return pushed
		}
	}
	return 0
}

func resize(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}
