// Package mst builds minimum spanning trees over weighted undirected graphs
// with Kruskal's algorithm.
package mst

import (
	"sort"

	"github.com/theodesp/unionfind"
)

// Edge is one directed half of an undirected weighted edge.
type Edge struct {
	To     int
	Weight int
}

// Graph is an adjacency mapping from node id to its edges. Undirected edges
// appear in both endpoints' lists.
type Graph map[int][]Edge

// Nodes returns the node ids in ascending order.
func (g Graph) Nodes() []int {
	nodes := make([]int, 0, len(g))
	for v := range g {
		nodes = append(nodes, v)
	}
	sort.Ints(nodes)
	return nodes
}

type edge struct {
	v1, v2 int
	weight int
}

// Kruskal returns the minimum spanning tree (or forest, if the input is
// disconnected) of the graph. Edges are deduplicated by keeping v1 < v2 and
// stable-sorted by weight, so weight ties resolve by insertion order and the
// result is deterministic.
func Kruskal(graph Graph) Graph {
	nodes := graph.Nodes()
	index := make(map[int]int, len(nodes))
	for i, v := range nodes {
		index[v] = i
	}

	var edges []edge
	for _, v1 := range nodes {
		for _, e := range graph[v1] {
			if v1 < e.To {
				edges = append(edges, edge{v1: v1, v2: e.To, weight: e.Weight})
			}
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].weight < edges[j].weight
	})

	tree := unionfind.New(len(nodes))
	newGraph := Graph{}
	counter := 0
	for _, e := range edges {
		i1, i2 := index[e.v1], index[e.v2]
		if tree.Root(i1) != tree.Root(i2) {
			tree.Union(i1, i2)
			newGraph[e.v1] = append(newGraph[e.v1], Edge{To: e.v2, Weight: e.weight})
			newGraph[e.v2] = append(newGraph[e.v2], Edge{To: e.v1, Weight: e.weight})
			counter++
			if counter == len(nodes)-1 {
				break
			}
		}
	}

	return newGraph
}
