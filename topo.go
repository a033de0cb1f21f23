package floodsim

// topo.go holds the network topology a simulation runs over.  The general
// approach we use is to represent the reachability structure in the data
// structures used by a graph package that has built-in path discovery
// algorithms.  Weighting each edge by 1, a shortest path minimizes the
// number of hops.  The simulator itself only needs the set of destination
// ids reachable from each source, so any topology with the same
// reachability could be substituted; the default is the complete graph.

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// A Topology answers reachability and hop-count queries over the node
// population of one run.  Each run owns its own topology; shortest path
// trees are cached as they are computed.
type Topology struct {
	// the graph/path representation of the network graph
	connGraph graph.Graph

	// gNodes[i] refers to the network node with id i
	gNodes map[int]simple.Node

	// cachedSP saves the result of computing shortest-path trees.
	// The key is the node id of the path source
	cachedSP map[int]path.Shortest
}

// CreateTopology builds a Topology from an adjacency structure mapping
// each node id to the list of node ids it connects to directly
func CreateTopology(edges map[int][]int) *Topology {
	topo := new(Topology)
	topo.gNodes = make(map[int]simple.Node)
	topo.cachedSP = make(map[int]path.Shortest)

	connGraph := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for nodeID := range edges {
		_, present := topo.gNodes[nodeID]
		if present {
			continue
		}
		topo.gNodes[nodeID] = simple.Node(nodeID)
	}

	// transform the expression of edges in the input list to edges in the
	// graph module representation
	for nodeID, edgeList := range edges {
		for _, nbrID := range edgeList {
			if nodeID == nbrID {
				continue
			}
			weightedEdge := simple.WeightedEdge{F: topo.gNodes[nodeID], T: topo.gNodes[nbrID], W: 1.0}
			connGraph.SetWeightedEdge(weightedEdge)
		}
	}
	topo.connGraph = connGraph

	return topo
}

// CreateCompleteTopology builds the default fully connected topology over
// the registry's node population
func CreateCompleteTopology(nr *NodeRegistry) *Topology {
	edges := make(map[int][]int)
	for _, node := range nr.Nodes {
		peers := make([]int, 0, len(nr.Nodes)-1)
		for _, peer := range nr.Nodes {
			if peer.NodeID != node.NodeID {
				peers = append(peers, peer.NodeID)
			}
		}
		edges[node.NodeID] = peers
	}
	return CreateTopology(edges)
}

// getSPTree returns the shortest path tree rooted in input argument 'from'.
// If the tree is found in the cache it is returned, if not it is computed,
// saved, and returned.
func (topo *Topology) getSPTree(from int) path.Shortest {
	spTree, present := topo.cachedSP[from]
	if present {
		return spTree
	}

	// let graph/path.DijkstraFrom compute the tree. The first argument
	// is the root of the tree, the second is the graph
	spTree = path.DijkstraFrom(topo.gNodes[from], topo.connGraph)
	topo.cachedSP[from] = spTree

	return spTree
}

// Reachable reports whether a packet originating at srcID can be
// delivered to dstID
func (topo *Topology) Reachable(srcID, dstID int) bool {
	if srcID == dstID {
		return true
	}
	_, present := topo.gNodes[srcID]
	if !present {
		return false
	}
	_, present = topo.gNodes[dstID]
	if !present {
		return false
	}

	spTree := topo.getSPTree(srcID)
	_, weight := spTree.To(int64(dstID))
	return !math.IsInf(weight, 1)
}

// HopCount returns the number of hops on a shortest path from srcID to
// dstID, and -1 when no path exists
func (topo *Topology) HopCount(srcID, dstID int) int {
	if srcID == dstID {
		return 0
	}
	if !topo.Reachable(srcID, dstID) {
		return -1
	}
	spTree := topo.getSPTree(srcID)
	_, weight := spTree.To(int64(dstID))
	return int(weight)
}
