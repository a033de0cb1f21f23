package floodsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteTopologyReachability(t *testing.T) {
	nr, err := CreateNodeRegistry(8, 4, 2)
	require.NoError(t, err)

	topo := CreateCompleteTopology(nr)

	for _, a := range nr.Nodes {
		for _, b := range nr.Nodes {
			assert.True(t, topo.Reachable(a.NodeID, b.NodeID), "%d -> %d", a.NodeID, b.NodeID)
			if a.NodeID == b.NodeID {
				assert.Equal(t, 0, topo.HopCount(a.NodeID, b.NodeID))
			} else {
				assert.Equal(t, 1, topo.HopCount(a.NodeID, b.NodeID))
			}
		}
	}
}

func TestSparseTopology(t *testing.T) {
	// a line 0-1-2 plus an isolated node 3
	edges := map[int][]int{
		0: {1},
		1: {0, 2},
		2: {1},
		3: {},
	}
	topo := CreateTopology(edges)

	assert.True(t, topo.Reachable(0, 2))
	assert.Equal(t, 2, topo.HopCount(0, 2))
	assert.False(t, topo.Reachable(0, 3))
	assert.Equal(t, -1, topo.HopCount(0, 3))
}
