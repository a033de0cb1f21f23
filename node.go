package floodsim

// node.go holds the representation of the simulated network endpoints
// and the registry that owns them for the lifetime of one simulation run

import (
	"fmt"
)

// capacity (in packets per time step) given to the flood target, and
// to every other node
const targetCapacity int = 1000
const defaultCapacity int = 500

// A Node describes one simulated network endpoint.  Its role (attacker
// or legitimate source) is fixed when the node is created and never changes.
// CurrentLoad counts packets admitted to the node in the current time step;
// the node records load but does not enforce its capacity, admission
// control belongs to the mitigation pipeline.
type Node struct {
	// unique identity, stable for the simulation lifetime
	NodeID int `json:"nodeid" yaml:"nodeid"`

	// maximum number of packets the node can process in one time step
	Capacity int `json:"capacity" yaml:"capacity"`

	// number of packets admitted to the node so far in the current step
	CurrentLoad int `json:"currentload" yaml:"currentload"`

	// true when the node's entire outbound traffic is classified as malicious
	Attacker bool `json:"attacker" yaml:"attacker"`
}

// AtCapacity reports whether the node has already absorbed as many
// packets this step as its capacity allows
func (node *Node) AtCapacity() bool {
	return node.CurrentLoad >= node.Capacity
}

// AbsorbPacket records the admission of one packet to the node.
// Called only after the mitigation pipeline has passed the packet
func (node *Node) AbsorbPacket() {
	node.CurrentLoad += 1
}

// ResetLoad returns the node's per-step load to zero
func (node *Node) ResetLoad() {
	node.CurrentLoad = 0
}

// A NodeRegistry holds every node of one simulation run, indexed by
// node id.  Each run owns its own registry, nothing is shared across runs
type NodeRegistry struct {
	// nodes in id order, id i at index i
	Nodes []*Node

	// id of the flood target
	TargetID int
}

// CreateNodeRegistry is a constructor.  It builds count nodes with ids
// 0 through count-1, marks the first attackerCount ids as attackers, and
// gives the target a higher capacity than the rest.  Violated preconditions
// (these are caller configuration obligations) are reported as an error
// before any node is created.
func CreateNodeRegistry(count, targetID, attackerCount int) (*NodeRegistry, error) {
	errs := []error{}
	if count < 1 {
		errs = append(errs, fmt.Errorf("node count %d is not positive", count))
	}
	if attackerCount < 0 || attackerCount >= count {
		errs = append(errs, fmt.Errorf("attacker count %d not within [0,%d)", attackerCount, count))
	}
	if targetID < 0 || targetID >= count {
		errs = append(errs, fmt.Errorf("target id %d is not a valid node id", targetID))
	}

	// an id landing in both the attacker range and the target position would
	// silently make the victim an attacker.  Treat that as a configuration fault
	if 0 <= targetID && targetID < attackerCount {
		errs = append(errs, fmt.Errorf("target id %d lies inside the attacker id range [0,%d)", targetID, attackerCount))
	}

	err := ReportErrs(errs)
	if err != nil {
		return nil, err
	}

	nr := new(NodeRegistry)
	nr.TargetID = targetID
	nr.Nodes = make([]*Node, 0, count)

	for id := 0; id < count; id++ {
		capacity := defaultCapacity
		if id == targetID {
			capacity = targetCapacity
		}
		nr.Nodes = append(nr.Nodes, &Node{NodeID: id, Capacity: capacity, Attacker: id < attackerCount})
	}

	return nr, nil
}

// NodeByID returns the node with the given id, nil if the id is unknown
func (nr *NodeRegistry) NodeByID(id int) *Node {
	if id < 0 || id >= len(nr.Nodes) {
		return nil
	}
	return nr.Nodes[id]
}

// Target returns the flood target's node
func (nr *NodeRegistry) Target() *Node {
	return nr.Nodes[nr.TargetID]
}

// ResetLoads zeroes the per-step load of every node.  Called once at the
// start of every time step, before any packet is admitted
func (nr *NodeRegistry) ResetLoads() {
	for _, node := range nr.Nodes {
		node.ResetLoad()
	}
}

// AttackerIDs returns the ids of the attacker nodes, in increasing order
func (nr *NodeRegistry) AttackerIDs() []int {
	ids := make([]int, 0)
	for _, node := range nr.Nodes {
		if node.Attacker {
			ids = append(ids, node.NodeID)
		}
	}
	return ids
}

// LegitimateIDs returns the ids of the non-attacker nodes, in increasing order
func (nr *NodeRegistry) LegitimateIDs() []int {
	ids := make([]int, 0)
	for _, node := range nr.Nodes {
		if !node.Attacker {
			ids = append(ids, node.NodeID)
		}
	}
	return ids
}
