package floodsim

// traffic.go holds the generator that synthesizes the packet population
// presented to the mitigation pipeline in one time step

import (
	"github.com/iti/rngstream"
)

// A TrafficGenerator builds, for each time step, the legitimate and attack
// packet populations directed at the flood target.  It reads node roles and
// capacities from the registry but never mutates node state.
type TrafficGenerator struct {
	registry *NodeRegistry

	// ids of the nodes legitimate traffic may originate from
	legitimateIDs []int

	// the random number stream used to select legitimate sources
	Rngstrm *rngstream.RngStream
}

// CreateTrafficGenerator is a constructor.  The name seeds the generator's
// random number stream, so a run is reproducible given the stream's
// initial package seed
func CreateTrafficGenerator(registry *NodeRegistry, name string) *TrafficGenerator {
	tg := new(TrafficGenerator)
	tg.registry = registry
	tg.legitimateIDs = registry.LegitimateIDs()
	tg.Rngstrm = rngstream.New(name)
	return tg
}

// Generate synthesizes the packet population for the time step given as
// timestep.  Legitimate packets come first, each from a source selected
// uniformly at random among the non-attacker nodes.  Then every attacker
// contributes floor(attackIntensity x capacity) flagged packets, attackers
// visited in increasing id order.  All packets are addressed to targetID.
func (tg *TrafficGenerator) Generate(targetID int, attackIntensity float64, legitimateCount, timestep int) []Packet {
	packets := make([]Packet, 0)

	for i := 0; i < legitimateCount; i++ {
		idx := tg.Rngstrm.RandInt(0, len(tg.legitimateIDs)-1)
		srcID := tg.legitimateIDs[idx]
		packets = append(packets,
			Packet{SrcID: srcID, DstID: targetID, Legitimate: true, Timestep: timestep, Signature: LegitimateSignature})
	}

	for _, node := range tg.registry.Nodes {
		if !node.Attacker {
			continue
		}
		attackPackets := int(attackIntensity * float64(node.Capacity))
		sig := AttackSignature(node.NodeID)
		for j := 0; j < attackPackets; j++ {
			packets = append(packets,
				Packet{SrcID: node.NodeID, DstID: targetID, Legitimate: false, Timestep: timestep, Signature: sig})
		}
	}

	return packets
}
