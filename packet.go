package floodsim

// packet.go holds the packet representation and the signature labels
// attached to packets at generation time

import (
	"strconv"
	"strings"
)

// LegitimateSignature is the fixed label carried by every legitimate packet
const LegitimateSignature string = "legitimate"

// AttackMarker is the substring whose presence in a signature identifies
// the packet population the signature inspection stage may drop
const AttackMarker string = "attack"

// A Packet is an immutable value created by the traffic generator and
// consumed exactly once by the step processor.  The legitimacy flag is
// derived from the source's role at generation time and carried in the
// packet so downstream stages never re-resolve the source node.
type Packet struct {
	// id of the originating node
	SrcID int

	// id of the destination node
	DstID int

	// true when the source held the legitimate role at generation time
	Legitimate bool

	// time step in which the packet was generated
	Timestep int

	// opaque label used by inspection-based mitigation as a coarse fingerprint
	Signature string
}

// AttackSignature builds the per-source label attached to attack packets.
// The same attacker always produces the same signature within a run
func AttackSignature(srcID int) string {
	return AttackMarker + "_" + strconv.Itoa(srcID)
}

// FlaggedSignature reports whether the signature carries the attack marker
func FlaggedSignature(sig string) bool {
	return strings.Contains(sig, AttackMarker)
}
