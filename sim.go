package floodsim

// sim.go holds the step processor and the scenario runner.  A Simulation
// binds together the node registry, topology, traffic generator, mitigation
// pipeline, and run-scoped counter state for one run, and advances that run
// one time step at a time.  Steps may be driven directly, or scheduled as
// events on an event manager when the run is embedded in a larger experiment.

import (
	"fmt"
	"strconv"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
)

// StepStats is the record emitted at the end of each time step: the
// processed/dropped tallies split by packet legitimacy, and a snapshot of
// the flood target's load against its capacity.  Created fresh each step,
// immutable once emitted.
type StepStats struct {
	Step int `json:"step" yaml:"step"`

	Processed       int `json:"processed" yaml:"processed"`
	ProcessedLegit  int `json:"processedlegit" yaml:"processedlegit"`
	ProcessedAttack int `json:"processedattack" yaml:"processedattack"`

	Dropped       int `json:"dropped" yaml:"dropped"`
	DroppedLegit  int `json:"droppedlegit" yaml:"droppedlegit"`
	DroppedAttack int `json:"droppedattack" yaml:"droppedattack"`

	// load and capacity of the configured target at end of step
	TargetLoad     int `json:"targetload" yaml:"targetload"`
	TargetCapacity int `json:"targetcapacity" yaml:"targetcapacity"`
}

// A Simulation is one run: a fixed number of steps under one fixed
// mitigation configuration.  It owns its registry, counter state, and RNG
// stream entirely, so independent runs may execute concurrently without
// sharing anything.
type Simulation struct {
	Cfg      *ScenarioCfg
	Registry *NodeRegistry
	Topo     *Topology

	gen      *TrafficGenerator
	pipeline *Pipeline
	state    *RunState

	// the current time step, advanced after each step's packets are resolved
	timestep int

	// the per-step records produced so far
	stats []StepStats

	// optional collector for the statistics stream
	sm *StatsManager
}

// CreateSimulation is a constructor.  It validates the scenario description,
// builds the run's registry, topology, generator, pipeline, and empty counter
// state, and seeds the run's random number streams from the configured master
// seed.  A configuration fault is reported here, before any packet exists.
// The sm argument may be nil when no statistics stream is wanted.
func CreateSimulation(cfg *ScenarioCfg, sm *StatsManager) (*Simulation, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	// seeding precedes stream creation so that identical configurations
	// draw identical streams
	rngstream.SetRngStreamMasterSeed(cfg.Seed)

	registry, err := CreateNodeRegistry(cfg.NodeCount, cfg.TargetNodeID, cfg.AttackerCount)
	if err != nil {
		return nil, err
	}

	topo := CreateCompleteTopology(registry)
	errs := []error{}
	for _, node := range registry.Nodes {
		if node.NodeID == registry.TargetID {
			continue
		}
		if !topo.Reachable(node.NodeID, registry.TargetID) {
			errs = append(errs, fmt.Errorf("scenario %s: node %d cannot reach target %d",
				cfg.Name, node.NodeID, registry.TargetID))
		}
	}
	err = ReportErrs(errs)
	if err != nil {
		return nil, err
	}

	sim := new(Simulation)
	sim.Cfg = cfg
	sim.Registry = registry
	sim.Topo = topo
	sim.gen = CreateTrafficGenerator(registry, cfg.Name)
	sim.pipeline = CreatePipeline(cfg.Mitigations, registry)
	sim.state = CreateRunState()
	sim.stats = make([]StepStats, 0, cfg.StepCount)
	sim.sm = sm

	return sim, nil
}

// Timestep returns the current time step of the run
func (sim *Simulation) Timestep() int {
	return sim.timestep
}

// Stats returns the per-step records the run has produced so far
func (sim *Simulation) Stats() []StepStats {
	return sim.stats
}

// ProcessStep drains one step's packet population through the mitigation
// pipeline.  Node loads are reset first; each packet then passes or drops,
// admitted packets increment their destination's load, and the tallies go
// into the step's record.  The step counter advances after every packet is
// resolved, so no packet of the next step is seen before this one finishes.
func (sim *Simulation) ProcessStep(packets []Packet) StepStats {
	sim.Registry.ResetLoads()

	ss := StepStats{Step: sim.timestep}

	for idx := range packets {
		pckt := &packets[idx]
		if sim.pipeline.Evaluate(pckt, sim.state, sim.timestep) {
			sim.Registry.NodeByID(pckt.DstID).AbsorbPacket()
			ss.Processed += 1
			if pckt.Legitimate {
				ss.ProcessedLegit += 1
			} else {
				ss.ProcessedAttack += 1
			}
		} else {
			ss.Dropped += 1
			if pckt.Legitimate {
				ss.DroppedLegit += 1
			} else {
				ss.DroppedAttack += 1
			}
		}
	}

	target := sim.Registry.Target()
	ss.TargetLoad = target.CurrentLoad
	ss.TargetCapacity = target.Capacity

	sim.stats = append(sim.stats, ss)
	if sim.sm != nil {
		sim.sm.AddStats(sim.Cfg.Name, ss)
	}

	sim.timestep += 1
	return ss
}

// Advance generates the current step's traffic and processes it
func (sim *Simulation) Advance() StepStats {
	packets := sim.gen.Generate(sim.Cfg.TargetNodeID, sim.Cfg.AttackIntensity,
		sim.Cfg.LegitimateTraffic, sim.timestep)
	return sim.ProcessStep(packets)
}

// Run executes the configured number of steps and returns their records
func (sim *Simulation) Run() []StepStats {
	for sim.timestep < sim.Cfg.StepCount {
		sim.Advance()
	}
	return sim.stats
}

// RunScenario builds a run from the scenario description and executes it
// synchronously to completion
func RunScenario(cfg *ScenarioCfg, sm *StatsManager) ([]StepStats, error) {
	sim, err := CreateSimulation(cfg, sm)
	if err != nil {
		return nil, err
	}
	return sim.Run(), nil
}

// StartScenario schedules the run's first step on the event manager; each
// step event schedules its successor one time unit later until the run's
// step count is reached.  The caller drives evtMgr.
func StartScenario(evtMgr *evtm.EventManager, sim *Simulation) {
	if sim.timestep >= sim.Cfg.StepCount {
		return
	}
	evtMgr.Schedule(sim, nil, advanceStep, vrtime.SecondsToTime(0.0))
}

// advanceStep is the event handler that resolves one time step
func advanceStep(evtMgr *evtm.EventManager, context any, data any) any {
	sim := context.(*Simulation)
	sim.Advance()
	if sim.timestep < sim.Cfg.StepCount {
		evtMgr.Schedule(sim, nil, advanceStep, vrtime.SecondsToTime(1.0))
	}
	return nil
}

// RunComparison expands the base description into the standard mitigation
// study (see ComparisonScenarios) and runs each scenario to completion over
// its own isolated state.  All runs share the base traffic parameters and
// seed, so their outcomes differ only in the mitigation set.  The returned
// map is indexed by scenario name.
func RunComparison(base *ScenarioCfg, sm *StatsManager) (map[string][]StepStats, error) {
	scenarios := ComparisonScenarios(base)

	// the statistics dictionary records each node id once, the node
	// population is identical across the scenarios
	if sm != nil && sm.Active() {
		for id := 0; id < base.NodeCount; id++ {
			role := "node"
			if id < base.AttackerCount {
				role = "attacker"
			} else if id == base.TargetNodeID {
				role = "target"
			}
			sm.AddName(id, "node-"+strconv.Itoa(id), role)
		}
	}

	results := make(map[string][]StepStats)
	seen := make([]string, 0, len(scenarios))

	for _, sc := range scenarios {
		if slices.Contains(seen, sc.Name) {
			return nil, fmt.Errorf("scenario name %s duplicated in comparison", sc.Name)
		}
		seen = append(seen, sc.Name)

		stats, err := RunScenario(sc, sm)
		if err != nil {
			return nil, err
		}
		results[sc.Name] = stats
	}

	return results, nil
}
