package floodsim

import (
	"testing"

	"github.com/iti/evt/evtm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseCfg returns the standard experiment: 50 nodes, 10 attackers at
// intensity 2.0, 100 legitimate packets per step.  Each attacker emits
// floor(2.0 x 500) = 1000 packets, 10000 attack packets per step in all.
func baseCfg(name string, steps int, mc MitigationCfg) *ScenarioCfg {
	sc := DefaultScenarioCfg(name)
	sc.StepCount = steps
	sc.Mitigations = mc
	return sc
}

func TestNoMitigationEndToEnd(t *testing.T) {
	stats, err := RunScenario(baseCfg("e2e-none", 1, MitigationCfg{}), nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	ss := stats[0]
	assert.Equal(t, 0, ss.Step)

	// with no stage enabled nothing is dropped, load is tracked but not gated
	assert.Equal(t, 10100, ss.Processed)
	assert.Equal(t, 100, ss.ProcessedLegit)
	assert.Equal(t, 10000, ss.ProcessedAttack)
	assert.Equal(t, 0, ss.Dropped)

	// the snapshot reports the configured target, not node 0
	assert.Equal(t, 10100, ss.TargetLoad)
	assert.Equal(t, 1000, ss.TargetCapacity)
}

func TestEveryPacketTerminatesOnce(t *testing.T) {
	mc := MitigationCfg{RateLimit: true, IPFiltering: true,
		DeepPacketInspection: true, TrafficPatternAnalysis: true}
	stats, err := RunScenario(baseCfg("conservation", 5, mc), nil)
	require.NoError(t, err)
	require.Len(t, stats, 5)

	for _, ss := range stats {
		assert.Equal(t, 10100, ss.Processed+ss.Dropped, "step %d", ss.Step)
		assert.Equal(t, ss.Processed, ss.ProcessedLegit+ss.ProcessedAttack, "step %d", ss.Step)
		assert.Equal(t, ss.Dropped, ss.DroppedLegit+ss.DroppedAttack, "step %d", ss.Step)
	}
}

func TestRateLimitResetsEachStep(t *testing.T) {
	stats, err := RunScenario(baseCfg("ratelimit-reset", 3, MitigationCfg{RateLimit: true}), nil)
	require.NoError(t, err)

	// the target admits exactly its capacity each step; a target at
	// capacity in step N accepts packets again in step N+1
	for _, ss := range stats {
		assert.Equal(t, 1000, ss.Processed, "step %d", ss.Step)
		assert.Equal(t, 1000, ss.TargetLoad, "step %d", ss.Step)
		assert.Equal(t, 9100, ss.Dropped, "step %d", ss.Step)
	}
}

func TestSourceFilterCumulativeAcrossSteps(t *testing.T) {
	stats, err := RunScenario(baseCfg("ipfilter-cumulative", 2, MitigationCfg{IPFiltering: true}), nil)
	require.NoError(t, err)

	// step 0: each of the 10 attackers lands its first 100 flagged packets
	assert.Equal(t, 1000, stats[0].ProcessedAttack)
	assert.Equal(t, 9000, stats[0].DroppedAttack)
	assert.Equal(t, 100, stats[0].ProcessedLegit)
	assert.Equal(t, 0, stats[0].DroppedLegit)

	// step 1: the counters carried over, every flagged packet drops
	assert.Equal(t, 0, stats[1].ProcessedAttack)
	assert.Equal(t, 10000, stats[1].DroppedAttack)
	assert.Equal(t, 100, stats[1].ProcessedLegit)
}

func TestSignatureInspectionPerSignature(t *testing.T) {
	stats, err := RunScenario(baseCfg("dpi", 1, MitigationCfg{DeepPacketInspection: true}), nil)
	require.NoError(t, err)

	// each attacker signature lands 50 occurrences before dropping starts;
	// the legitimate signature is counted far past 50 but never dropped
	assert.Equal(t, 500, stats[0].ProcessedAttack)
	assert.Equal(t, 9500, stats[0].DroppedAttack)
	assert.Equal(t, 100, stats[0].ProcessedLegit)
	assert.Equal(t, 0, stats[0].DroppedLegit)
}

func TestRunDeterminism(t *testing.T) {
	mc := MitigationCfg{RateLimit: true, IPFiltering: true,
		DeepPacketInspection: true, TrafficPatternAnalysis: true}

	first, err := RunScenario(baseCfg("determinism", 4, mc), nil)
	require.NoError(t, err)
	second, err := RunScenario(baseCfg("determinism", 4, mc), nil)
	require.NoError(t, err)

	// identical configuration and seed, identical per-step statistics
	assert.Equal(t, first, second)
}

func TestConfigurationFaultAbortsRun(t *testing.T) {
	sc := DefaultScenarioCfg("bad")
	sc.AttackerCount = 60
	_, err := RunScenario(sc, nil)
	assert.Error(t, err)

	sc = DefaultScenarioCfg("bad-target")
	sc.TargetNodeID = 3 // inside the attacker id range
	_, err = RunScenario(sc, nil)
	assert.Error(t, err)
}

func TestRunComparison(t *testing.T) {
	sm := CreateStatsManager("comparison", true)
	base := DefaultScenarioCfg("cmp")
	base.StepCount = 2

	results, err := RunComparison(base, sm)
	require.NoError(t, err)
	require.Len(t, results, 6)

	for name, stats := range results {
		assert.Len(t, stats, 2, "scenario %s", name)
		assert.Equal(t, stats, sm.ScenarioStats(name))
	}

	// the unmitigated scenario drops nothing
	for _, ss := range results["cmp-none"] {
		assert.Equal(t, 0, ss.Dropped)
		assert.Equal(t, 10100, ss.Processed)
	}

	// the full pipeline admits no more than mitigation alone would
	for idx, ss := range results["cmp-all"] {
		assert.LessOrEqual(t, ss.Processed, results["cmp-none"][idx].Processed)
	}

	// node dictionary was populated once for the shared population
	assert.Len(t, sm.NameByID, 50)
	assert.Equal(t, "attacker", sm.NameByID[0].Type)
	assert.Equal(t, "target", sm.NameByID[10].Type)
}

func TestEventDrivenRunMatchesDirectRun(t *testing.T) {
	mc := MitigationCfg{IPFiltering: true, RateLimit: true}

	direct, err := RunScenario(baseCfg("evt", 3, mc), nil)
	require.NoError(t, err)

	sim, err := CreateSimulation(baseCfg("evt", 3, mc), nil)
	require.NoError(t, err)

	evtMgr := evtm.New()
	StartScenario(evtMgr, sim)
	evtMgr.Run(100.0)

	assert.Equal(t, 3, sim.Timestep())
	assert.Equal(t, direct, sim.Stats())
}
