package floodsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStatsManagerGathering(t *testing.T) {
	sm := CreateStatsManager("exp", true)
	require.True(t, sm.Active())

	sm.AddStats("run-a", StepStats{Step: 1, Processed: 5})
	sm.AddStats("run-a", StepStats{Step: 0, Processed: 7})
	sm.AddStats("run-b", StepStats{Step: 0, Processed: 2})

	assert.Len(t, sm.ScenarioStats("run-a"), 2)
	assert.Len(t, sm.ScenarioStats("run-b"), 1)
	assert.Nil(t, sm.ScenarioStats("run-c"))
}

func TestStatsManagerInactive(t *testing.T) {
	sm := CreateStatsManager("idle", false)
	sm.AddStats("run", StepStats{Step: 0})
	sm.AddName(1, "node-1", "node")

	assert.Empty(t, sm.Stats)
	assert.Empty(t, sm.NameByID)
	assert.False(t, sm.WriteToFile("ignored.yaml"))
}

func TestStatsManagerWriteToFile(t *testing.T) {
	sm := CreateStatsManager("exp", true)
	sm.AddName(0, "node-0", "target")
	sm.AddStats("run", StepStats{Step: 1, Processed: 3})
	sm.AddStats("run", StepStats{Step: 0, Processed: 9})

	filename := filepath.Join(t.TempDir(), "stats.yaml")
	require.True(t, sm.WriteToFile(filename))

	dict, err := os.ReadFile(filename)
	require.NoError(t, err)

	read := StatsManager{}
	require.NoError(t, yaml.Unmarshal(dict, &read))

	require.Len(t, read.Stats["run"], 2)

	// records come back ordered by step
	assert.Equal(t, 0, read.Stats["run"][0].Step)
	assert.Equal(t, 1, read.Stats["run"][1].Step)
	assert.Equal(t, "node-0", read.NameByID[0].Name)
}
