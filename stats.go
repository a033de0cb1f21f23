package floodsim

// stats.go holds the manager that gathers the per-step statistics records
// emitted by simulation runs, and serializes them for post-run analysis.
// Rendering these records for human consumption is left to whatever driver
// runs the experiment; the manager's contract ends at the structured record.

import (
	"encoding/json"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// NameType is an entry in a dictionary created for a statistics file
// that maps object id numbers to a (name,type) pair
type NameType struct {
	Name string
	Type string
}

// A StatsManager gathers the statistics stream of an experiment: for each
// scenario, the sequence of per-step records its run produced
type StatsManager struct {
	// experiment gathers statistics
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// text name associated with each objID
	NameByID map[int]NameType `json:"namebyid" yaml:"namebyid"`

	// all step records for this experiment, indexed by scenario name
	Stats map[string][]StepStats `json:"stats" yaml:"stats"`
}

// CreateStatsManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the manager is active.  By testing this
// flag we can inhibit the activity of gathering statistics when we don't
// want them, while embedding calls to its methods everywhere we need them
// when it is
func CreateStatsManager(expName string, active bool) *StatsManager {
	sm := new(StatsManager)
	sm.InUse = active
	sm.ExpName = expName
	sm.NameByID = make(map[int]NameType)
	sm.Stats = make(map[string][]StepStats)
	return sm
}

// Active tells the caller whether the stats manager is actively being used
func (sm *StatsManager) Active() bool {
	return sm.InUse
}

// AddName is used to add an element to the id -> (name,type) dictionary for the statistics file
func (sm *StatsManager) AddName(id int, name string, objDesc string) {
	if sm.InUse {
		_, present := sm.NameByID[id]
		if present {
			panic("duplicated id in AddName")
		}
		sm.NameByID[id] = NameType{Name: name, Type: objDesc}
	}
}

// AddStats appends one step record to the named scenario's sequence
func (sm *StatsManager) AddStats(scenario string, ss StepStats) {
	// return if we aren't using the stats manager
	if !sm.InUse {
		return
	}

	_, present := sm.Stats[scenario]
	if !present {
		sm.Stats[scenario] = make([]StepStats, 0)
	}
	sm.Stats[scenario] = append(sm.Stats[scenario], ss)
}

// ScenarioStats returns the gathered record sequence for one scenario
func (sm *StatsManager) ScenarioStats(scenario string) []StepStats {
	return sm.Stats[scenario]
}

// WriteToFile stores the Stats struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of
// this name.  Records within each scenario are ordered by step before
// the write.
func (sm *StatsManager) WriteToFile(filename string) bool {
	if !sm.InUse {
		return false
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	for scenario := range sm.Stats {
		records := sm.Stats[scenario]
		sort.Slice(records, func(i, j int) bool { return records[i].Step < records[j].Step })
		sm.Stats[scenario] = records
	}

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*sm)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*sm, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	err := f.Close()
	if err != nil {
		panic(err)
	}
	return true
}
