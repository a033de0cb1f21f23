package floodsim

// desc-scenario.go holds the serializable descriptions of a simulation
// scenario, with methods for reading, writing, and validating them.
// Following the convention used across our simulation models, description
// structs are pointer-free so they serialize completely, and carry paired
// json/yaml tags with the codec chosen from the file name extension.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// A MitigationCfg selects which filter stages the pipeline includes.
// Each flag is independent; a disabled stage is excluded entirely,
// its counter updates included.
type MitigationCfg struct {
	RateLimit              bool `json:"ratelimit" yaml:"ratelimit"`
	IPFiltering            bool `json:"ipfiltering" yaml:"ipfiltering"`
	DeepPacketInspection   bool `json:"deeppacketinspection" yaml:"deeppacketinspection"`
	TrafficPatternAnalysis bool `json:"trafficpatternanalysis" yaml:"trafficpatternanalysis"`
}

// A ScenarioCfg describes one complete run: the node population, the flood
// target, the traffic volumes, the step count, and the mitigation set
type ScenarioCfg struct {
	// identifier for the scenario, also names the run's RNG stream
	Name string `json:"name" yaml:"name"`

	// total number of nodes in the network
	NodeCount int `json:"nodecount" yaml:"nodecount"`

	// number of nodes given the attacker role, ids 0..AttackerCount-1
	AttackerCount int `json:"attackercount" yaml:"attackercount"`

	// id of the flood target
	TargetNodeID int `json:"targetnodeid" yaml:"targetnodeid"`

	// number of time steps the run executes
	StepCount int `json:"stepcount" yaml:"stepcount"`

	// attack traffic volume per attacker, as a multiplier of attacker capacity
	AttackIntensity float64 `json:"attackintensity" yaml:"attackintensity"`

	// number of legitimate packets generated each step
	LegitimateTraffic int `json:"legitimatetraffic" yaml:"legitimatetraffic"`

	// master seed for the run's random number streams.  Two runs with the
	// same configuration and seed produce identical per-step statistics
	Seed uint64 `json:"seed" yaml:"seed"`

	// the mitigation stages to enable
	Mitigations MitigationCfg `json:"mitigations" yaml:"mitigations"`
}

// DefaultScenarioCfg returns the baseline experiment configuration:
// 50 nodes of which 10 attack, ten steps, attack intensity twice attacker
// capacity, and 100 legitimate packets per step.  The target sits just past
// the attacker id range; a target inside that range would hold both roles
// at once, which validation rejects.
func DefaultScenarioCfg(name string) *ScenarioCfg {
	sc := new(ScenarioCfg)
	sc.Name = name
	sc.NodeCount = 50
	sc.AttackerCount = 10
	sc.TargetNodeID = 10
	sc.StepCount = 10
	sc.AttackIntensity = 2.0
	sc.LegitimateTraffic = 100
	sc.Seed = 1
	return sc
}

// Validate checks the scenario description for configuration faults and
// returns them aggregated into one error.  A fault here aborts the run
// before any packet is generated.
func (sc *ScenarioCfg) Validate() error {
	errs := []error{}

	if sc.NodeCount < 1 {
		errs = append(errs, fmt.Errorf("scenario %s: node count %d is not positive", sc.Name, sc.NodeCount))
	}
	if sc.AttackerCount < 0 {
		errs = append(errs, fmt.Errorf("scenario %s: attacker count %d is negative", sc.Name, sc.AttackerCount))
	}
	if sc.AttackerCount >= sc.NodeCount {
		errs = append(errs, fmt.Errorf("scenario %s: attacker count %d not smaller than node count %d",
			sc.Name, sc.AttackerCount, sc.NodeCount))
	}
	if sc.TargetNodeID < 0 || sc.TargetNodeID >= sc.NodeCount {
		errs = append(errs, fmt.Errorf("scenario %s: target node id %d is not a valid node id", sc.Name, sc.TargetNodeID))
	}
	if 0 <= sc.TargetNodeID && sc.TargetNodeID < sc.AttackerCount {
		errs = append(errs, fmt.Errorf("scenario %s: target node id %d lies inside the attacker id range [0,%d)",
			sc.Name, sc.TargetNodeID, sc.AttackerCount))
	}
	if sc.StepCount < 0 {
		errs = append(errs, fmt.Errorf("scenario %s: step count %d is negative", sc.Name, sc.StepCount))
	}
	if sc.AttackIntensity < 0.0 {
		errs = append(errs, fmt.Errorf("scenario %s: attack intensity %f is negative", sc.Name, sc.AttackIntensity))
	}
	if sc.LegitimateTraffic < 0 {
		errs = append(errs, fmt.Errorf("scenario %s: legitimate traffic volume %d is negative", sc.Name, sc.LegitimateTraffic))
	}

	return ReportErrs(errs)
}

// WriteToFile stores the ScenarioCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (sc *ScenarioCfg) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*sc)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*sc, "", "\t")
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

	return werr
}

// ReadScenarioCfg deserializes a byte slice holding a representation of a
// ScenarioCfg struct.  If the input argument of dict (those bytes) is empty,
// the file whose name is given is read to acquire them.  A deserialized and
// validated representation is returned, or an error if one is generated from
// a file read, the deserialization, or validation.
func ReadScenarioCfg(filename string, useYAML bool, dict []byte) (*ScenarioCfg, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ScenarioCfg{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	err = example.Validate()
	if err != nil {
		return nil, err
	}

	return &example, nil
}

// ComparisonScenarios expands a base configuration into the standard
// six-scenario mitigation study: no mitigation, each stage alone, and all
// stages together.  Every scenario shares the base traffic parameters and
// seed so outcomes differ only in the mitigation set.
func ComparisonScenarios(base *ScenarioCfg) []*ScenarioCfg {
	variants := []struct {
		suffix string
		mc     MitigationCfg
	}{
		{"none", MitigationCfg{}},
		{"ratelimit", MitigationCfg{RateLimit: true}},
		{"ipfiltering", MitigationCfg{IPFiltering: true}},
		{"dpi", MitigationCfg{DeepPacketInspection: true}},
		{"patternanalysis", MitigationCfg{TrafficPatternAnalysis: true}},
		{"all", MitigationCfg{RateLimit: true, IPFiltering: true,
			DeepPacketInspection: true, TrafficPatternAnalysis: true}},
	}

	scenarios := make([]*ScenarioCfg, 0, len(variants))
	for _, variant := range variants {
		sc := *base
		sc.Name = base.Name + "-" + variant.suffix
		sc.Mitigations = variant.mc
		scenarios = append(scenarios, &sc)
	}
	return scenarios
}

// ReportErrs transforms a list of errors and transforms the non-nil ones into a single error
// with comma-separated report of all the constituent errors, and returns it.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}
