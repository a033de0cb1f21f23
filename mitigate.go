package floodsim

// mitigate.go holds the mitigation pipeline: the run-scoped counter state
// the filter stages share, the stages themselves, and the ordered pipeline
// that drains each packet through them

// thresholds governing the filter stages
const (
	// cumulative flagged packets from one source before source filtering drops
	sourceFilterThreshold int = 100

	// cumulative occurrences of a flagged signature before inspection drops
	signatureThreshold int = 50

	// number of steps within which pattern analysis considers traffic recent
	patternWindow int = 5

	// source counter level above which recent traffic is dropped by pattern analysis
	patternThreshold int = 200
)

// RunState holds the cumulative counters the mitigation stages share.
// The maps are created empty when a run is constructed, are mutated in place
// by whichever stages are enabled, and are never reset while the run lives.
// Every run owns its own RunState so concurrent runs stay isolated.
type RunState struct {
	// cumulative count of attack-flagged packets seen per source id
	SourceCount map[int]int

	// cumulative count of packets seen per signature
	SignatureCount map[string]int
}

// CreateRunState is a constructor
func CreateRunState() *RunState {
	rs := new(RunState)
	rs.SourceCount = make(map[int]int)
	rs.SignatureCount = make(map[string]int)
	return rs
}

// A MitigationStage decides, for one packet that earlier stages have passed,
// whether the packet continues (true) or is dropped (false).  Stages read and
// write the shared RunState; a stage excluded from the pipeline performs
// neither its test nor its counter updates.
type MitigationStage interface {
	// a short identifier for the stage
	StageName() string

	// Evaluate returns true when the packet passes the stage
	Evaluate(pckt *Packet, state *RunState, timestep int) bool
}

// sourceFilterStage drops traffic from sources that have originated too many
// flagged packets over the whole run.  Legitimate packets bypass the stage
// entirely, counter update included.
type sourceFilterStage struct{}

func (sfs *sourceFilterStage) StageName() string {
	return "ipFiltering"
}

func (sfs *sourceFilterStage) Evaluate(pckt *Packet, state *RunState, timestep int) bool {
	if pckt.Legitimate {
		return true
	}
	state.SourceCount[pckt.SrcID] += 1
	return state.SourceCount[pckt.SrcID] <= sourceFilterThreshold
}

// signatureInspectionStage counts every signature it sees and drops packets
// whose signature both carries the attack marker and has been seen too often.
// Counters for unflagged signatures grow but can never trigger a drop.
type signatureInspectionStage struct{}

func (sis *signatureInspectionStage) StageName() string {
	return "deepPacketInspection"
}

func (sis *signatureInspectionStage) Evaluate(pckt *Packet, state *RunState, timestep int) bool {
	state.SignatureCount[pckt.Signature] += 1
	if FlaggedSignature(pckt.Signature) && state.SignatureCount[pckt.Signature] > signatureThreshold {
		return false
	}
	return true
}

// rateLimitStage is a pure admission test against the destination's load as
// already updated by earlier-admitted packets this step, so its outcome is
// order-dependent within the step.  It maintains no counters.
type rateLimitStage struct {
	registry *NodeRegistry
}

func (rls *rateLimitStage) StageName() string {
	return "rateLimit"
}

func (rls *rateLimitStage) Evaluate(pckt *Packet, state *RunState, timestep int) bool {
	dst := rls.registry.NodeByID(pckt.DstID)
	if dst == nil {
		return false
	}
	return !dst.AtCapacity()
}

// patternAnalysisStage drops recent traffic from sources whose cumulative
// counter has grown past a higher bar.  It only reads the counter the source
// filter writes; with source filtering excluded from the pipeline the counter
// never grows and this stage passes everything.
type patternAnalysisStage struct{}

func (pas *patternAnalysisStage) StageName() string {
	return "trafficPatternAnalysis"
}

func (pas *patternAnalysisStage) Evaluate(pckt *Packet, state *RunState, timestep int) bool {
	if timestep-pckt.Timestep < patternWindow && state.SourceCount[pckt.SrcID] > patternThreshold {
		return false
	}
	return true
}

// A Pipeline is the ordered set of enabled mitigation stages.  Order is
// fixed: source filtering, signature inspection, rate limiting, pattern
// analysis.  Evaluation short-circuits on the first stage that drops, so
// later stages never see (and never count) a packet dropped earlier.
type Pipeline struct {
	stages []MitigationStage
}

// CreatePipeline is a constructor.  It includes a stage instance for each
// mitigation the configuration enables, in the fixed stage order.  The
// registry argument gives the rate limiting stage access to node loads.
func CreatePipeline(mc MitigationCfg, registry *NodeRegistry) *Pipeline {
	pl := new(Pipeline)
	pl.stages = make([]MitigationStage, 0)

	if mc.IPFiltering {
		pl.stages = append(pl.stages, &sourceFilterStage{})
	}
	if mc.DeepPacketInspection {
		pl.stages = append(pl.stages, &signatureInspectionStage{})
	}
	if mc.RateLimit {
		pl.stages = append(pl.stages, &rateLimitStage{registry: registry})
	}
	if mc.TrafficPatternAnalysis {
		pl.stages = append(pl.stages, &patternAnalysisStage{})
	}

	return pl
}

// StageNames lists the enabled stages in evaluation order
func (pl *Pipeline) StageNames() []string {
	names := make([]string, 0, len(pl.stages))
	for _, stage := range pl.stages {
		names = append(names, stage.StageName())
	}
	return names
}

// Evaluate drains one packet through the enabled stages and returns true
// when every stage passes it.  A packet terminates in exactly one of
// pass or drop; there is no error path.
func (pl *Pipeline) Evaluate(pckt *Packet, state *RunState, timestep int) bool {
	for _, stage := range pl.stages {
		if !stage.Evaluate(pckt, state, timestep) {
			return false
		}
	}
	return true
}
