package cpsat

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters_go_proto"
)

// Status mirrors the handful of cpmodel.CpSolverStatus values the driver
// distinguishes between; callers never need the full proto enum.
type Status string

const (
	StatusOptimal      Status = "OPTIMAL"
	StatusFeasible     Status = "FEASIBLE"
	StatusInfeasible   Status = "INFEASIBLE"
	StatusModelInvalid Status = "MODEL_INVALID"
	StatusUnknown      Status = "UNKNOWN"
)

func statusFromProto(s fmt.Stringer) Status {
	switch s.String() {
	case "OPTIMAL":
		return StatusOptimal
	case "FEASIBLE":
		return StatusFeasible
	case "INFEASIBLE":
		return StatusInfeasible
	case "MODEL_INVALID":
		return StatusModelInvalid
	default:
		return StatusUnknown
	}
}

// Params configures a single solve call — the wall-clock budget and
// worker count the driver derives from turbo/balanced mode (§4.H step 7).
type Params struct {
	MaxSearchTime time.Duration
	NumWorkers    int32
	RandomSeed    int32
}

// Result is the outcome of one solve call: final status, objective, and
// a lookup closure for reading boolean values back off the response.
type Result struct {
	Status       Status
	Objective    int64
	BooleanValue func(v cpmodel.BoolVar) bool
}

// Solve instantiates the model and runs CP-SAT with the given parameters.
// Incumbent streaming: the Go cpmodel binding in this dependency's
// current release exposes no solution-callback hook (unlike the
// C++/Python front ends used by the original implementation), so this
// wrapper cannot surface true mid-search incumbents. The driver
// compensates by emitting a single progress event carrying the final
// incumbent once Solve returns — see pkg/scheduler/solver/driver.go.
func (m *Model) Solve(p Params) (Result, error) {
	m.finalizeObjective()
	proto, err := m.builder.Model()
	if err != nil {
		return Result{}, err
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: floatPtr(p.MaxSearchTime.Seconds()),
		NumWorkers:       int32Ptr(p.NumWorkers),
		RandomSeed:       int32Ptr(p.RandomSeed),
	}

	response, err := cpmodel.SolveCpModelWithParameters(proto, params)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Status:    statusFromProto(response.GetStatus()),
		Objective: int64(response.GetObjectiveValue()),
		BooleanValue: func(v cpmodel.BoolVar) bool {
			return cpmodel.SolutionBooleanValue(response, v)
		},
	}, nil
}

func floatPtr(f float64) *float64 { return &f }
func int32Ptr(i int32) *int32     { return &i }
