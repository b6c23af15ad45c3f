package solver

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/rostergen/internal/config"
	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/model"
	"github.com/paiban/rostergen/pkg/notify"
)

func smallScenario(t *testing.T) (*model.GlobalRule, *model.Month, []*model.Staff) {
	t.Helper()
	month, err := model.NewMonth(2026, 7, model.Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	global := &model.GlobalRule{
		HolidayCount: 8,
		RequiredPerDay: model.RequiredPerDay{
			Early:      model.Range{Min: 0, Max: 2},
			DayWeekday: model.Range{Min: 0, Max: 2},
			DaySunday:  model.Range{Min: 0, Max: 2},
			Late:       model.Range{Min: 0, Max: 2},
		},
	}
	staff := []*model.Staff{
		{Name: "田中", ShiftCounts: map[model.Code]model.Range{
			model.CodeEarly: {Min: 0, Max: month.Days}, model.CodeDay: {Min: 0, Max: month.Days},
			model.CodeLate: {Min: 0, Max: month.Days}, model.CodeRest: {Min: 0, Max: month.Days},
		}},
		{Name: "鈴木", ShiftCounts: map[model.Code]model.Range{
			model.CodeEarly: {Min: 0, Max: month.Days}, model.CodeDay: {Min: 0, Max: month.Days},
			model.CodeLate: {Min: 0, Max: month.Days}, model.CodeRest: {Min: 0, Max: month.Days},
		}},
	}
	return global, month, staff
}

func TestRun_TurboProducesACompleteSolution(t *testing.T) {
	global, month, staff := smallScenario(t)
	sink := notify.NewSink()
	defer sink.Close()

	result, aerr := Run(context.Background(), Request{
		Staff: staff, Global: global, Month: month,
		Weights: config.DefaultWeightConfig(), Sink: sink, RunID: "t1",
		Mode: ModeTurbo, SearchTime: 10 * time.Second, MaxWorkers: 2,
	})
	if aerr != nil {
		t.Fatalf("Run() error = %s", aerr.Error())
	}
	if result.Solution == nil {
		t.Fatal("Run() returned a nil solution")
	}
	want := len(staff) * month.Days
	if got := len(result.Solution.Assignments); got != want {
		t.Errorf("len(Assignments) = %d, want %d (total assignment invariant)", got, want)
	}
}

func TestRun_BalancedModeHonorsContextCancellation(t *testing.T) {
	global, month, staff := smallScenario(t)
	sink := notify.NewSink()
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, aerr := Run(ctx, Request{
		Staff: staff, Global: global, Month: month,
		Weights: config.DefaultWeightConfig(), Sink: sink, RunID: "t2",
		Mode: ModeBalanced, SearchTime: 10 * time.Second, MaxWorkers: 2,
	})
	if aerr == nil {
		t.Fatal("Run() with an already-canceled context should return an error")
	}
	if aerr.Code != apperrors.CodeInternalFault {
		t.Errorf("Run() canceled-context error code = %v, want %v", aerr.Code, apperrors.CodeInternalFault)
	}
}

func TestRun_RejectsInfeasibleInputBeforeSolving(t *testing.T) {
	month, err := model.NewMonth(2026, 7, model.Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	sink := notify.NewSink()
	defer sink.Close()

	_, aerr := Run(context.Background(), Request{
		Staff:   nil, // empty staff list fails feasibility check B1
		Global:  &model.GlobalRule{},
		Month:   month,
		Weights: config.DefaultWeightConfig(),
		Sink:    sink, RunID: "t3",
		Mode: ModeTurbo, SearchTime: time.Second, MaxWorkers: 1,
	})
	if aerr == nil {
		t.Fatal("Run() with no staff should be rejected by the pre-flight check")
	}
	if aerr.Code != apperrors.CodeInfeasibleInput {
		t.Errorf("Run() error code = %v, want %v", aerr.Code, apperrors.CodeInfeasibleInput)
	}
}
