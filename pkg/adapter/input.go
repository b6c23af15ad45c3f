// Package adapter implements the engine's two external-interface
// boundaries (spec §4.I): the input adapter turns a JSON input record
// into validated domain entities, and the output adapter turns a
// model.Solution back into the §6 output document.
//
// Grounded on original_source/app/from_dict.py's DictToInstance class
// (field names, required-vs-optional keys, the staff/rule/shift/weight
// record shapes) and original_source/app/convert.py (category label
// vocabulary, the flat staff_name/day/shift_type/role/is_part_time
// assignment-entry shape reused for both hope entries and output rows).
package adapter

import (
	"time"

	"github.com/paiban/rostergen/internal/config"
	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/model"
)

// RawRange is the wire shape of a per-code count bound.
type RawRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RawConstraint is the wire shape shared by staff-level and rule-level
// constraints — from_dict.py's StaffConstraint/RuleConstraint, merged
// into one struct since the two only differ in which fields are present.
type RawConstraint struct {
	Type        string `json:"type"` // "必須"|"選好"
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Count       string `json:"count"`
	Final       string `json:"final"`
	Target      string `json:"target"`
	Times       string `json:"times"`
	Weight      int    `json:"weight"`
}

// RawStaff is one staff_list entry — from_dict.py's StaffData.
type RawStaff struct {
	Name                string              `json:"name"`
	Role                string              `json:"role"`
	IsDayShiftOnly      bool                `json:"is_day_shift_only"`
	IsPartTime          bool                `json:"is_part_time"`
	IsGlobalRule        bool                `json:"is_global_rule"`
	ShiftCounts         map[string]RawRange `json:"shift_counts"`
	HolidayOverride     *int                `json:"holiday_override"`
	ReliabilityOverride *int                `json:"reliability_override"`
	Constraints         []RawConstraint     `json:"constraints"`
}

// RawRule is the rule record — from_dict.py's RuleData. The five
// required-staffing counts are float64 to admit half-integer values
// (spec's "v.5" convention); RangeFromValue resolves each to a bound.
type RawRule struct {
	HolidayCount          int             `json:"holiday_count"`
	ConsecutiveWorkLimit  int             `json:"consecutive_work_limit"`
	WeekdayStaff          float64         `json:"weekday_staff"`
	SundayStaff           float64         `json:"sunday_staff"`
	EarlyStaff            float64         `json:"early_staff"`
	LateStaff             float64         `json:"late_staff"`
	NightStaff            float64         `json:"night_staff"`
	WeekdayReliability    *int            `json:"weekday_reliability"`
	SundayReliability     *int            `json:"sunday_reliability"`
	PreferenceConstraints []RawConstraint `json:"preference_constraints"`
}

// RawHopeEntry is one hope_entries record — from_dict.py's ShiftEntry,
// trimmed to the fields the core needs (role/is_part_time are carried
// through to the output adapter, not the solver).
type RawHopeEntry struct {
	StaffName string `json:"staff_name"`
	Day       int    `json:"day"`
	ShiftType string `json:"shift_type"`
}

// Request is the full §6 input record.
type Request struct {
	StaffList          []RawStaff        `json:"staff_list"`
	Rule               RawRule           `json:"rule"`
	HopeEntries        []RawHopeEntry    `json:"hope_entries"`
	PreferenceEntries  []RawConstraint   `json:"preference_entries"`
	Weights            map[string]int    `json:"weights"`
	SearchTimeSeconds  int               `json:"search_time_seconds"`
	Year               int               `json:"year"`
	Month              int               `json:"month"`
	Mode               string            `json:"mode"` // "turbo"|"balanced"
}

// Input is the adapter's output: the domain entities plus the run
// tunables every caller (HTTP handler, CLI, test) needs to invoke the
// solver driver.
type Input struct {
	Staff      []*model.Staff
	Global     *model.GlobalRule
	Month      *model.Month
	Hopes      []model.HopeEntry
	Weights    config.WeightConfig
	SearchTime int
	Mode       string
}

// kindLabel maps the wire "type" vocabulary to model.Kind.
var kindLabel = map[string]model.Kind{
	"必須": model.Mandatory,
	"選好": model.Preference,
}

// categoryLabel maps the wire "category" vocabulary (original_source's
// Japanese constraint-category names) to model.Category. シフト適性 and
// 信頼度 both resolve to the two reliability categories basic.go treats
// identically (fieldContract: "reliability-target: same shape as
// shift-aptitude") — 信頼度 has no direct original_source citation, a
// judgment call recorded in DESIGN.md.
var categoryLabel = map[string]model.Category{
	"曜日希望":     model.CategoryWeekdayWish,
	"勤務希望":     model.CategoryShiftWish,
	"シフトパターン":  model.CategoryShiftPattern,
	"連続勤務":     model.CategoryConsecutiveWork,
	"日勤帯連勤":    model.CategoryDayOnlyConsecutive,
	"連続休暇":     model.CategoryConsecutiveHoliday,
	"連休保証":     model.CategoryHolidayGuarantee,
	"シフトバランス":  model.CategoryShiftBalance,
	"ペアリング":    model.CategoryPairing,
	"セパレート":    model.CategorySeparation,
	"ペア重複":     model.CategoryPairOverlap,
	"連続シフト":    model.CategoryConsecutiveShift,
	"シフト間隔":    model.CategoryShiftInterval,
	"出シフト":     model.CategoryDaySpecificShift,
	"カスタムプリセット": model.CategoryCustomPreset,
	"シフト適性":    model.CategoryShiftAptitude,
	"信頼度":      model.CategoryReliabilityTarget,
}

// applyWeightOverride sets one §6 weight-catalog field on cfg by its
// wire key, reporting ok=false for a key outside the catalog. The
// catalog's triple-pair-overlap/same-shift-triple/unset-penalty entries
// are deliberately not overridable here — §6 lists them as fixed
// (triple-pair-overlap, same-shift-triple) or input-driven only via
// holiday-guarantee's own count field, matching convert.py's
// convert_weightdata, which hardcodes those three rather than reading
// them from the web payload.
func applyWeightOverride(cfg *config.WeightConfig, key string, value int) bool {
	switch key {
	case "weekday-wish":
		cfg.WeekdayWish = value
	case "shift-wish":
		cfg.ShiftWish = value
	case "holiday-pattern":
		cfg.HolidayPattern = value
	case "work-pattern":
		cfg.WorkPattern = value
	case "shift-pattern":
		cfg.ShiftPattern = value
	case "pairing":
		cfg.Pairing = value
	case "separation":
		cfg.Separation = value
	case "custom-preset":
		cfg.CustomPreset = value
	case "balance":
		cfg.Balance = value
	case "pair-overlap":
		cfg.PairOverlap = value
	case "day-only-consecutive-work":
		cfg.DayOnlyConsecutive = value
	default:
		return false
	}
	return true
}

// BuildInput validates req and converts it to domain entities. Unknown
// category/type labels fail fast with an InvalidInput error naming the
// offending staff and constraint index, per spec §4.I.
func BuildInput(req Request) (*Input, *apperrors.AppError) {
	if len(req.StaffList) == 0 {
		return nil, apperrors.InvalidInput("staff_list", "must contain at least one staff")
	}
	if req.Mode != "turbo" && req.Mode != "balanced" {
		return nil, apperrors.InvalidInput("mode", "must be \"turbo\" or \"balanced\"")
	}

	month, err := model.NewMonth(req.Year, req.Month, firstWeekdayOf(req.Year, req.Month))
	if err != nil {
		return nil, apperrors.InvalidInput("year/month", err.Error())
	}

	global, aerr := buildGlobalRule(req.Rule, req.PreferenceEntries)
	if aerr != nil {
		return nil, aerr
	}

	staff := make([]*model.Staff, 0, len(req.StaffList))
	for _, rs := range req.StaffList {
		s, aerr := buildStaff(rs, global)
		if aerr != nil {
			return nil, aerr
		}
		staff = append(staff, s)
	}

	hopes := make([]model.HopeEntry, 0, len(req.HopeEntries))
	for idx, rh := range req.HopeEntries {
		if rh.StaffName == "" {
			return nil, apperrors.InvalidInput("hope_entries", "entry has no staff_name").WithField("index", idx)
		}
		code, ok := resolveCode(rh.ShiftType)
		if !ok {
			return nil, apperrors.InvalidInput("hope_entries.shift_type", "unknown shift-type label "+rh.ShiftType).WithField("index", idx)
		}
		hopes = append(hopes, model.HopeEntry{Staff: rh.StaffName, Day: rh.Day, Code: code})
	}

	weights := config.DefaultWeightConfig()
	for key, v := range req.Weights {
		if !applyWeightOverride(&weights, key, v) {
			return nil, apperrors.InvalidInput("weights", "unknown weight-catalog key "+key)
		}
	}

	return &Input{
		Staff:      staff,
		Global:     global,
		Month:      month,
		Hopes:      hopes,
		Weights:    weights,
		SearchTime: req.SearchTimeSeconds,
		Mode:       req.Mode,
	}, nil
}

func buildGlobalRule(r RawRule, topLevelPrefs []RawConstraint) (*model.GlobalRule, *apperrors.AppError) {
	prefs := make([]model.Constraint, 0, len(r.PreferenceConstraints)+len(topLevelPrefs))
	for idx, rc := range r.PreferenceConstraints {
		c, aerr := buildConstraint(rc)
		if aerr != nil {
			return nil, aerr.WithField("index", idx).WithField("source", "rule.preference_constraints")
		}
		prefs = append(prefs, c)
	}
	for idx, rc := range topLevelPrefs {
		c, aerr := buildConstraint(rc)
		if aerr != nil {
			return nil, aerr.WithField("index", idx).WithField("source", "preference_entries")
		}
		prefs = append(prefs, c)
	}

	return &model.GlobalRule{
		HolidayCount:         r.HolidayCount,
		ConsecutiveWorkLimit: r.ConsecutiveWorkLimit,
		RequiredPerDay: model.RequiredPerDay{
			Early:      model.RangeFromValue(r.EarlyStaff),
			DayWeekday: model.RangeFromValue(r.WeekdayStaff),
			DaySunday:  model.RangeFromValue(r.SundayStaff),
			Late:       model.RangeFromValue(r.LateStaff),
			Night:      model.RangeFromValue(r.NightStaff),
		},
		WeekdayReliability:    r.WeekdayReliability,
		SundayReliability:     r.SundayReliability,
		PreferenceConstraints: prefs,
	}, nil
}

func buildStaff(rs RawStaff, global *model.GlobalRule) (*model.Staff, *apperrors.AppError) {
	if rs.Name == "" {
		return nil, apperrors.InvalidInput("staff_list.name", "staff entry has no name")
	}

	counts := make(map[model.Code]model.Range, len(rs.ShiftCounts))
	for label, rr := range rs.ShiftCounts {
		code, ok := resolveCode(label)
		if !ok {
			return nil, apperrors.InvalidInput("staff_list.shift_counts", "unknown shift-code label "+label).WithField("staff", rs.Name)
		}
		counts[code] = model.Range{Min: rr.Min, Max: rr.Max}
	}

	constraints := make([]model.Constraint, 0, len(rs.Constraints))
	for idx, rc := range rs.Constraints {
		c, aerr := buildConstraint(rc)
		if aerr != nil {
			return nil, aerr.WithField("staff", rs.Name).WithField("index", idx)
		}
		constraints = append(constraints, c)
	}

	return &model.Staff{
		Name:                rs.Name,
		Role:                rs.Role,
		DayShiftOnly:        rs.IsDayShiftOnly,
		PartTime:            rs.IsPartTime,
		GlobalRuleExcluded:  !rs.IsGlobalRule,
		ShiftCounts:         counts,
		HolidayOverride:     rs.HolidayOverride,
		ReliabilityOverride: rs.ReliabilityOverride,
		Constraints:         constraints,
	}, nil
}

func buildConstraint(rc RawConstraint) (model.Constraint, *apperrors.AppError) {
	kind, ok := kindLabel[rc.Type]
	if !ok {
		return model.Constraint{}, apperrors.InvalidInput("constraint.type", "unknown constraint type "+rc.Type)
	}
	category, ok := categoryLabel[rc.Category]
	if !ok {
		return model.Constraint{}, apperrors.InvalidInput("constraint.category", "unknown constraint category "+rc.Category)
	}
	return model.Constraint{
		Kind:        kind,
		Category:    category,
		SubCategory: rc.SubCategory,
		Count:       rc.Count,
		Final:       rc.Final,
		Target:      rc.Target,
		Times:       rc.Times,
		Weight:      rc.Weight,
	}, nil
}

// firstWeekdayOf computes the Monday-first Weekday of day 1, the one
// piece of calendar arithmetic the input adapter performs on the core's
// behalf (model.NewMonth's doc comment: "the core never imports time
// zone/locale machinery").
func firstWeekdayOf(year, month int) model.Weekday {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// time.Weekday is Sunday-first (Sunday=0); model.Weekday is
	// Monday-first (Monday=0). Shift by one and wrap.
	return model.Weekday((int(t.Weekday()) + 6) % 7)
}

// resolveCode normalizes a shift-code label and verifies it against the
// known alphabet — NormalizeLabel alone would silently accept an unknown
// literal, which the fail-fast policy here forbids.
func resolveCode(label string) (model.Code, bool) {
	code := model.NormalizeLabel(label)
	if model.KnownCode(code) {
		return code, true
	}
	return "", false
}
