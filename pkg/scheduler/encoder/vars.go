package encoder

import (
	"fmt"

	"github.com/paiban/rostergen/pkg/model"
	"github.com/paiban/rostergen/pkg/scheduler/cpsat"
)

// BuildAssignmentVariables constructs the full x[staff,day,code] cube
// (spec §4.H step 1 — "construct booleans x[s,d,c] for every (staff,
// day, code)"). It must run before any encoder.
func BuildAssignmentVariables(m *cpsat.Model, staff []*model.Staff, month *model.Month) {
	codes := model.FullAlphabet()
	for i := range staff {
		for d := 1; d <= month.Days; d++ {
			for _, c := range codes {
				name := fmt.Sprintf("x_s%d_d%d_%s", i, d, string(c))
				m.NewAssignmentVar(i, d, string(c), name)
			}
		}
	}
}
