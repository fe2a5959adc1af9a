package student

import (
	"github.com/trezcool/dropwatch/core"
)

// RiskAll matches every risk category.
const RiskAll = "all"

// RiskFilters are the accepted QueryFilter.Risk values.
var RiskFilters = []string{RiskAll, "low", "medium", "high"}

// QueryFilter applies an AND of its non-empty fields.
type QueryFilter struct {
	// Search does a case-insensitive substring match on one of Student.Name or Student.ID.
	Search string `query:"search" json:"search"`
	// Risk is one of RiskFilters; matches students whose Status contains it, ignoring case.
	Risk string `query:"risk" json:"risk" validate:"omitempty,oneof=all low medium high"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Risk = core.CleanString(qf.Risk, true /* lower */)
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Search == "" && (qf.Risk == "" || qf.Risk == RiskAll)
}

// Matches reports whether the Student passes both predicates.
func (qf QueryFilter) Matches(s Student) bool {
	return matchesSearch(s, qf.Search) && matchesCategory(s, qf.Risk)
}

// Filter returns the students matching qf, in their original order.
func Filter(students []Student, qf QueryFilter) []Student {
	res := make([]Student, 0, len(students))
	for _, s := range students {
		if qf.Matches(s) {
			res = append(res, s)
		}
	}
	return res
}

// Search returns the students whose name or id contains term, ignoring case.
func Search(students []Student, term string) []Student {
	return Filter(students, QueryFilter{Search: term})
}

// FilterByCategory returns the students whose status contains level, ignoring case.
// "all" and "" match everything.
func FilterByCategory(students []Student, level string) []Student {
	return Filter(students, QueryFilter{Risk: level})
}

func matchesSearch(s Student, term string) bool {
	if term == "" {
		return true
	}
	return core.ContainsFold(s.Name, term) || core.ContainsFold(s.ID, term)
}

func matchesCategory(s Student, level string) bool {
	if level == "" || level == RiskAll {
		return true
	}
	return core.ContainsFold(s.Status.String(), level)
}
