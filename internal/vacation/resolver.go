// Package vacation selects vacations from a holiday dataset for one region.
//
// Everything here is pure: the caller supplies the dataset and the current
// time. Equal start dates keep their input order (period order, then range
// order within a period).
package vacation

import (
	"sort"
	"time"

	"github.com/bryan-buckman/vakantie/internal/model"
)

// Matches reports whether a feed range region applies to region: either the
// region itself or the nationwide wildcard.
func Matches(rangeRegion string, region model.Region) bool {
	n := model.NormalizeRegion(rangeRegion)
	return n == region.Normalized() || n == model.Wildcard
}

// Flatten returns one ResolvedVacation per matching range, in input order.
func Flatten(periods []model.VacationPeriod, region model.Region) []model.ResolvedVacation {
	var out []model.ResolvedVacation
	for _, p := range periods {
		for _, r := range p.Regions {
			if !Matches(r.Region, region) {
				continue
			}
			out = append(out, model.ResolvedVacation{
				Type:  p.Type,
				Start: r.Start,
				End:   r.End,
			})
		}
	}
	return out
}

// All returns every vacation for region, sorted by start date.
func All(periods []model.VacationPeriod, region model.Region) []model.ResolvedVacation {
	out := Flatten(periods, region)
	sortByStart(out)
	return out
}

// Upcoming returns the soonest vacation for region that starts on or after
// now's calendar date. ok is false when there is none.
func Upcoming(periods []model.VacationPeriod, region model.Region, now time.Time) (v model.ResolvedVacation, ok bool) {
	list := UpcomingAll(periods, region, now)
	if len(list) == 0 {
		return model.ResolvedVacation{}, false
	}
	return list[0], true
}

// UpcomingAll returns all vacations for region starting on or after now's
// calendar date, sorted by start date.
func UpcomingAll(periods []model.VacationPeriod, region model.Region, now time.Time) []model.ResolvedVacation {
	today := model.Day(now)
	var out []model.ResolvedVacation
	for _, v := range Flatten(periods, region) {
		if !model.Day(v.Start).Before(today) {
			out = append(out, v)
		}
	}
	sortByStart(out)
	return out
}

// sortByStart orders by start date; stable so ties keep input order.
func sortByStart(vs []model.ResolvedVacation) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Start.Before(vs[j].Start)
	})
}

// NextAcross returns the first upcoming vacation in year. When year has
// nothing left it looks in the following school year. load supplies the
// dataset per school year.
func NextAcross(load func(model.SchoolYear) []model.VacationPeriod, region model.Region, year model.SchoolYear, now time.Time) (model.ResolvedVacation, bool) {
	if v, ok := Upcoming(load(year), region, now); ok {
		return v, true
	}
	return Upcoming(load(year.Next()), region, now)
}
