// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Region is one of the three Dutch school-holiday regions.
type Region string

const (
	RegionNoord  Region = "Noord"
	RegionMidden Region = "Midden"
	RegionZuid   Region = "Zuid"

	DefaultRegion = RegionNoord
)

// Wildcard is the feed's region string for ranges that apply nationwide.
const Wildcard = "heel nederland"

// Regions lists the valid regions in display order.
var Regions = []Region{RegionNoord, RegionMidden, RegionZuid}

var (
	ErrInvalidRegion     = errors.New("invalid region")
	ErrInvalidSchoolYear = errors.New("invalid school year")
)

// Valid reports whether r is one of the fixed regions. Matching is exact,
// like the persisted value check.
func (r Region) Valid() bool {
	for _, v := range Regions {
		if r == v {
			return true
		}
	}
	return false
}

// Normalized returns the lower-cased name used to match feed ranges.
func (r Region) Normalized() string {
	return NormalizeRegion(string(r))
}

// NormalizeRegion trims and lower-cases a region string.
func NormalizeRegion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseRegion accepts a region name in any case.
func ParseRegion(s string) (Region, error) {
	n := NormalizeRegion(s)
	for _, v := range Regions {
		if v.Normalized() == n {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRegion, s)
}

// SchoolYear is a "YYYY-YYYY" academic year.
type SchoolYear string

var schoolYearPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// ValidSchoolYear is the rule applied to persisted values: shape only.
func ValidSchoolYear(s SchoolYear) bool {
	return schoolYearPattern.MatchString(string(s))
}

// ParseSchoolYear validates inbound input. Besides the shape, the second year
// must follow the first.
func ParseSchoolYear(s string) (SchoolYear, error) {
	s = strings.TrimSpace(s)
	if !schoolYearPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSchoolYear, s)
	}
	first, _ := strconv.Atoi(s[:4])
	second, _ := strconv.Atoi(s[5:])
	if second != first+1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSchoolYear, s)
	}
	return SchoolYear(s), nil
}

// NewSchoolYear returns the school year starting in the given calendar year.
func NewSchoolYear(start int) SchoolYear {
	return SchoolYear(fmt.Sprintf("%d-%d", start, start+1))
}

// CurrentSchoolYear is the default school year: this calendar year to the next.
func CurrentSchoolYear(now time.Time) SchoolYear {
	return NewSchoolYear(now.Year())
}

// SchoolYearOptions returns the selectable school years: current and the next two.
func SchoolYearOptions(now time.Time) []SchoolYear {
	y := now.Year()
	return []SchoolYear{NewSchoolYear(y), NewSchoolYear(y + 1), NewSchoolYear(y + 2)}
}

// Next returns the following school year. Invalid years are returned as is.
func (s SchoolYear) Next() SchoolYear {
	if !ValidSchoolYear(s) {
		return s
	}
	first, _ := strconv.Atoi(string(s[:4]))
	return NewSchoolYear(first + 1)
}

// VacationPeriod is one named school break with a date range per region.
type VacationPeriod struct {
	Type            string
	CompulsoryDates string // informational only
	Regions         []RegionDateRange
}

// RegionDateRange holds the dates of a vacation for one region. Region is
// stored normalized; Start and End are calendar dates at midnight UTC.
type RegionDateRange struct {
	Region string
	Start  time.Time
	End    time.Time
}

// ResolvedVacation is a vacation flattened for one region.
type ResolvedVacation struct {
	Type  string    `json:"type"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Settings key constants.
const (
	SettingRegion     = "selectedLocation"
	SettingSchoolYear = "selectedSchoolYear"
)
