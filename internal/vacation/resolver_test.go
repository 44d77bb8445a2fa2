package vacation

import (
	"reflect"
	"testing"
	"time"

	"github.com/bryan-buckman/vakantie/internal/model"
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func rng(region, start, end string) model.RegionDateRange {
	return model.RegionDateRange{Region: region, Start: day(start), End: day(end)}
}

// exampleData is the summer/autumn scenario: summer for noord only, autumn nationwide.
func exampleData() []model.VacationPeriod {
	return []model.VacationPeriod{
		{Type: "Summer", Regions: []model.RegionDateRange{rng("noord", "2025-07-14", "2025-08-24")}},
		{Type: "Autumn", Regions: []model.RegionDateRange{rng("heel nederland", "2025-10-13", "2025-10-17")}},
	}
}

func TestUpcomingExample(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	got, ok := Upcoming(exampleData(), model.RegionNoord, now)
	if !ok {
		t.Fatal("Upcoming() found nothing")
	}
	want := model.ResolvedVacation{Type: "Autumn", Start: day("2025-10-13"), End: day("2025-10-17")}
	if got != want {
		t.Errorf("Upcoming() = %+v, want %+v", got, want)
	}
}

func TestAllExample(t *testing.T) {
	got := All(exampleData(), model.RegionNoord)
	if len(got) != 2 {
		t.Fatalf("All() returned %d vacations, want 2", len(got))
	}
	if got[0].Type != "Summer" || got[1].Type != "Autumn" {
		t.Errorf("All() order = %s, %s; want Summer, Autumn", got[0].Type, got[1].Type)
	}
}

func TestWildcardOnlyRegion(t *testing.T) {
	data := exampleData()

	all := All(data, model.RegionZuid)
	if len(all) != 1 || all[0].Type != "Autumn" {
		t.Errorf("All(Zuid) = %+v, want only Autumn", all)
	}

	beforeSummer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got, ok := Upcoming(data, model.RegionZuid, beforeSummer)
	if !ok || got.Type != "Autumn" {
		t.Errorf("Upcoming(Zuid) = %+v, %v; want Autumn", got, ok)
	}
}

func TestUpcomingStartingTodayCounts(t *testing.T) {
	data := []model.VacationPeriod{
		{Type: "Herfstvakantie", Regions: []model.RegionDateRange{rng("midden", "2025-10-18", "2025-10-26")}},
	}
	// Late in the evening of the start day still counts.
	now := time.Date(2025, 10, 18, 23, 59, 0, 0, time.UTC)
	if _, ok := Upcoming(data, model.RegionMidden, now); !ok {
		t.Error("vacation starting today should be upcoming")
	}
	if _, ok := Upcoming(data, model.RegionMidden, now.Add(time.Minute)); ok {
		t.Error("vacation that started yesterday should not be upcoming")
	}
}

func TestEmptyInput(t *testing.T) {
	if _, ok := Upcoming(nil, model.RegionNoord, time.Now()); ok {
		t.Error("Upcoming(nil) should report none")
	}
	if got := All(nil, model.RegionNoord); len(got) != 0 {
		t.Errorf("All(nil) = %v, want empty", got)
	}
	noMatch := []model.VacationPeriod{
		{Type: "Voorjaarsvakantie", Regions: []model.RegionDateRange{rng("zuid", "2026-02-14", "2026-02-22")}},
	}
	if got := All(noMatch, model.RegionNoord); len(got) != 0 {
		t.Errorf("All() with no matching ranges = %v, want empty", got)
	}
}

func TestMatchesNormalizes(t *testing.T) {
	tests := []struct {
		rangeRegion string
		region      model.Region
		want        bool
	}{
		{"noord", model.RegionNoord, true},
		{" Noord ", model.RegionNoord, true},
		{"HEEL NEDERLAND", model.RegionZuid, true},
		{"midden", model.RegionNoord, false},
		{"heel", model.RegionNoord, false},
	}
	for _, tt := range tests {
		if got := Matches(tt.rangeRegion, tt.region); got != tt.want {
			t.Errorf("Matches(%q, %s) = %v, want %v", tt.rangeRegion, tt.region, got, tt.want)
		}
	}
}

func TestTieBreakKeepsInputOrder(t *testing.T) {
	data := []model.VacationPeriod{
		{Type: "Zomervakantie", Regions: []model.RegionDateRange{
			rng("noord", "2026-07-04", "2026-08-16"),
			rng("heel nederland", "2026-07-04", "2026-08-16"),
		}},
		{Type: "Extra vrije dag", Regions: []model.RegionDateRange{rng("noord", "2026-07-04", "2026-07-04")}},
		{Type: "Meivakantie", Regions: []model.RegionDateRange{rng("heel nederland", "2026-04-25", "2026-05-03")}},
	}

	got := All(data, model.RegionNoord)
	types := make([]string, len(got))
	for i, v := range got {
		types[i] = v.Type
	}
	want := []string{"Meivakantie", "Zomervakantie", "Zomervakantie", "Extra vrije dag"}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("All() order = %v, want %v", types, want)
	}

	first, _ := Upcoming(data, model.RegionNoord, day("2026-06-01"))
	if first.Type != "Zomervakantie" {
		t.Errorf("Upcoming() tie = %q, want first in input order", first.Type)
	}
}

func TestProperties(t *testing.T) {
	data := []model.VacationPeriod{
		{Type: "Herfstvakantie", Regions: []model.RegionDateRange{
			rng("noord", "2025-10-18", "2025-10-26"),
			rng("midden", "2025-10-18", "2025-10-26"),
			rng("zuid", "2025-10-11", "2025-10-19"),
		}},
		{Type: "Kerstvakantie", Regions: []model.RegionDateRange{rng("heel nederland", "2025-12-20", "2026-01-04")}},
		{Type: "Voorjaarsvakantie", Regions: []model.RegionDateRange{
			rng("noord", "2026-02-21", "2026-03-01"),
			rng("midden", "2026-02-14", "2026-02-22"),
			rng("zuid", "2026-02-14", "2026-02-22"),
		}},
		{Type: "Meivakantie", Regions: []model.RegionDateRange{rng("heel nederland", "2026-04-25", "2026-05-03")}},
		{Type: "Zomervakantie", Regions: []model.RegionDateRange{
			rng("noord", "2026-07-04", "2026-08-16"),
			rng("midden", "2026-07-18", "2026-08-30"),
			rng("zuid", "2026-07-11", "2026-08-23"),
		}},
	}

	nows := []time.Time{
		day("2025-08-01"), day("2025-10-18"), day("2026-01-01"), day("2026-05-04"), day("2026-09-01"),
	}

	for _, region := range model.Regions {
		all := All(data, region)

		// Length equals matching ranges: one per named-region period plus the wildcards.
		if len(all) != 5 {
			t.Errorf("%s: All() length = %d, want 5", region, len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].Start.Before(all[i-1].Start) {
				t.Errorf("%s: All() not sorted at %d", region, i)
			}
		}
		if !reflect.DeepEqual(all, All(data, region)) {
			t.Errorf("%s: All() not idempotent", region)
		}

		for _, now := range nows {
			v, ok := Upcoming(data, region, now)
			v2, ok2 := Upcoming(data, region, now)
			if v != v2 || ok != ok2 {
				t.Errorf("%s: Upcoming() not idempotent", region)
			}
			if ok && v.Start.Before(model.Day(now)) {
				t.Errorf("%s: Upcoming(%s) returned past vacation %+v", region, model.FormatDate(now), v)
			}
		}
	}

	if _, ok := Upcoming(data, model.RegionNoord, day("2026-09-01")); ok {
		t.Error("nothing should be upcoming after the last summer")
	}
}

func TestInputNotMutated(t *testing.T) {
	data := []model.VacationPeriod{
		{Type: "B", Regions: []model.RegionDateRange{rng("noord", "2026-02-01", "2026-02-02")}},
		{Type: "A", Regions: []model.RegionDateRange{rng("noord", "2026-01-01", "2026-01-02")}},
	}
	_ = All(data, model.RegionNoord)
	if data[0].Type != "B" {
		t.Error("All() reordered its input")
	}
}

func TestNextAcross(t *testing.T) {
	byYear := map[model.SchoolYear][]model.VacationPeriod{
		"2025-2026": {{Type: "Zomervakantie", Regions: []model.RegionDateRange{rng("noord", "2026-07-04", "2026-08-16")}}},
		"2026-2027": {{Type: "Herfstvakantie", Regions: []model.RegionDateRange{rng("heel nederland", "2026-10-17", "2026-10-25")}}},
	}
	var asked []model.SchoolYear
	load := func(y model.SchoolYear) []model.VacationPeriod {
		asked = append(asked, y)
		return byYear[y]
	}

	v, ok := NextAcross(load, model.RegionNoord, "2025-2026", day("2026-06-01"))
	if !ok || v.Type != "Zomervakantie" {
		t.Errorf("got %+v, %v; want Zomervakantie", v, ok)
	}
	if len(asked) != 1 {
		t.Errorf("loaded %v, want only the selected year", asked)
	}

	asked = nil
	v, ok = NextAcross(load, model.RegionNoord, "2025-2026", day("2026-08-01"))
	if !ok || v.Type != "Herfstvakantie" {
		t.Errorf("got %+v, %v; want Herfstvakantie from the next year", v, ok)
	}
	if !reflect.DeepEqual(asked, []model.SchoolYear{"2025-2026", "2026-2027"}) {
		t.Errorf("loaded %v", asked)
	}

	if _, ok := NextAcross(load, model.RegionNoord, "2026-2027", day("2026-11-01")); ok {
		t.Error("expected nothing after the last known vacation")
	}
}
