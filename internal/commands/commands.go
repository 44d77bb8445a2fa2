// Package commands implements the command-line subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bryan-buckman/vakantie/internal/countdown"
	"github.com/bryan-buckman/vakantie/internal/model"
	"github.com/bryan-buckman/vakantie/internal/preference"
	"github.com/bryan-buckman/vakantie/internal/vacation"
	"golang.org/x/term"
)

// ErrUsage is returned when a command gets the wrong arguments.
var ErrUsage = errors.New("usage")

// Source provides the holiday data per school year.
type Source interface {
	Periods(ctx context.Context, year model.SchoolYear) []model.VacationPeriod
}

// Env is what the commands run against.
type Env struct {
	Prefs  *preference.Preferences
	Source Source
	Out    io.Writer
	Now    func() time.Time
	Loc    *time.Location

	// Region and SchoolYear override the stored preferences when set.
	Region     model.Region
	SchoolYear model.SchoolYear

	// Interval is the countdown refresh rate; zero means every second.
	Interval time.Duration
}

func (e *Env) region() model.Region {
	if e.Region != "" {
		return e.Region
	}
	return e.Prefs.Region.Get()
}

func (e *Env) schoolYear() model.SchoolYear {
	if e.SchoolYear != "" {
		return e.SchoolYear
	}
	return e.Prefs.SchoolYear.Get()
}

func (e *Env) now() time.Time {
	return e.Now().In(e.Loc)
}

// Next prints the next vacation for the region in the school year.
func Next(ctx context.Context, env *Env) error {
	region, year := env.region(), env.schoolYear()
	v, ok := vacation.Upcoming(env.Source.Periods(ctx, year), region, env.now())
	fmt.Fprintf(env.Out, "Eerstvolgende vakantie (%s, %s)\n", region, year)
	if !ok {
		fmt.Fprintln(env.Out, "Geen aankomende vakantie")
		return nil
	}
	fmt.Fprintf(env.Out, "%s: %s t/m %s\n", v.Type, model.FormatDate(v.Start), model.FormatDate(v.End))
	return nil
}

// List prints every vacation for the region in the school year.
func List(ctx context.Context, env *Env) error {
	region, year := env.region(), env.schoolYear()
	all := vacation.All(env.Source.Periods(ctx, year), region)
	fmt.Fprintf(env.Out, "Alle vakanties (%s, %s)\n", region, year)
	if len(all) == 0 {
		fmt.Fprintln(env.Out, "Geen vakanties gevonden")
		return nil
	}
	for _, v := range all {
		fmt.Fprintf(env.Out, "%-20s %s t/m %s\n", v.Type, model.FormatDate(v.Start), model.FormatDate(v.End))
	}
	return nil
}

// Countdown counts down to the next vacation until it starts or ctx is
// cancelled. On a terminal the line is redrawn in place.
func Countdown(ctx context.Context, env *Env) error {
	region := env.region()
	load := func(y model.SchoolYear) []model.VacationPeriod { return env.Source.Periods(ctx, y) }
	v, ok := vacation.NextAcross(load, region, env.schoolYear(), env.now())
	if !ok {
		fmt.Fprintln(env.Out, "Geen aankomende vakanties gevonden")
		return nil
	}

	fmt.Fprintf(env.Out, "%s (%s geselecteerd)\n", v.Type, region)
	start := countdown.StartOf(v.Start, env.Loc)
	inPlace := isTerminal(env.Out)
	show := func(r countdown.Remaining) {
		if inPlace {
			fmt.Fprintf(env.Out, "\r%s\033[K", r)
			if r.Started {
				fmt.Fprintln(env.Out)
			}
			return
		}
		fmt.Fprintln(env.Out, r)
	}

	first := countdown.Until(start, env.Now())
	show(first)
	if first.Started {
		return nil
	}

	t := countdown.NewTicker(start, env.Interval, show)
	t.Start(ctx)
	t.Done()
	if inPlace && ctx.Err() != nil {
		fmt.Fprintln(env.Out)
	}
	return nil
}

// SetRegion stores the region given as the only argument.
func SetRegion(env *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: set-region <Noord|Midden|Zuid>", ErrUsage)
	}
	r, err := model.ParseRegion(args[0])
	if err != nil {
		return err
	}
	env.Prefs.Region.Set(r)
	env.Prefs.Region.Wait()
	fmt.Fprintf(env.Out, "Regio ingesteld op %s\n", r)
	return nil
}

// SetSchoolYear stores the school year given as the only argument.
func SetSchoolYear(env *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: set-schoolyear <YYYY-YYYY>", ErrUsage)
	}
	y, err := model.ParseSchoolYear(args[0])
	if err != nil {
		return err
	}
	env.Prefs.SchoolYear.Set(y)
	env.Prefs.SchoolYear.Wait()
	fmt.Fprintf(env.Out, "Schooljaar ingesteld op %s\n", y)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
