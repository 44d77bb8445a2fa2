// Package countdown computes and drives the live countdown to a vacation.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StartedMessage is shown once the vacation has begun.
const StartedMessage = "De vakantie is begonnen!"

// DefaultInterval is the countdown refresh rate.
const DefaultInterval = time.Second

// Remaining is the time left until a vacation starts.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Started bool
}

// Until returns the time left from now until start.
func Until(start, now time.Time) Remaining {
	diff := start.Sub(now)
	if diff <= 0 {
		return Remaining{Started: true}
	}
	total := int(diff / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total / 3600 % 24,
		Minutes: total / 60 % 60,
		Seconds: total % 60,
	}
}

// String renders the countdown in Dutch.
func (r Remaining) String() string {
	if r.Started {
		return StartedMessage
	}
	return fmt.Sprintf("%d dagen, %d uur, %d min, %d sec", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// StartOf returns the local midnight at which a vacation dated d begins.
// d is a calendar date held as midnight UTC.
func StartOf(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// Ticker recomputes the countdown on a fixed interval and hands it to a
// callback. It stops by itself once the vacation has started.
type Ticker struct {
	start    time.Time
	interval time.Duration
	now      func() time.Time
	onTick   func(Remaining)

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewTicker creates a ticker counting down to start.
func NewTicker(start time.Time, interval time.Duration, onTick func(Remaining)) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		start:    start,
		interval: interval,
		now:      time.Now,
		onTick:   onTick,
		stopChan: make(chan struct{}),
	}
}

// Start begins the countdown loop. The first tick fires after one interval.
func (t *Ticker) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-t.stopChan:
				return
			case <-ctx.Done():
				return
			case <-tk.C:
			}

			r := Until(t.start, t.now())
			t.onTick(r)
			if r.Started {
				return
			}
		}
	}()
}

// Stop stops the loop and waits for it to exit. No tick is delivered after
// Stop returns. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.wg.Wait()
}

// Done waits for the loop to exit on its own.
func (t *Ticker) Done() {
	t.wg.Wait()
}
