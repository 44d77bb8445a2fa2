// Package export renders resolved vacations as calendar and feed documents.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bryan-buckman/vakantie/internal/model"
	"github.com/google/uuid"
)

// ICS constants
const (
	ICSProductID = "-//Vakantie//Schoolvakanties//NL"
	ICSTimezone  = "Europe/Amsterdam"
	ICSRefresh   = "P1D"
)

// uidNamespace scopes the name-based UUIDs used as ICS UIDs and RSS GUIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://opendata.rijksoverheid.nl/schoolvakanties"))

// UID returns a stable identifier for a vacation in a region, so calendar
// apps update events in place instead of duplicating them.
func UID(region model.Region, v model.ResolvedVacation) uuid.UUID {
	name := strings.Join([]string{
		region.Normalized(),
		strings.ToLower(v.Type),
		model.FormatDate(v.Start),
		model.FormatDate(v.End),
	}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(name))
}

// Calendar is the input for an ICS subscription.
type Calendar struct {
	Region    model.Region
	Vacations []model.ResolvedVacation
	Stamp     time.Time // DTSTAMP for all events
}

// WriteICS writes an iCalendar subscription feed. Each vacation becomes an
// all-day event spanning its start to end date inclusive.
func WriteICS(w io.Writer, cal Calendar) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\r\n", args...)
	}

	stamp := cal.Stamp.UTC().Format("20060102T150405Z")

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", ICSProductID)
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:Schoolvakanties %s", cal.Region)
	line("X-WR-TIMEZONE:%s", ICSTimezone)
	line("CALSCALE:GREGORIAN")
	line("REFRESH-INTERVAL;VALUE=DURATION:%s", ICSRefresh)
	line("X-PUBLISHED-TTL:%s", ICSRefresh)

	for _, v := range cal.Vacations {
		line("BEGIN:VEVENT")
		line("UID:%s", UID(cal.Region, v))
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", v.Start.Format("20060102"))
		// DTEND is exclusive for all-day events.
		line("DTEND;VALUE=DATE:%s", v.End.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", escapeText(v.Type))
		line("DESCRIPTION:%s", escapeText(fmt.Sprintf("%s regio %s", v.Type, cal.Region)))
		line("TRANSP:TRANSPARENT")
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

// escapeText escapes TEXT values per RFC 5545.
func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}
