package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/bryan-buckman/vakantie/internal/model"
)

// RSS represents the root of an RSS 2.0 document.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel contains feed metadata and items.
type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []Item `xml:"item"`
}

// Item is a single vacation entry.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link,omitempty"`
	Description string `xml:"description"`
	GUID        GUID   `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// GUID is the item identifier; ours are not links.
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Feed is the input for an RSS export.
type Feed struct {
	Region    model.Region
	Link      string // site URL the feed belongs to
	Vacations []model.ResolvedVacation
	Built     time.Time
}

// WriteRSS writes an RSS 2.0 feed with one item per vacation.
func WriteRSS(w io.Writer, f Feed) error {
	doc := RSS{
		Version: "2.0",
		Channel: Channel{
			Title:         fmt.Sprintf("Schoolvakanties regio %s", f.Region),
			Link:          f.Link,
			Description:   fmt.Sprintf("Aankomende schoolvakanties voor regio %s", f.Region),
			Language:      "nl-NL",
			LastBuildDate: f.Built.UTC().Format(time.RFC1123Z),
		},
	}
	for _, v := range f.Vacations {
		doc.Channel.Items = append(doc.Channel.Items, Item{
			Title:       v.Type,
			Link:        f.Link,
			Description: fmt.Sprintf("%s t/m %s", model.FormatDate(v.Start), model.FormatDate(v.End)),
			GUID:        GUID{Value: "urn:uuid:" + UID(f.Region, v).String()},
			PubDate:     v.Start.Format(time.RFC1123Z),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	return enc.Flush()
}
