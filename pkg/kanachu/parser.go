package kanachu

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/travigo/busboard/pkg/approachstatus"
	"github.com/travigo/busboard/pkg/ctdf"
)

// ErrLayoutChanged is returned when the approach page no longer has the expected container.
// It wraps ctdf.ErrUpstreamShape so callers can tell it apart from transport failures.
var ErrLayoutChanged = fmt.Errorf("kanachu approach page layout changed: %w", ctdf.ErrUpstreamShape)

const (
	labelRoute       = "系統"
	labelDestination = "行先"
	labelVia         = "経由"
	labelVehicle     = "車両番号"
	labelDuration    = "所要時間"
)

var vehicleIDMarkers = strings.NewReplacer("*", "", "＊", "", "※", "")

// ParseApproachInfo extracts one record per bus block, in document order.
func ParseApproachInfo(document *goquery.Selection) ([]ctdf.BusStatusRecord, error) {
	container := document.Find("div.inner2.pa01").First()
	if container.Length() == 0 {
		return nil, ErrLayoutChanged
	}

	records := []ctdf.BusStatusRecord{}

	container.Find("h3.heading3").Each(func(i int, heading *goquery.Selection) {
		wrap := findBlockWrap(heading)
		if wrap.Length() == 0 {
			return
		}

		records = append(records, parseBlock(heading, wrap))
	})

	return records, nil
}

func findBlockWrap(heading *goquery.Selection) *goquery.Selection {
	if parent := heading.Parent(); parent.Is("div.hgroup01") {
		if wrap := parent.NextAllFiltered("div.wrap").First(); wrap.Length() > 0 {
			return wrap
		}
	}

	return heading.NextAllFiltered("div.wrap").First()
}

func parseBlock(heading *goquery.Selection, wrap *goquery.Selection) ctdf.BusStatusRecord {
	fields := collectLabelledFields(wrap)

	record := ctdf.BusStatusRecord{
		RouteLabel:  fieldOrUnknown(fields, labelRoute),
		Destination: fieldOrUnknown(fields, labelDestination),
		Via:         fieldOrUnknown(fields, labelVia),
		VehicleID:   strings.TrimSpace(vehicleIDMarkers.Replace(fields[labelVehicle])),
		Duration:    fields[labelDuration],
	}

	if record.RouteLabel == ctdf.UnknownField {
		if headingText := collapseWhitespace(heading.Text()); headingText != "" {
			record.RouteLabel = headingText
		}
	}

	frameBox := wrap.Find("div.col02 div.frameBox03").First()
	title := frameBox.Find("p.title01").First()

	if title.Length() == 0 {
		record.RawStatusText = ctdf.NoInformationStatus
		return record
	}

	record.RawStatusText = collapseWhitespace(title.Text())
	if record.RawStatusText == "" {
		record.RawStatusText = ctdf.NoInformationStatus
	}

	frameBox.Find("p").Not("p.title01").EachWithBreak(func(i int, paragraph *goquery.Selection) bool {
		text := collapseWhitespace(paragraph.Text())
		if strings.Contains(text, "遅れ") || strings.Contains(text, "遅延") {
			record.DelayHint = text
			return false
		}
		return true
	})

	if record.DelayHint == "" {
		if delay := approachstatus.ExtractDelay(record.RawStatusText, ""); delay != nil && !delay.Possible {
			record.DelayHint = delay.Text
		}
	}

	return record
}

// collectLabelledFields reads both th/td tables and dt/dd lists, first label wins.
func collectLabelledFields(wrap *goquery.Selection) map[string]string {
	fields := map[string]string{}

	add := func(label string, value string) {
		label = collapseWhitespace(label)
		for _, known := range []string{labelRoute, labelDestination, labelVia, labelVehicle, labelDuration} {
			if strings.Contains(label, known) {
				if _, exists := fields[known]; !exists {
					fields[known] = collapseWhitespace(value)
				}
				return
			}
		}
	}

	wrap.Find("th").Each(func(i int, th *goquery.Selection) {
		add(th.Text(), th.NextFiltered("td").Text())
	})
	wrap.Find("dt").Each(func(i int, dt *goquery.Selection) {
		add(dt.Text(), dt.NextFiltered("dd").Text())
	})

	return fields
}

func fieldOrUnknown(fields map[string]string, label string) string {
	if value := fields[label]; value != "" {
		return value
	}
	return ctdf.UnknownField
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
