package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"klvcli/pkg/contracts/domain"
)

// sendTimeLayouts are tried in order by ParseSendTime. Klaviyo exports use
// the 12-hour US form, but exports re-saved through spreadsheet tools show up
// in ISO and slash-separated variants too.
var sendTimeLayouts = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006",
}

// ParseSendTime parses a raw Send Time cell into a tagged SendTime. The value
// is tried against the known layouts as-is, then retried with "-" separators
// replaced by "/" to coax locale-ambiguous date strings into an acceptable
// form. Empty or unparseable input yields the invalid sentinel, not an error.
func ParseSendTime(raw string) domain.SendTime {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.InvalidSendTime()
	}

	if t, ok := tryLayouts(s); ok {
		return domain.ValidSendTime(t)
	}
	if alt := strings.ReplaceAll(s, "-", "/"); alt != s {
		if t, ok := tryLayouts(alt); ok {
			return domain.ValidSendTime(t)
		}
	}
	return domain.InvalidSendTime()
}

func tryLayouts(s string) (time.Time, bool) {
	for _, layout := range sendTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePercentage converts a rate cell to a fraction. "12.34%" becomes
// 0.1234; a bare number is parsed as-is (an already-fractional export).
// Returns 0 for empty or unparseable input. Values are intentionally not
// clamped to [0,1]: out-of-range upstream data flows through unchanged.
func ParsePercentage(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if strings.Contains(s, "%") {
		s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
		return parseFloatLenient(s) / 100
	}
	return parseFloatLenient(s)
}

// ParseDecimal parses a numeric cell with a zero fallback. Thousands
// separators and a leading currency symbol are tolerated.
func ParseDecimal(raw string) float64 {
	return parseFloatLenient(raw)
}

func parseFloatLenient(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeRecord converts one raw row into a CampaignRecord, applying the
// defaulting rules: missing campaign name becomes "Unknown", missing string
// fields become "", malformed numerics become 0, and a bad Send Time becomes
// the invalid sentinel.
func NormalizeRecord(raw domain.RawRecord) domain.CampaignRecord {
	name := strings.TrimSpace(raw[domain.ColCampaignName])
	if name == "" {
		name = domain.UnknownCampaign
	}

	return domain.CampaignRecord{
		SendTime:       ParseSendTime(raw[domain.ColSendTime]),
		CampaignName:   name,
		Subject:        strings.TrimSpace(raw[domain.ColSubject]),
		SendWeekday:    strings.TrimSpace(raw[domain.ColSendWeekday]),
		ListSegment:    strings.TrimSpace(raw[domain.ColList]),
		Revenue:        ParseDecimal(raw[domain.ColRevenue]),
		OpenRate:       ParsePercentage(raw[domain.ColOpenRate]),
		ClickRate:      ParsePercentage(raw[domain.ColClickRate]),
		ConversionRate: ParsePercentage(raw[domain.ColPlacedOrderRate]),
		Recipients:     ParseDecimal(raw[domain.ColTotalRecipients]),
		UniqueOpens:    ParseDecimal(raw[domain.ColUniqueOpens]),
		UniqueClicks:   ParseDecimal(raw[domain.ColUniqueClicks]),
	}
}
