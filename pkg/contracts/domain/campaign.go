package domain

import "time"

// Recognized input columns of a campaign CSV export. Any other column is
// carried through the RawRecord untouched and ignored by the pipeline.
const (
	ColSendTime        = "Send Time"
	ColCampaignName    = "Campaign Name"
	ColSubject         = "Subject"
	ColSendWeekday     = "Send Weekday"
	ColList            = "List"
	ColRevenue         = "Revenue"
	ColOpenRate        = "Open Rate"
	ColClickRate       = "Click Rate"
	ColPlacedOrderRate = "Placed Order Rate"
	ColTotalRecipients = "Total Recipients"
	ColUniqueOpens     = "Unique Opens"
	ColUniqueClicks    = "Unique Clicks"
)

// UnknownCampaign is substituted when a row carries no campaign name.
const UnknownCampaign = "Unknown"

// RawRecord is one uploaded row, header name -> cell value. Transient: owned
// by the pipeline invocation and discarded after aggregation.
type RawRecord map[string]string

// SendTime is a tagged parse result for the Send Time column. Callers must
// check Valid before using Time; an invalid SendTime never reaches the
// time-bucketing functions.
type SendTime struct {
	Time  time.Time
	Valid bool
}

// InvalidSendTime is the sentinel for unparseable or missing send times.
func InvalidSendTime() SendTime {
	return SendTime{}
}

// ValidSendTime wraps a parsed timestamp.
func ValidSendTime(t time.Time) SendTime {
	return SendTime{Time: t, Valid: true}
}

// CampaignRecord is the normalized form of one RawRecord. Numeric fields
// default to zero on unparseable input; string fields default to "" except
// CampaignName which defaults to UnknownCampaign.
type CampaignRecord struct {
	SendTime       SendTime
	CampaignName   string
	Subject        string
	SendWeekday    string
	ListSegment    string
	Revenue        float64
	OpenRate       float64
	ClickRate      float64
	ConversionRate float64
	Recipients     float64
	UniqueOpens    float64
	UniqueClicks   float64
}
