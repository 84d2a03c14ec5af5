package dataprocessing

// Accumulator entry types. One entry exists per bucket key; entries are
// created lazily on the first record mapping to the key and mutated by every
// later record sharing it. The full set is discarded and rebuilt on each run.

// campaignDayStats accumulates one campaign's sends within a single day.
// Subject, SendWeekday and ListSegment are captured from the bucket's first
// record and never merged across records.
type campaignDayStats struct {
	Subject      string
	SendWeekday  string
	ListSegment  string
	Count        int
	OpenRateSum  float64
	ClickRateSum float64
	ConvRateSum  float64
	RevenueSum   float64
}

// dayBucket is the outer level of the daily report's two-level grouping:
// day -> campaign name -> stats. CampaignOrder preserves first-seen order so
// formatting is deterministic.
type dayBucket struct {
	Display       string
	SendTimeOfDay string
	Campaigns     map[string]*campaignDayStats
	CampaignOrder []string
}

// periodStats accumulates the weekly and monthly report columns.
type periodStats struct {
	Display       string
	RevenueSum    float64
	RecipientsSum float64
	OpensSum      float64
	ClicksSum     float64
	Count         int
}

// revenueStats accumulates revenue-only buckets (trend, growth, seasonal).
type revenueStats struct {
	RevenueSum float64
	Count      int
}
