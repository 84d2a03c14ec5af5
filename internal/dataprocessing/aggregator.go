package dataprocessing

import (
	"time"

	"klvcli/pkg/contracts/domain"
)

// Aggregator folds normalized campaign records into the six report
// accumulators. It is not safe for concurrent use; each run owns its own
// instance and discards it once the tables are built.
type Aggregator struct {
	daily    map[string]*dayBucket
	weekly   map[string]*periodStats
	monthly  map[string]*periodStats
	trend    map[string]*revenueStats
	growth   map[string]*revenueStats
	seasonal map[string]*revenueStats

	// growthOrder preserves first-seen campaign order so that equal-revenue
	// campaigns sort stably.
	growthOrder []string

	added   int
	skipped int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		daily:    make(map[string]*dayBucket),
		weekly:   make(map[string]*periodStats),
		monthly:  make(map[string]*periodStats),
		trend:    make(map[string]*revenueStats),
		growth:   make(map[string]*revenueStats),
		seasonal: make(map[string]*revenueStats),
	}
}

// Add routes one record into the accumulators. Every record contributes to
// the growth report; records with an invalid send time are skipped for all
// time-bucketed reports.
func (a *Aggregator) Add(rec domain.CampaignRecord) {
	a.addGrowth(rec)

	if !rec.SendTime.Valid {
		a.skipped++
		return
	}
	a.added++

	t := rec.SendTime.Time
	a.addDaily(t, rec)
	a.addPeriod(a.weekly, WeekKey(t), WeekDisplay(t), rec)
	a.addPeriod(a.monthly, MonthKey(t), MonthDisplay(t), rec)
	a.addRevenue(a.trend, MonthKey(t), rec.Revenue)
	a.addRevenue(a.seasonal, WeekdayName(t), rec.Revenue)
}

// RecordsBucketed returns the number of records included in time-bucketed
// reports and the number skipped for an invalid send time.
func (a *Aggregator) RecordsBucketed() (added, skipped int) {
	return a.added, a.skipped
}

func (a *Aggregator) addDaily(t time.Time, rec domain.CampaignRecord) {
	key := DayKey(t)
	bucket, ok := a.daily[key]
	if !ok {
		bucket = &dayBucket{
			Display:       DayDisplay(t),
			SendTimeOfDay: TimeOfDay(t),
			Campaigns:     make(map[string]*campaignDayStats),
		}
		a.daily[key] = bucket
	}

	stats, ok := bucket.Campaigns[rec.CampaignName]
	if !ok {
		stats = &campaignDayStats{
			Subject:     rec.Subject,
			SendWeekday: rec.SendWeekday,
			ListSegment: rec.ListSegment,
		}
		bucket.Campaigns[rec.CampaignName] = stats
		bucket.CampaignOrder = append(bucket.CampaignOrder, rec.CampaignName)
	}
	stats.Count++
	stats.OpenRateSum += rec.OpenRate
	stats.ClickRateSum += rec.ClickRate
	stats.ConvRateSum += rec.ConversionRate
	stats.RevenueSum += rec.Revenue
}

func (a *Aggregator) addGrowth(rec domain.CampaignRecord) {
	stats, ok := a.growth[rec.CampaignName]
	if !ok {
		stats = &revenueStats{}
		a.growth[rec.CampaignName] = stats
		a.growthOrder = append(a.growthOrder, rec.CampaignName)
	}
	stats.RevenueSum += rec.Revenue
	stats.Count++
}

func (a *Aggregator) addPeriod(buckets map[string]*periodStats, key, display string, rec domain.CampaignRecord) {
	stats, ok := buckets[key]
	if !ok {
		stats = &periodStats{Display: display}
		buckets[key] = stats
	}
	stats.RevenueSum += rec.Revenue
	stats.RecipientsSum += rec.Recipients
	stats.OpensSum += rec.UniqueOpens
	stats.ClicksSum += rec.UniqueClicks
	stats.Count++
}

func (a *Aggregator) addRevenue(buckets map[string]*revenueStats, key string, revenue float64) {
	stats, ok := buckets[key]
	if !ok {
		stats = &revenueStats{}
		buckets[key] = stats
	}
	stats.RevenueSum += revenue
	stats.Count++
}
