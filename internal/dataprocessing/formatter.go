package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"klvcli/pkg/contracts/domain"
)

// Fixed header rows, one per report.
var (
	dailyHeaders = []string{
		"Date Sent", "Campaign Name", "Subject", "Open Rate", "Click Rate",
		"Conversion Rate", "Send Time", "Send Days", "List / Segment", "Revenue",
	}
	weeklyHeaders   = []string{"Week", "Total Revenue", "Total Recipients", "Total Opens", "Total Clicks"}
	monthlyHeaders  = []string{"Month", "Total Revenue", "Total Recipients", "Total Opens", "Total Clicks"}
	trendHeaders    = []string{"Month", "Total Revenue"}
	growthHeaders   = []string{"Campaign Name", "Total Revenue"}
	seasonalHeaders = []string{"Day of Week", "Average Revenue"}
)

// BuildTables finalizes the accumulators into the six report tables.
func (a *Aggregator) BuildTables() map[domain.Report]domain.ReportTable {
	return map[domain.Report]domain.ReportTable{
		domain.ReportDaily:    a.DailyTable(),
		domain.ReportWeekly:   a.WeeklyTable(),
		domain.ReportMonthly:  a.MonthlyTable(),
		domain.ReportTrend:    a.TrendTable(),
		domain.ReportGrowth:   a.GrowthTable(),
		domain.ReportSeasonal: a.SeasonalTable(),
	}
}

// DailyTable emits one row per (day, campaign), days ascending, campaigns in
// first-seen order within a day. Rates are averaged over the bucket's count.
func (a *Aggregator) DailyTable() domain.ReportTable {
	rows := make([][]string, 0, len(a.daily))
	for _, key := range sortedKeys(a.daily) {
		bucket := a.daily[key]
		for _, name := range bucket.CampaignOrder {
			c := bucket.Campaigns[name]
			rows = append(rows, []string{
				bucket.Display,
				name,
				c.Subject,
				formatPercentAvg(c.OpenRateSum, c.Count),
				formatPercentAvg(c.ClickRateSum, c.Count),
				formatPercentAvg(c.ConvRateSum, c.Count),
				bucket.SendTimeOfDay,
				c.SendWeekday,
				c.ListSegment,
				formatMoney(c.RevenueSum),
			})
		}
	}
	return domain.ReportTable{Name: domain.ReportDaily, Headers: dailyHeaders, Rows: rows}
}

// WeeklyTable emits one row per Monday-anchored week, ascending.
func (a *Aggregator) WeeklyTable() domain.ReportTable {
	return a.periodTable(domain.ReportWeekly, weeklyHeaders, a.weekly)
}

// MonthlyTable emits one row per calendar month, ascending.
func (a *Aggregator) MonthlyTable() domain.ReportTable {
	return a.periodTable(domain.ReportMonthly, monthlyHeaders, a.monthly)
}

func (a *Aggregator) periodTable(name domain.Report, headers []string, buckets map[string]*periodStats) domain.ReportTable {
	rows := make([][]string, 0, len(buckets))
	for _, key := range sortedKeys(buckets) {
		s := buckets[key]
		rows = append(rows, []string{
			s.Display,
			formatMoney(s.RevenueSum),
			formatCount(s.RecipientsSum),
			formatCount(s.OpensSum),
			formatCount(s.ClicksSum),
		})
	}
	return domain.ReportTable{Name: name, Headers: headers, Rows: rows}
}

// TrendTable emits total revenue per year-month key, always ascending so the
// chart consumer gets a chronological series.
func (a *Aggregator) TrendTable() domain.ReportTable {
	rows := make([][]string, 0, len(a.trend))
	for _, key := range sortedKeys(a.trend) {
		rows = append(rows, []string{key, formatMoney(a.trend[key].RevenueSum)})
	}
	return domain.ReportTable{Name: domain.ReportTrend, Headers: trendHeaders, Rows: rows}
}

// GrowthTable emits total revenue per campaign, highest revenue first. Ties
// keep first-seen input order.
func (a *Aggregator) GrowthTable() domain.ReportTable {
	order := make([]string, len(a.growthOrder))
	copy(order, a.growthOrder)
	sort.SliceStable(order, func(i, j int) bool {
		return a.growth[order[i]].RevenueSum > a.growth[order[j]].RevenueSum
	})

	rows := make([][]string, 0, len(order))
	for _, name := range order {
		rows = append(rows, []string{name, formatMoney(a.growth[name].RevenueSum)})
	}
	return domain.ReportTable{Name: domain.ReportGrowth, Headers: growthHeaders, Rows: rows}
}

// SeasonalTable always emits exactly seven rows, Monday through Sunday.
// Weekdays with no records render an 0.00 average.
func (a *Aggregator) SeasonalTable() domain.ReportTable {
	rows := make([][]string, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		avg := 0.0
		if s, ok := a.seasonal[day]; ok && s.Count > 0 {
			avg = s.RevenueSum / float64(s.Count)
		}
		rows = append(rows, []string{day, formatMoney(avg)})
	}
	return domain.ReportTable{Name: domain.ReportSeasonal, Headers: seasonalHeaders, Rows: rows}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatPercentAvg renders sum/count as a percentage with two decimals, e.g.
// "24.50%". A zero count renders "0.00%".
func formatPercentAvg(sum float64, count int) string {
	avg := 0.0
	if count > 0 {
		avg = sum / float64(count)
	}
	return fmt.Sprintf("%.2f%%", avg*100)
}

// formatMoney renders a currency amount with two decimals and thousands
// separators, without a currency symbol: "12,345.60". The symbol belongs to
// the renderer, never the exported value.
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	return groupThousands(s[:dot]) + s[dot:]
}

// formatCount renders a summed count rounded to the nearest integer with
// thousands separators. Zero renders "0", never an empty cell.
func formatCount(v float64) string {
	return groupThousands(fmt.Sprintf("%.0f", math.Round(v)))
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	if len(digits) > 3 {
		var b strings.Builder
		lead := len(digits) % 3
		if lead > 0 {
			b.WriteString(digits[:lead])
		}
		for i := lead; i < len(digits); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(digits[i : i+3])
		}
		digits = b.String()
	}
	if neg {
		return "-" + digits
	}
	return digits
}
