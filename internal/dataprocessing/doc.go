// Package dataprocessing implements the campaign analytics engine: lenient
// field normalization, calendar bucketing, multi-dimensional aggregation, and
// report table formatting.
//
// The pipeline is a single synchronous pass:
//
//	RawRecord -> NormalizeRecord -> Aggregator.Add -> Aggregator.BuildTables
//
// Parsing is deliberately lenient at the cell level: malformed numeric or
// percentage cells degrade to zero and an unparseable Send Time becomes an
// invalid sentinel, never an error. Marketing exports are user-supplied and
// frequently contain missing or malformed cells; one bad cell must not abort
// the whole report. Structural failures (an unreadable file, a missing header
// row) are the only fatal conditions and are surfaced by the parsers.
//
// Rows with an invalid Send Time are excluded from every time-bucketed report
// but still contribute to the campaign-growth report, which buckets by
// campaign name rather than by time.
package dataprocessing
