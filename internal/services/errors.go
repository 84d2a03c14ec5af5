package services

import "errors"

// Sentinel errors mapped to API errors by the transport layer.
var (
	// ErrNoDataset means no file has been uploaded yet.
	ErrNoDataset = errors.New("no campaign dataset loaded")
	// ErrNoDataInRange means the date filter excluded every row with a valid
	// send time. The stored report set is cleared, never left stale.
	ErrNoDataInRange = errors.New("no data matches the selected date range")
	// ErrNoReportSet means no aggregation run has completed yet.
	ErrNoReportSet = errors.New("no report set generated yet")
	// ErrUnknownReport names a report outside the canonical six.
	ErrUnknownReport = errors.New("unknown report")
	// ErrUnsupportedFormat rejects uploads that are neither CSV nor Excel.
	ErrUnsupportedFormat = errors.New("unsupported upload format")
)
