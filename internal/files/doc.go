// Package files manages the on-disk inventory around the pipeline: archived
// copies of uploaded campaign exports and the report CSVs written by the
// exporter. It never interprets file contents.
package files
