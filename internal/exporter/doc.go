// Package exporter serializes report tables to CSV. Files use comma
// delimiters, "\n" line endings, and standard quote doubling for cells
// containing quotes, commas, or newlines. An optional UTF-8 BOM helps Excel
// recognize the encoding.
package exporter
