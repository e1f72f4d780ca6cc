// Package exporter writes dashboard summary tables as CSV, either to an HTTP
// response or to files on disk. An optional UTF-8 BOM keeps Excel from
// guessing the encoding.
package exporter
