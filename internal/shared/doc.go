// Package shared holds code used across layers that belongs to none of them.
//
// The testutil subpackage provides log capture for asserting on slog output
// and fixture writers that produce sales workbooks and CSV exports on disk.
// It is imported only from _test.go files.
package shared
