// Package sales holds the transaction table and the aggregations behind every
// dashboard view.
//
// Operations take a read-only *Table (and, where a view focuses on a single
// location, product or period, a Params) and return typed results. They never
// modify the table; derived values such as revenue, hour or time of day are
// computed into operation-local state. Group-by results come out in the
// natural order of their keys unless an operation says otherwise.
//
// Failures are typed: MissingColumnError when the table lacks a required
// column, EmptyInputError when an operation that selects a single extreme row
// is given no rows, and ParseError when a required column holds a cell the
// loaders could not convert.
// Kind maps any of them to an ErrorKind for presentation.
package sales
