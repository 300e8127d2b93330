// Package item defines the records carried by a queue and the rules used to
// check them.
//
// An Item is an ordered set of named fields holding scalar, array, or object
// values. Field order is kept so tabular backends can derive stable column
// layouts from the first record they write. A Template declares the expected
// Kind of each field; Validate applies it with superset semantics, so fields
// that a template does not mention are ignored.
//
// The cell helpers translate between Go values and the flat strings used by
// CSV files and spreadsheets.
package item
