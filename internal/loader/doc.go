// Package loader persists queue contents behind one storage contract.
//
// A Loader reads and writes "templates" (named, fully replaceable item lists)
// and mutates the active list one item at a time. Five variants exist:
//
//   - Memory keeps items in process and ignores template names.
//   - File (json and csv codecs) maps a template id to {id}.json or {id}.csv
//     under a templates directory.
//   - Sheets maps a template id to a tab of a remote spreadsheet.
//   - SQLite stores templates as ordered rows in an embedded database.
//
// Every non-memory variant mutates with read-all, splice, write-all so a
// partially applied change is never visible. Loaders never validate items;
// that belongs to the queue manager. Loaders are not safe for concurrent use.
//
// Failures are reported as *Error values whose kind (ErrNotFound, ErrFormat,
// ErrIO, ErrAuth, ErrConfiguration) is matched with errors.Is.
package loader
