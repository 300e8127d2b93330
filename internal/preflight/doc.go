// Package preflight provides readiness checks for the storage backend and
// filesystem paths that itemqueue depends on.
//
// These checks run in two contexts:
//   - "itemqueue serve" calls RunAll before accepting tool calls and refuses
//     to start when a check fails.
//   - The CLI "itemqueue status" command displays every result.
//
// Only checks relevant to the selected backend are run.
package preflight
