// Package preflight provides readiness checks for the executables and
// filesystem paths a scan depends on.
//
// These checks run in two contexts:
//   - The scan runner calls RunAll before touching any unit. A blocking
//     failure aborts the scan before the tracker sweep.
//   - The CLI "mediatorr check" command prints every result.
//
// Low free space and optional tools only warn.
package preflight
