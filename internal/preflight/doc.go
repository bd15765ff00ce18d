// Package preflight provides readiness checks for the n8n instance and the
// filesystem paths n8nexplorer writes to.
//
// The CLI "doctor" command runs RunAll and prints one line per check; the
// individual check functions are also used by "status" to report
// connectivity.
package preflight
