// Package report renders finished runs: a two-panel PNG figure (response with
// reference, control signal), terminal line plots and a styled summary.
package report
