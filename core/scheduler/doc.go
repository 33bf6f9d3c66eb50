// Package scheduler proposes values for empty timetable cells.
//
// It is deliberately simple: fixed items are stamped first and, when enabled,
// remaining gaps are filled greedily with subjects still below their weekly
// target. There is no search or backtracking; cells that cannot be placed
// stay empty for a human to fill.
package scheduler
