// Package cellset enumerates and scores the complete set of S2 cells
// covering the sphere at a fixed storage level.
//
// Enumeration is a worklist-driven flood fill over the S2 neighbor graph;
// the result is a CellSet whose canonical iteration order is ascending
// CellID, independent of discovery order. Scoring mutates the set in place
// and fails loudly when a record maps to a cell that was never enumerated,
// since that indicates a seed/level mismatch rather than bad input.
package cellset
