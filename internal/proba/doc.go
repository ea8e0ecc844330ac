// Package proba provides labeled tables of independent scalar probability
// distributions used for probabilistic forecasts.
//
// A Table is a two-dimensional grid: every cell holds one distribution of a
// single family (Normal, Laplace) and is addressed by a row label and a column
// label. Tables are immutable. Sub-selection by label (Loc) or by position
// (ILoc) returns a new Table with the family parameters subset accordingly:
//
//	n, _ := proba.NewNormal([][]float64{{0, 1}, {2, 3}, {4, 5}}, 1.0)
//	row, _ := n.ILoc().Get([]int{1}) // shape (1, 2), mu [[2 3]], sigma [[1 1]]
//	cdf, _ := row.CDF(x)
//
// Per-entry functions (Mean, Var, PDF, LogPDF, CDF, PPF, Energy, Sample) are
// evaluated cell by cell with the closed forms of the installed family.
package proba
