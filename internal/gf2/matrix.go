// Package gf2 implements the linear algebra the GWW attack needs over
// GF(2): a packed-row matrix type and Gauss-Jordan elimination capable of
// enumerating every solution of an underdetermined system. Both the
// 114-equation init-register system and the 64-equation session-key
// system the gww package builds have at most 64 columns, so each row
// fits in a single uint64 with room to spare.
package gf2

// Matrix is a set of linear equations over GF(2): row i reads
// coeffs[i]·x = rhs[i], where coeffs[i] packs column j into bit j.
// Cols must not exceed 64.
type Matrix struct {
	cols  int
	rows  []uint64
	rhs   []uint64
	nrows int
}

// New returns an empty matrix with the given column count.
func New(cols int) *Matrix {
	if cols < 0 || cols > 64 {
		panic("gf2: column count must be in [0, 64]")
	}
	return &Matrix{cols: cols}
}

// AddRow appends one equation. coeffs bit j (1<<uint(j)) is the
// coefficient of column j; rhs is the equation's right-hand side bit.
func (m *Matrix) AddRow(coeffs uint64, rhs int) {
	m.rows = append(m.rows, coeffs&colMask(m.cols))
	m.rhs = append(m.rhs, uint64(rhs&1))
	m.nrows++
}

func colMask(cols int) uint64 {
	if cols >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(cols)) - 1
}

// Rows reports how many equations have been added.
func (m *Matrix) Rows() int { return m.nrows }

// Cols reports the matrix's column count.
func (m *Matrix) Cols() int { return m.cols }

// Solution is one assignment of the matrix's columns that satisfies
// every equation.
type Solution struct {
	// Values holds one bit per column, column j at bit j.
	Values uint64
}

// Solve reduces the matrix to reduced row-echelon form and returns every
// solution. ok is false iff the system is inconsistent (some all-zero
// row of coefficients has a nonzero right-hand side). When the system is
// underdetermined, Solve enumerates every assignment of the free
// (non-pivot) columns — 2^(number of free columns) solutions in total,
// so a caller can try each candidate in turn.
//
// Solve does not mutate the receiver; it operates on a private copy, so
// the same Matrix can be solved more than once (e.g. after AddRow calls
// from a caller reusing a scratch Matrix).
func (m *Matrix) Solve() (solutions []Solution, ok bool) {
	rows := make([]uint64, len(m.rows))
	copy(rows, m.rows)
	rhs := make([]uint64, len(m.rhs))
	copy(rhs, m.rhs)

	// Forward elimination: for each column in turn, find a row at or
	// below the current pivot row with that column set, swap it into
	// place, and clear that column out of every other row (full
	// Gauss-Jordan, not just upper-triangular) — this keeps every pivot
	// row's only remaining unknowns confined to the free columns, which
	// is what makes the free-column enumeration below exact rather than
	// requiring back-substitution.
	pivotRow := 0
	pivotCol := make([]int, 0, m.cols)
	isPivotCol := make([]bool, m.cols)

	for col := 0; col < m.cols && pivotRow < len(rows); col++ {
		bit := uint64(1) << uint(col)
		sel := -1
		for r := pivotRow; r < len(rows); r++ {
			if rows[r]&bit != 0 {
				sel = r
				break
			}
		}
		if sel == -1 {
			continue
		}
		rows[pivotRow], rows[sel] = rows[sel], rows[pivotRow]
		rhs[pivotRow], rhs[sel] = rhs[sel], rhs[pivotRow]

		for r := 0; r < len(rows); r++ {
			if r == pivotRow {
				continue
			}
			if rows[r]&bit != 0 {
				rows[r] ^= rows[pivotRow]
				rhs[r] ^= rhs[pivotRow]
			}
		}

		pivotCol = append(pivotCol, col)
		isPivotCol[col] = true
		pivotRow++
	}

	// Consistency check: any remaining row (all coefficients eliminated
	// to zero, since every column it could still reference now sits
	// above the pivot frontier) must have a zero right-hand side.
	for r := pivotRow; r < len(rows); r++ {
		if rows[r] == 0 && rhs[r] != 0 {
			return nil, false
		}
	}

	var freeCols []int
	for col := 0; col < m.cols; col++ {
		if !isPivotCol[col] {
			freeCols = append(freeCols, col)
		}
	}

	count := 1 << uint(len(freeCols))
	solutions = make([]Solution, 0, count)
	for assignment := 0; assignment < count; assignment++ {
		var free uint64
		for i, col := range freeCols {
			if assignment&(1<<uint(i)) != 0 {
				free |= uint64(1) << uint(col)
			}
		}

		var values uint64
		for i, col := range pivotCol {
			v := rhs[i]
			// rows[i] has 1s at this pivot column and possibly at free
			// columns (all other pivot columns were cleared above); XOR
			// in the free assignment's contribution to recover this
			// pivot variable's value.
			rest := rows[i] &^ (uint64(1) << uint(col))
			for _, fc := range freeCols {
				if rest&(uint64(1)<<uint(fc)) != 0 && free&(uint64(1)<<uint(fc)) != 0 {
					v ^= 1
				}
			}
			if v != 0 {
				values |= uint64(1) << uint(col)
			}
		}
		values |= free
		solutions = append(solutions, Solution{Values: values})
	}

	return solutions, true
}
