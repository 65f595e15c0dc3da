// Package symbolic tracks, for one of A5/2's R1/R2/R3 registers, how
// each cell's value at the current attack cycle decomposes as a linear
// (XOR) combination of the register's own post-frame-mix state bits —
// the "initial variables" the GWW attack ultimately solves for. It
// mirrors lfsr.LFSR's clocking exactly, but over variable-index sets
// instead of concrete bits, which is what lets the attack build a
// system of linear equations instead of simulating the cipher forward
// from a guess.
package symbolic

import "github.com/go-a5/a5gww/internal/bitvec"

// Register is the symbolic counterpart of one lfsr.LFSR during the
// attack's clocking phase. Each of its `size` cells holds a bitmask
// over {0, ..., size-1}: bit v is set iff initial variable v
// contributes (with odd multiplicity) to that cell's current value.
// Cells are stored in the same physical (not logical) indexing as
// lfsr.LFSR / bitvec.Bits: cell 0 is the most significant.
type Register struct {
	size        int
	taps        []int // logical tap positions, as in lfsr.Config
	hasMajority bool
	negBit      int // logical position of the majority function's negated input
	m0Bit       int // logical position of the first non-negated majority input
	m1Bit       int // logical position of the second non-negated majority input

	cells []uint32

	// pmask is the precomputed "which variables have an odd-parity
	// frame-difference contribution" mask used by Deltas: bit v is set
	// iff coupling[v] (the set of frame-counter positions that linearly
	// influence variable v, fixed for this register) has odd parity
	// against fcDiff (the known, fixed f1^f2 for this attack run).
	pmask uint32
}

// NewRegister constructs a symbolic register: size cells, each
// initially holding just its own index ({i} at physical position i,
// mirroring how the post-frame-mix state becomes the set of unknowns),
// taps in the logical convention lfsr.Config uses, and — for R1/R2/R3
// only — the majority function's three logical bit positions. fcDiff is
// f1^f2 as a raw bitmask (bit k set iff frame counter bit k differs
// between the two captured keystreams); coupling is this register's
// per-variable frame-counter coupling mask, from DeriveFrameCoupling.
func NewRegister(size int, taps []int, hasMajority bool, negBit, m0Bit, m1Bit int, coupling []uint32, fcDiff uint32) *Register {
	r := &Register{
		size:        size,
		taps:        taps,
		hasMajority: hasMajority,
		negBit:      negBit,
		m0Bit:       m0Bit,
		m1Bit:       m1Bit,
		cells:       make([]uint32, size),
	}
	for i := range r.cells {
		r.cells[i] = 1 << uint(i)
	}
	for v := 0; v < size; v++ {
		if bitvec.AndParity(uint64(coupling[v]), uint64(fcDiff)) == 1 {
			r.pmask |= 1 << uint(v)
		}
	}
	return r
}

func (r *Register) phys(p int) int { return r.size - 1 - p }

// Clock advances the register by one symbolic cycle: the new cell is
// the XOR (symmetric difference) of the tapped cells, read before the
// shift — the same feedback computation as lfsr.LFSR.Clock, applied to
// variable-index bitmasks instead of bits.
func (r *Register) Clock() {
	var feedback uint32
	for _, t := range r.taps {
		feedback ^= r.cells[r.phys(t)]
	}
	copy(r.cells, r.cells[1:])
	r.cells[r.size-1] = feedback
}

// Deltas returns, for each physical cell position, the known
// (unknown-independent) difference between this register's true value
// in the two captured runs: delta[i] = XOR over variables v present in
// cell i of that variable's frame-difference parity.
func (r *Register) Deltas() []int {
	out := make([]int, r.size)
	for i, mask := range r.cells {
		out[i] = bitvec.AndParity(uint64(mask), uint64(r.pmask))
	}
	return out
}

// GDelta returns the linearized cross-run difference of this
// register's whole output contribution — Output() XOR GetMajority() —
// as a slice of size+1 GF(2) coefficients, one per initial variable
// plus a trailing constant: XORing coefficient v with the (still
// unknown) variable v for v in [0,size), then with the trailing
// constant, gives the difference between the two runs' contributions
// at the current cycle.
//
// Derivation: with a = NOT cell(negBit), b = cell(m0Bit), c =
// cell(m1Bit) (all linear in the unknowns) and the corresponding
// cross-run deltas dNeg, dM0, dM1 (known, from Deltas), expanding
// maj(a,b,c) XOR maj(a⊕dNeg, b⊕dM0, c⊕dM1) cancels every term
// quadratic in the unknowns, leaving a linear combination of whichever
// variables are present in the negBit/m0Bit/m1Bit cells plus a GF(2)
// constant — see DESIGN.md for the full expansion, including the extra
// constant term contributed by a's NOT. The linear Output() part of
// the contribution (physical cell 0) differs across the runs by that
// cell's known delta, so it folds into the constant as well.
func (r *Register) GDelta() []int {
	out := make([]int, r.size+1)
	if !r.hasMajority {
		return out
	}
	deltas := r.Deltas()
	dNeg := deltas[r.phys(r.negBit)]
	dM0 := deltas[r.phys(r.m0Bit)]
	dM1 := deltas[r.phys(r.m1Bit)]

	aMask := r.cells[r.phys(r.negBit)]
	bMask := r.cells[r.phys(r.m0Bit)]
	cMask := r.cells[r.phys(r.m1Bit)]

	coefA := dM0 ^ dM1
	coefB := dNeg ^ dM1
	coefC := dNeg ^ dM0

	for v := 0; v < r.size; v++ {
		bit := uint32(1) << uint(v)
		val := 0
		if coefA == 1 && aMask&bit != 0 {
			val ^= 1
		}
		if coefB == 1 && bMask&bit != 0 {
			val ^= 1
		}
		if coefC == 1 && cMask&bit != 0 {
			val ^= 1
		}
		out[v] = val
	}

	quadraticConst := (dNeg & dM0) ^ (dNeg & dM1) ^ (dM0 & dM1)
	out[r.size] = coefA ^ quadraticConst ^ deltas[0]
	return out
}

// Cells returns a copy of the register's current physical-indexed cell
// masks, for tests that need to inspect state directly.
func (r *Register) Cells() []uint32 {
	out := make([]uint32, len(r.cells))
	copy(out, r.cells)
	return out
}
