package symbolic

import (
	"github.com/go-a5/a5gww/internal/bitvec"
	"github.com/go-a5/a5gww/lfsr"
	"github.com/go-a5/a5gww/regs"
)

// DeriveCoupling computes, for a register configured by cfg, how each
// of its cfg.Length final cells depends on an inputLen-bit vector
// clocked in the same way a51/a52 clock the session key or frame
// counter (one cycle per input bit, most-significant input bit last —
// see a51.Cipher.clockVector). Because that clocking recurrence is
// purely linear (shift plus XOR, no AND gate anywhere), the
// contribution of input bit k to final cell v is independent of
// whatever the register's state was before clocking began: clocking
// the single-bit vector e_k into an all-zero register and reading off
// cell v directly gives that contribution. Looping k over every input
// bit therefore reconstructs the complete per-cell coupling mask with
// no precomputed table at all.
//
// The returned slice has cfg.Length entries; entry v is a bitmask over
// {0, ..., inputLen-1} (bit k set iff input bit k couples into cell v).
func DeriveCoupling(cfg lfsr.Config, inputLen int) []uint32 {
	coupling := make([]uint32, cfg.Length)
	for k := 0; k < inputLen; k++ {
		r := lfsr.New(cfg)
		basis := bitvec.New(inputLen)
		basis.Set(k, 1)
		for i := basis.Len() - 1; i >= 0; i-- {
			r.Clock(basis.Get(i))
		}
		final := r.Bits()
		for v := 0; v < cfg.Length; v++ {
			if final.Get(v) == 1 {
				coupling[v] |= 1 << uint(k)
			}
		}
	}
	return coupling
}

// PositionMask packs a bit vector into a uint32 where bit k (value
// 1<<k) is set iff b.Get(k) is 1 — the literal-position convention
// DeriveCoupling's return value and Register's fcDiff argument use,
// distinct from bitvec.Bits.Uint64's place-value convention.
func PositionMask(b bitvec.Bits) uint32 {
	var m uint32
	for i := 0; i < b.Len(); i++ {
		if b.Get(i) != 0 {
			m |= 1 << uint(i)
		}
	}
	return m
}

// DeriveFrameCoupling is DeriveCoupling specialized to the 22-cycle
// frame-counter mix.
func DeriveFrameCoupling(cfg lfsr.Config) []uint32 {
	return DeriveCoupling(cfg, regs.FrameCounterSize)
}

// DeriveKeyCoupling is DeriveCoupling specialized to the 64-cycle
// session-key mix.
func DeriveKeyCoupling(cfg lfsr.Config) []uint32 {
	return DeriveCoupling(cfg, regs.KeySize)
}
