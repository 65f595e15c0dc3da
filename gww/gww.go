// Package gww implements the Goldberg-Wagner-Wegman known-keystream
// attack against A5/2: given two 114-bit send keystreams generated
// under frame counters differing in exactly bit 11, it recovers the
// 64-bit session key that produced them.
//
// The attack never simulates A5/2 forward from a key guess. Instead it
// guesses only R4's 17-bit state (the one register GWW's majority-
// function weakness lets an attacker linearize around), builds a system
// of GF(2) equations relating the two keystreams' known difference to
// R1/R2/R3's unknown post-frame-mix state, solves it, reverses the
// 22-cycle frame mix, and solves a second system to recover the
// session key.
package gww

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/go-a5/a5gww/a5"
	"github.com/go-a5/a5gww/a52"
	"github.com/go-a5/a5gww/gww/internal/symbolic"
	"github.com/go-a5/a5gww/internal/bitvec"
	"github.com/go-a5/a5gww/internal/gf2"
	"github.com/go-a5/a5gww/internal/subtle"
	"github.com/go-a5/a5gww/lfsr"
	"github.com/go-a5/a5gww/regs"
)

// Request is one known-keystream pair: two 114-bit send keystreams
// captured under frame counters differing in exactly the bit GWW
// requires (regs.FrameCounterDifference).
type Request struct {
	K1, K2 bitvec.Bits
	F1, F2 uint32
}

// Result is the attack's outcome. A completed search that found no key
// returns Result{Found: false} with a nil error: "not found" is not a
// failure.
type Result struct {
	Key   uint64
	Found bool
}

// Options configures the parallel R4 search.
type Options struct {
	// Workers is the number of goroutines searching disjoint ranges of
	// R4's 2^17 candidate values. <= 0 defaults to runtime.NumCPU().
	Workers int
}

const r4Candidates = 1 << regs.R4Size

// Register geometry shared by every candidate attempt: derived once
// from the same taps and majority/force-bit positions a52 clocks with,
// never tabulated (package gww/internal/symbolic).
var (
	r1Cfg = regs.A52R1()
	r2Cfg = regs.A52R2()
	r3Cfg = regs.A52R3()
	r4Cfg = regs.A52R4()

	r1ReverseTaps = lfsr.ReverseTaps(r1Cfg)
	r2ReverseTaps = lfsr.ReverseTaps(r2Cfg)
	r3ReverseTaps = lfsr.ReverseTaps(r3Cfg)

	// The forced-to-1 cell of each output register holds 1 in both
	// captured runs no matter what the frame counters were, so its
	// frame coupling is dropped before the symbolic registers compute
	// cross-run deltas from it.
	r1FrameCoupling = withoutForcedCell(symbolic.DeriveFrameCoupling(r1Cfg), r1Cfg, regs.ForceR1Bit)
	r2FrameCoupling = withoutForcedCell(symbolic.DeriveFrameCoupling(r2Cfg), r2Cfg, regs.ForceR2Bit)
	r3FrameCoupling = withoutForcedCell(symbolic.DeriveFrameCoupling(r3Cfg), r3Cfg, regs.ForceR3Bit)

	r1KeyCoupling = symbolic.DeriveKeyCoupling(r1Cfg)
	r2KeyCoupling = symbolic.DeriveKeyCoupling(r2Cfg)
	r3KeyCoupling = symbolic.DeriveKeyCoupling(r3Cfg)
)

func withoutForcedCell(coupling []uint32, cfg lfsr.Config, forceBit int) []uint32 {
	out := make([]uint32, len(coupling))
	copy(out, coupling)
	out[cfg.Length-1-forceBit] = 0
	return out
}

// Column offsets within the 64-column init-register and session-key
// matrices, a simple concatenation since R1Size+R2Size+R3Size ==
// KeySize.
const (
	r1Start = 0
	r2Start = r1Start + regs.R1Size
	r3Start = r2Start + regs.R2Size
)

// Attack searches for the session key underlying req, trying every R4
// candidate whose forced bit (regs.ForceR4Bit) is 1 across
// Options.Workers goroutines. It returns as soon as one worker finds a
// session key that reproduces K1 under F1, cancelling the others.
func Attack(ctx context.Context, req Request, opts Options) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > r4Candidates {
		workers = r4Candidates
	}

	keyDiff := req.K1.Xor(req.K2)

	var found atomic.Bool
	var result Result

	g, gctx := errgroup.WithContext(ctx)
	chunk := (r4Candidates + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > r4Candidates {
			end = r4Candidates
		}
		if start >= end {
			continue
		}

		g.Go(func() error {
			for v := start; v < end; v++ {
				if found.Load() {
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				r4 := lfsr.NewFromUint64(r4Cfg, uint64(v))
				if r4.GetBit(regs.ForceR4Bit) != 1 {
					continue
				}

				key, ok := tryCandidate(r4, keyDiff, req)
				if ok && found.CompareAndSwap(false, true) {
					result = Result{Key: key, Found: true}
				}
				if found.Load() {
					return nil
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}

// tryCandidate runs the full attack for one guessed R4 state: builds
// the 114x64 linear system relating the keystream difference to
// R1/R2/R3's unknown post-frame-mix state, solves it, and for every
// surviving solution (crossed with every combination of the three
// force-to-1 bits the init-register matrix doesn't model) verifies
// against the keystream and, on a match, recovers and confirms the
// session key.
func tryCandidate(r4 *lfsr.LFSR, keyDiff bitvec.Bits, req Request) (uint64, bool) {
	r4Work := r4.Clone()
	fcDiff := symbolic.PositionMask(bitvec.FromUint64(regs.FrameCounterSize, uint64(req.F1^req.F2)))

	symR1 := symbolic.NewRegister(regs.R1Size, r1Cfg.Taps, true, regs.R1NegatedBit, regs.R1Majority0, regs.R1Majority1, r1FrameCoupling, fcDiff)
	symR2 := symbolic.NewRegister(regs.R2Size, r2Cfg.Taps, true, regs.R2NegatedBit, regs.R2Majority0, regs.R2Majority1, r2FrameCoupling, fcDiff)
	symR3 := symbolic.NewRegister(regs.R3Size, r3Cfg.Taps, true, regs.R3NegatedBit, regs.R3Majority0, regs.R3Majority1, r3FrameCoupling, fcDiff)

	// The real cipher discards regs.MajorityCyclesA52 (99) R4-controlled
	// cycles before its first output bit (a52.Cipher.runFromWarmup); the
	// symbolic registers have to be advanced through the same warm-up,
	// otherwise the matrix below is built against the wrong point in
	// R1/R2/R3's trajectory.
	for i := 0; i < regs.MajorityCyclesA52; i++ {
		clockWithR4(symR1, symR2, symR3, r4Work)
	}

	mat := gf2.New(regs.KeySize)
	for i := 0; i < regs.StreamKeySize; i++ {
		clockWithR4(symR1, symR2, symR3, r4Work)

		gx := symR1.GDelta()
		gy := symR2.GDelta()
		gz := symR3.GDelta()

		var coeffs uint64
		for v := 0; v < regs.R1Size; v++ {
			if gx[v] == 1 {
				coeffs |= uint64(1) << uint(r1Start+v)
			}
		}
		for v := 0; v < regs.R2Size; v++ {
			if gy[v] == 1 {
				coeffs |= uint64(1) << uint(r2Start+v)
			}
		}
		for v := 0; v < regs.R3Size; v++ {
			if gz[v] == 1 {
				coeffs |= uint64(1) << uint(r3Start+v)
			}
		}

		rhs := keyDiff.Get(i) ^ gx[regs.R1Size] ^ gy[regs.R2Size] ^ gz[regs.R3Size]
		mat.AddRow(coeffs, rhs)
	}

	solutions, ok := mat.Solve()
	if !ok {
		return 0, false
	}

	for _, sol := range solutions {
		r1Bits, r2Bits, r3Bits := solutionToBits(sol.Values)

		// R1[15]/R2[16]/R3[18] are always forced to 1 during real A5/2
		// key setup, so the init-register equations (which model the
		// cells GWW clocks, not the force step) may have solved them to
		// either value. Check the keystream oracle once per solution
		// (the force bits don't affect it yet), then, only on a match,
		// try every combination while reversing the frame mix.
		oracleSend := a52.VerifyOracle(r1Bits, r2Bits, r3Bits, r4.Bits())
		if subtle.ConstantTimeCompare(oracleSend.Bytes(), req.K1.Bytes()) != 1 {
			continue
		}

		for combo := 0; combo < 8; combo++ {
			r1c := lfsr.NewFromBits(r1Cfg, r1Bits)
			r2c := lfsr.NewFromBits(r2Cfg, r2Bits)
			r3c := lfsr.NewFromBits(r3Cfg, r3Bits)
			r1c.SetBit(regs.ForceR1Bit, combo&1)
			r2c.SetBit(regs.ForceR2Bit, (combo>>1)&1)
			r3c.SetBit(regs.ForceR3Bit, (combo>>2)&1)

			reverseFrameCounter(r1c, r2c, r3c, req.F1)

			sessionKeys, ok := retrieveSessionKey(r1c, r2c, r3c)
			if !ok {
				continue
			}
			for _, key := range sessionKeys {
				if checkSessionKey(key, req.F1, req.K1) {
					return key, true
				}
			}
		}
	}
	return 0, false
}

// clockWithR4 advances the three symbolic output registers under R4's
// control and clocks r4 itself by one cycle, mirroring
// a52.Cipher.clockMajority's conditional-clocking rule exactly (R4's
// own clocking is unconditional; R1/R2/R3 clock only when their
// corresponding clocking-control bit agrees with the majority of all
// three).
func clockWithR4(r1, r2, r3 *symbolic.Register, r4 *lfsr.LFSR) {
	bits := r4.GetClockBits()
	m := lfsr.Majority(bits[0], bits[1], bits[2])
	if bits[0] == m {
		r1.Clock()
	}
	if bits[1] == m {
		r2.Clock()
	}
	if bits[2] == m {
		r3.Clock()
	}
	r4.Clock(0)
}

// solutionToBits unpacks a 64-bit solved assignment (column j = cell j
// counting from r1Start/r2Start/r3Start) into the three registers'
// physical-indexed bit vectors.
func solutionToBits(values uint64) (r1, r2, r3 bitvec.Bits) {
	r1 = bitvec.New(regs.R1Size)
	for v := 0; v < regs.R1Size; v++ {
		r1.Set(v, int(values>>uint(r1Start+v))&1)
	}
	r2 = bitvec.New(regs.R2Size)
	for v := 0; v < regs.R2Size; v++ {
		r2.Set(v, int(values>>uint(r2Start+v))&1)
	}
	r3 = bitvec.New(regs.R3Size)
	for v := 0; v < regs.R3Size; v++ {
		r3.Set(v, int(values>>uint(r3Start+v))&1)
	}
	return r1, r2, r3
}

// reverseFrameCounter undoes the 22-cycle frame mix in place on r1/r2/r3,
// real (non-symbolic) registers, at this point holding the
// post-force-bit-correction, post-frame-mix state a solved candidate
// predicts. Each frame-counter bit is undone by one ReverseClock, last
// mixed-in bit first.
func reverseFrameCounter(r1, r2, r3 *lfsr.LFSR, frameCounter uint32) {
	f := bitvec.FromUint64(regs.FrameCounterSize, uint64(frameCounter))
	for i := 0; i < regs.FrameCounterSize; i++ {
		bit := f.Get(i)
		r1.ReverseClock(bit, r1ReverseTaps)
		r2.ReverseClock(bit, r2ReverseTaps)
		r3.ReverseClock(bit, r3ReverseTaps)
	}
}

// retrieveSessionKey solves the 64x64 session-key system built from the
// derived key-mix coupling (regs's A52R1/R2/R3 configs, via
// symbolic.DeriveKeyCoupling), returning every session key consistent
// with r1/r2/r3's current (post-key-mix, pre-frame-mix) state.
func retrieveSessionKey(r1, r2, r3 *lfsr.LFSR) ([]uint64, bool) {
	mat := gf2.New(regs.KeySize)
	addSessionKeyRows(mat, r1.Bits(), r1KeyCoupling)
	addSessionKeyRows(mat, r2.Bits(), r2KeyCoupling)
	addSessionKeyRows(mat, r3.Bits(), r3KeyCoupling)

	solutions, ok := mat.Solve()
	if !ok {
		return nil, false
	}

	keys := make([]uint64, len(solutions))
	for i, sol := range solutions {
		key := bitvec.New(regs.KeySize)
		for j := 0; j < regs.KeySize; j++ {
			key.Set(j, int(sol.Values>>uint(j))&1)
		}
		keys[i] = key.Uint64()
	}
	return keys, true
}

func addSessionKeyRows(mat *gf2.Matrix, reg bitvec.Bits, coupling []uint32) {
	for v := 0; v < reg.Len(); v++ {
		mat.AddRow(uint64(coupling[v]), reg.Get(v))
	}
}

// checkSessionKey is CheckSessionKey's unexported core: it re-derives a
// fresh A5/2 run from key and frameCounter, not from any recovered
// register state, and compares its send keystream against want.
func checkSessionKey(key uint64, frameCounter uint32, want bitvec.Bits) bool {
	c, err := a52.New(key, frameCounter)
	if err != nil {
		return false
	}
	send, _ := c.KeyStream()
	return subtle.ConstantTimeCompare(send.Bytes(), want.Bytes()) == 1
}

// CheckSessionKey reports whether key, run under frameCounter, produces
// want as its send keystream, the same confirmation tryCandidate uses
// internally, exported for callers that have recovered a key some other
// way (e.g. by resuming a partial search) and want to confirm it.
func CheckSessionKey(key uint64, frameCounter uint32, want bitvec.Bits) bool {
	return checkSessionKey(key, frameCounter, want)
}

func validate(req Request) error {
	if req.K1.Len() != regs.StreamKeySize {
		return a5.NewDomainError("k1", fmt.Sprintf("has %d bits, want %d", req.K1.Len(), regs.StreamKeySize))
	}
	if req.K2.Len() != regs.StreamKeySize {
		return a5.NewDomainError("k2", fmt.Sprintf("has %d bits, want %d", req.K2.Len(), regs.StreamKeySize))
	}
	if err := a5.CheckRange("frame_counter_1", uint64(req.F1), regs.FrameCounterSize); err != nil {
		return err
	}
	if err := a5.CheckRange("frame_counter_2", uint64(req.F2), regs.FrameCounterSize); err != nil {
		return err
	}
	if req.F1^req.F2 != regs.FrameCounterDifference {
		return a5.NewDomainError("frame_counter_1,frame_counter_2",
			fmt.Sprintf("f1 xor f2 = %#x, want %#x", req.F1^req.F2, uint32(regs.FrameCounterDifference)))
	}
	return nil
}
