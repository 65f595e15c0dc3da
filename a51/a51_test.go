package a51

import (
	"math/big"
	"testing"

	"github.com/go-a5/a5gww/internal/bitvec"
	"github.com/go-a5/a5gww/regs"
)

// bigIntValue interprets bits as an unsigned integer, index 0 the most
// significant bit — the convention the known-answer constants below
// are written in.
func bigIntValue(b bitvec.Bits) *big.Int {
	v := new(big.Int)
	for i := 0; i < b.Len(); i++ {
		v.Lsh(v, 1)
		if b.Get(i) != 0 {
			v.Or(v, big.NewInt(1))
		}
	}
	return v
}

func TestKnownAnswer(t *testing.T) {
	const key = 0xEFCDAB8967452312
	const frameCounter = 0x000134

	c, err := New(key, frameCounter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	send, receive := c.KeyStream()

	wantSend, _ := new(big.Int).SetString("14D3AA960BFA0546ADB861569CA30", 16)
	wantReceive, _ := new(big.Int).SetString("093F4D68D757ED949B4CBE41B7C6B", 16)

	if got := bigIntValue(send); got.Cmp(wantSend) != 0 {
		t.Fatalf("send key = %X, want %X", got, wantSend)
	}
	if got := bigIntValue(receive); got.Cmp(wantReceive) != 0 {
		t.Fatalf("receive key = %X, want %X", got, wantReceive)
	}
	if send.Len() != regs.StreamKeySize || receive.Len() != regs.StreamKeySize {
		t.Fatalf("unexpected keystream length: send=%d receive=%d", send.Len(), receive.Len())
	}
}

func TestFrameCounterOutOfRange(t *testing.T) {
	if _, err := New(0, 1<<regs.FrameCounterSize); err == nil {
		t.Fatal("expected a DomainError for an out-of-range frame counter")
	}
}

func TestDeterministic(t *testing.T) {
	c1, err := New(0x0123456789abcdef, 42)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := New(0x0123456789abcdef, 42)
	if err != nil {
		t.Fatal(err)
	}
	s1, r1 := c1.KeyStream()
	s2, r2 := c2.KeyStream()
	if !s1.Equal(s2) || !r1.Equal(r2) {
		t.Fatal("identical key/frame counter produced different keystreams")
	}
}
