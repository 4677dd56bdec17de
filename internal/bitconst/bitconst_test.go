package bitconst

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elasticc/hls/internal/operations"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		lit  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"0x1F", 31},
		{"0b101", 5},
		{"077", 63},
		{"-3", -3},
	}
	for _, c := range cases {
		got, err := Parse(c.lit)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.lit, err)
		}
		if got.IntVal() != c.want {
			t.Errorf("Parse(%q).IntVal() = %d, want %d", c.lit, got.IntVal(), c.want)
		}
	}
}

func TestCastIdempotent(t *testing.T) {
	c := FromInt(5)
	width := c.Width()
	once := c.Cast(width, c.Signed)
	twice := once.Cast(width, once.Signed)
	if once.IntVal() != twice.IntVal() || once.Width() != twice.Width() {
		t.Errorf("Cast not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestAddIdentity(t *testing.T) {
	a := FromInt(17)
	sum := PerformConstOperation([]Const{a, FromInt(0)}, operations.ADD)
	if sum.IntVal() != a.IntVal() {
		t.Errorf("add(a,0) = %d, want %d", sum.IntVal(), a.IntVal())
	}
}

func TestSubSelfIsZero(t *testing.T) {
	a := FromInt(123)
	diff := PerformConstOperation([]Const{a, a}, operations.SUB)
	diff.Trim()
	for _, b := range diff.Bits {
		if b {
			t.Fatalf("sub(a,a) has a set bit: %v", diff.Bits)
		}
	}
}

func TestMultiplyMatchesMath(t *testing.T) {
	a, b := FromInt(13), FromInt(7)
	got := PerformConstOperation([]Const{a, b}, operations.MUL)
	if got.IntVal() != 91 {
		t.Errorf("13*7 = %d, want 91", got.IntVal())
	}
}

func TestSignedUnsignedComparison(t *testing.T) {
	neg := FromInt(-5)
	pos := FromIntWidth(3, 8)
	lt := PerformConstOperation([]Const{neg, pos}, operations.LT)
	if lt.IntVal() != 1 {
		t.Errorf("-5 < 3 should be true")
	}
}

func TestLogicalOperatorsNotBuggy(t *testing.T) {
	// Regression test for the original's B_LAND/B_LOR copy-paste bug
	// (spec 9): AND must differ from OR when operands disagree.
	t1, f1 := FromInt(1), FromInt(0)
	or := Logical([]Const{t1, f1}, operations.LOR)
	and := Logical([]Const{t1, f1}, operations.LAND)
	if or.IntVal() != 1 {
		t.Errorf("true||false = %d, want 1", or.IntVal())
	}
	if and.IntVal() != 0 {
		t.Errorf("true&&false = %d, want 0 (not the OR-bug value)", and.IntVal())
	}
}

func TestAddExactBits(t *testing.T) {
	got := PerformConstOperation([]Const{FromIntWidth(2, 4), FromIntWidth(3, 4)}, operations.ADD)
	want := FromIntWidth(5, 5)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("add(2,3) mismatch (-want +got):\n%s", diff)
	}
}

func TestShiftWidths(t *testing.T) {
	v := FromIntWidth(1, 4)
	shl := PerformConstOperation([]Const{v, FromInt(2)}, operations.SHL)
	if shl.IntVal() != 4 {
		t.Errorf("1<<2 = %d, want 4", shl.IntVal())
	}
	shr := PerformConstOperation([]Const{FromIntWidth(8, 5), FromInt(2)}, operations.SHR)
	if shr.IntVal() != 2 {
		t.Errorf("8>>2 = %d, want 2", shr.IntVal())
	}
}
