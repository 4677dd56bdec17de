package types

import "testing"

func TestIntegerTypeName(t *testing.T) {
	u := NewIntegerType(8, false)
	if u.Name() != "unsigned<8>" {
		t.Errorf("Name() = %q, want unsigned<8>", u.Name())
	}
	s := NewIntegerType(16, true)
	if s.Name() != "signed<16>" {
		t.Errorf("Name() = %q, want signed<16>", s.Name())
	}
}

func TestArrayTypeWidthAndDimensions(t *testing.T) {
	base := NewIntegerType(8, false)
	arr := NewArrayType(base, 4)
	if arr.Width() != 32 {
		t.Errorf("Width() = %d, want 32", arr.Width())
	}
	if got := arr.Dimensions(); len(got) != 1 || got[0] != 4 {
		t.Errorf("Dimensions() = %v, want [4]", got)
	}
}

func TestStreamWidthIsElementWidth(t *testing.T) {
	base := NewIntegerType(8, false)
	s := NewStreamType(base, false, 100, -1, -1)
	if s.Width() != 8 {
		t.Errorf("Width() = %d, want 8 (element width, not length*width)", s.Width())
	}
}

func TestStructureTypeMemberLookup(t *testing.T) {
	st := NewStructureType("pixel", []DataStructureItem{
		{Name: "r", Type: NewIntegerType(8, false)},
		{Name: "g", Type: NewIntegerType(8, false)},
		{Name: "b", Type: NewIntegerType(8, false)},
	})
	if st.Width() != 24 {
		t.Errorf("Width() = %d, want 24", st.Width())
	}
	m, err := st.MemberType("g")
	if err != nil {
		t.Fatalf("MemberType(g): %v", err)
	}
	if !m.Equals(NewIntegerType(8, false)) {
		t.Errorf("MemberType(g) = %v, want unsigned<8>", m)
	}
	if _, err := st.MemberType("a"); err == nil {
		t.Errorf("MemberType(a) should error, pixel has no alpha member")
	}
}

func TestRAMTypeROMFlag(t *testing.T) {
	ram := NewRAMType(NewIntegerType(32, false), 1024)
	rom := ram
	rom.IsROM = true
	if ram.Equals(rom) {
		t.Errorf("ram should not equal rom with otherwise identical fields")
	}
}

func TestArrayEquivalentConvertsStreamAndRAM(t *testing.T) {
	base := NewIntegerType(8, false)
	s := NewStreamType(base, false, 10, -1, -1)
	eq := ArrayEquivalent(s)
	arr, ok := eq.(ArrayType)
	if !ok || arr.Length != 10 {
		t.Errorf("ArrayEquivalent(stream) = %v, want ArrayType{Length:10}", eq)
	}
}

func TestCompatabilityScoreWidening(t *testing.T) {
	narrow := NewIntegerType(8, false)
	wide := NewIntegerType(16, false)
	if CompatabilityScore(narrow, wide) < 0 {
		t.Errorf("unsigned<8> should be compatible with unsigned<16>")
	}
	if CompatabilityScore(wide, narrow) != -1 {
		t.Errorf("unsigned<16> should not be compatible with narrower unsigned<8>")
	}
}
