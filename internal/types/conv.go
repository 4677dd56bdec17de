package types

// ArrayEquivalent converts a stream/stream2d/RAM/ROM type to the closest
// array type with the same element type and outer length, so that e.g. a
// RAM and an array of the same base type can be compared for operator
// overload resolution. Plain arrays and scalars pass through unchanged.
func ArrayEquivalent(original DataType) DataType {
	switch t := original.(type) {
	case StreamType:
		return NewArrayType(t.Base, t.Length)
	case RAMType:
		return NewArrayType(t.Base, t.Length)
	default:
		return original
	}
}

// UltimateBase walks BaseType repeatedly until it reaches a type with none,
// returning that innermost scalar type.
func UltimateBase(t DataType) DataType {
	for {
		base, err := t.BaseType()
		if err != nil {
			return t
		}
		t = base
	}
}

// CompatabilityScore reports how well passedArgument can stand in for
// argumentType in an operator or call, for overload resolution: 0 for an
// exact match, a positive integer (lower is better) for allowed implicit
// conversions, or -1 if the two types are incompatible. Callers must have
// already applied ArrayEquivalent to passedArgument.
func CompatabilityScore(passedArgument, argumentType DataType) int {
	if passedArgument.Equals(argumentType) {
		return 0
	}
	pInt, pOK := passedArgument.(IntegerType)
	aInt, aOK := argumentType.(IntegerType)
	if pOK && aOK {
		// Same signedness, narrower-or-equal width: a zero/sign-extension,
		// scored by how much padding is required.
		if pInt.Signed == aInt.Signed {
			if pInt.Width_ <= aInt.Width_ {
				return aInt.Width_ - pInt.Width_ + 1
			}
			return -1
		}
		// Unsigned passed into a signed parameter needs an extra guard bit
		// but is otherwise representable; penalize more heavily.
		if !pInt.Signed && aInt.Signed && pInt.Width_ < aInt.Width_ {
			return (aInt.Width_ - pInt.Width_) + 10
		}
		return -1
	}
	pArr, pOK := passedArgument.(ArrayType)
	aArr, aOK := argumentType.(ArrayType)
	if pOK && aOK && pArr.Length == aArr.Length {
		inner := CompatabilityScore(pArr.Base, aArr.Base)
		if inner < 0 {
			return -1
		}
		return inner
	}
	return -1
}
