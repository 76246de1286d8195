package mathx

import "golang.org/x/exp/constraints"

// Scale8 scales v by level/256 with level+1 so that 255 is identity.
func Scale8(v, level uint8) uint8 {
	return uint8(uint16(v) * (uint16(level) + 1) >> 8)
}

// MulDiv255 returns a*b/255 with 32-bit intermediates, for 8-bit colour maths.
func MulDiv255[T constraints.Unsigned](a, b T) T {
	return T(uint32(a) * uint32(b) / 255)
}
