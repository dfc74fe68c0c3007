package basis

// GreensKind identifies the vector field G whose curl is a Green's basis
// function. Line integrals are ∮ Gx dx + Gy dy, taken counterclockwise.
type GreensKind int

const (
	// GreensPoly is x^i y^j with G = (0, x^{i+1} y^j / (i+1)).
	GreensPoly GreensKind = iota
	// GreensRadial is z with G = h(ρ)(-y, x), h = (1 - z³) / (3ρ²).
	GreensRadial
	// GreensYZ3 is the slot x^i y^j z with i ≥ 1, G = (0, x^{i-1} y^j z³).
	GreensYZ3
	// GreensXZ3 is the slot y^j z with j ≥ 1, G = (y^{j-1} z³, 0).
	GreensXZ3
)

func (k GreensKind) String() string {
	switch k {
	case GreensPoly:
		return "poly"
	case GreensRadial:
		return "radial"
	case GreensYZ3:
		return "yz3"
	case GreensXZ3:
		return "xz3"
	default:
		return "unknown"
	}
}

// GreensKindOf returns the field kind of Green's basis slot n.
func GreensKindOf(n int) GreensKind {
	t := TermOf(n)
	switch {
	case t.C == 0:
		return GreensPoly
	case t.A == 0 && t.B == 0:
		return GreensRadial
	case t.A >= 1:
		return GreensYZ3
	default:
		return GreensXZ3
	}
}
