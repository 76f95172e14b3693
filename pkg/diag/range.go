package diag

// Ranger wraps the Range method.
type Ranger interface {
	// Range returns the range associated with the value.
	Range() Ranging
}

// Ranging represents a range [From, To) within a source text. Structs can
// embed Ranging to satisfy the Ranger interface.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// PointRanging returns a Ranging that covers the single byte at p.
func PointRanging(p int) Ranging {
	return Ranging{p, p + 1}
}

// UnknownRanging is a Ranging for errors whose position is not known.
var UnknownRanging = Ranging{-1, -1}
