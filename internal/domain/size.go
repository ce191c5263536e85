package domain

// Size is one of the four fixed garment size buckets. Stock, consumption and
// sales are tracked per bucket, never in aggregate.
type Size string

const (
	SizeP  Size = "P"
	SizeM  Size = "M"
	SizeG  Size = "G"
	SizeGG Size = "GG"
)

// Sizes lists every bucket in catalog order. Iteration over stock fields
// always goes through this slice so results stay deterministic.
var Sizes = []Size{SizeP, SizeM, SizeG, SizeGG}

// Valid reports whether s is one of the four known buckets.
func (s Size) Valid() bool {
	switch s {
	case SizeP, SizeM, SizeG, SizeGG:
		return true
	}
	return false
}

// SizeQuantities holds one integer per size bucket. The zero value means
// "no stock in any size", which matches how omitted sizes are treated by
// the reconciliation engine.
type SizeQuantities struct {
	P  int
	M  int
	G  int
	GG int
}

// Get returns the quantity for the given bucket.
func (q SizeQuantities) Get(s Size) int {
	switch s {
	case SizeP:
		return q.P
	case SizeM:
		return q.M
	case SizeG:
		return q.G
	case SizeGG:
		return q.GG
	}
	return 0
}

// Set stores the quantity for the given bucket.
func (q *SizeQuantities) Set(s Size, v int) {
	switch s {
	case SizeP:
		q.P = v
	case SizeM:
		q.M = v
	case SizeG:
		q.G = v
	case SizeGG:
		q.GG = v
	}
}

// Total sums the four buckets.
func (q SizeQuantities) Total() int {
	return q.P + q.M + q.G + q.GG
}
