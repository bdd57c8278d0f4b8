package generation

// Value is a nullable generation quantity. A missing value is not the same
// thing as zero generation, so zero is never used as a sentinel.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some wraps a known quantity.
func Some(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Missing is the explicit no-data marker.
func Missing() Value {
	return Value{}
}
