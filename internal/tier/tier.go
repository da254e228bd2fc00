package tier

// Tier is a user's subscription level. It controls rate-limit budgets and
// which fundamentals fields are visible.
type Tier string

const (
	Free Tier = "free"
	Pro  Tier = "pro"
)

// Parse returns the tier for s, defaulting to Free for anything unknown.
func Parse(s string) Tier {
	if s == string(Pro) {
		return Pro
	}
	return Free
}

// Valid reports whether s names a known tier.
func Valid(s string) bool {
	return s == string(Free) || s == string(Pro)
}
