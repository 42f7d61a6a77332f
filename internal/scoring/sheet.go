package scoring

// Sheet holds the filled categories of one player. A missing key is an
// unfilled category.
type Sheet map[Category]int

// Filled reports whether c already holds a score.
func (s Sheet) Filled(c Category) bool {
	_, ok := s[c]
	return ok
}

// Complete reports whether all thirteen categories are filled.
func (s Sheet) Complete() bool {
	for _, c := range Categories() {
		if !s.Filled(c) {
			return false
		}
	}
	return true
}

// UpperSum sums the face value categories, unfilled ones counting as 0.
func (s Sheet) UpperSum() int {
	sum := 0
	for c := Ones; c <= Sixes; c++ {
		sum += s[c]
	}
	return sum
}

// Bonus returns UpperBonus when the upper section reaches the threshold.
func (s Sheet) Bonus() int {
	if s.UpperSum() >= UpperBonusThreshold {
		return UpperBonus
	}
	return 0
}

// Total is the raw sum of every filled category plus the upper bonus. It
// is always recomputed from the sheet, never accumulated.
func (s Sheet) Total() int {
	sum := 0
	for _, v := range s {
		sum += v
	}
	return sum + s.Bonus()
}

// ByID returns the sheet keyed by wire identifiers.
func (s Sheet) ByID() map[string]int {
	out := make(map[string]int, len(s))
	for c, v := range s {
		if id := c.ID(); id != "" {
			out[id] = v
		}
	}
	return out
}
