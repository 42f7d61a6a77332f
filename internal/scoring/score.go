package scoring

const (
	// DiceCount is the number of dice in a roll.
	DiceCount = 5

	// UpperBonusThreshold is the upper section sum that earns UpperBonus.
	UpperBonusThreshold = 63
	// UpperBonus is added on top of the raw sum once the threshold is met.
	UpperBonus = 35

	fiveOfAKindPoints   = 50
	fullHousePoints     = 25
	smallStraightPoints = 30
	largeStraightPoints = 40
)

// Dice is one roll. A zero face means the die has not been rolled yet.
type Dice [DiceCount]int

// Rolled reports whether every die shows a face in 1..6.
func (d Dice) Rolled() bool {
	for _, v := range d {
		if v < 1 || v > 6 {
			return false
		}
	}
	return true
}

// Sum returns the sum of all faces.
func (d Dice) Sum() int {
	sum := 0
	for _, v := range d {
		sum += v
	}
	return sum
}

// counts returns occurrences per face, indexed 1..6.
func (d Dice) counts() [7]int {
	var c [7]int
	for _, v := range d {
		c[v]++
	}
	return c
}

// Score returns the points d is worth in category c.
//
// Score is total: an unrolled die (0) or any face outside 1..6 makes every
// category worth 0, as does an invalid category.
func Score(c Category, d Dice) int {
	if !d.Rolled() || !c.Valid() {
		return 0
	}
	counts := d.counts()

	if c.Upper() {
		face := c.Face()
		return face * counts[face]
	}

	switch c {
	case FiveOfAKind:
		if maxCount(counts) == 5 {
			return fiveOfAKindPoints
		}
	case Chance:
		return d.Sum()
	case FullHouse:
		if (hasCount(counts, 2) && hasCount(counts, 3)) || hasCount(counts, 5) {
			return fullHousePoints
		}
	case SmallStraight:
		if longestRun(counts) >= 4 {
			return smallStraightPoints
		}
	case LargeStraight:
		if longestRun(counts) == 5 {
			return largeStraightPoints
		}
	case ThreeOfAKind:
		if maxCount(counts) >= 3 {
			return d.Sum()
		}
	case FourOfAKind:
		if maxCount(counts) >= 4 {
			return d.Sum()
		}
	}
	return 0
}

// ScoreID scores d for a wire identifier. Unknown identifiers score 0.
func ScoreID(id string, d Dice) int {
	c, err := ParseCategory(id)
	if err != nil {
		return 0
	}
	return Score(c, d)
}

func maxCount(counts [7]int) int {
	m := 0
	for face := 1; face <= 6; face++ {
		m = max(m, counts[face])
	}
	return m
}

func hasCount(counts [7]int, n int) bool {
	for face := 1; face <= 6; face++ {
		if counts[face] == n {
			return true
		}
	}
	return false
}

// longestRun returns the length of the longest run of consecutive faces
// present in the roll.
func longestRun(counts [7]int) int {
	best, run := 0, 0
	for face := 1; face <= 6; face++ {
		if counts[face] == 0 {
			run = 0
			continue
		}
		run++
		best = max(best, run)
	}
	return best
}
