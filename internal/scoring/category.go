// Package scoring implements the score sheet rules for a five-dice game.
//
// The thirteen categories form a closed set. Wire identifiers ("1".."6",
// "kn", "ch", "fh", "ks", "gs", "3k", "4k") are interpreted only by
// ParseCategory; everything else works with the Category enum.
package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one of the thirteen scoring slots on a sheet.
type Category int

const (
	CategoryUnspecified Category = iota
	Ones
	Twos
	Threes
	Fours
	Fives
	Sixes
	FiveOfAKind
	Chance
	FullHouse
	SmallStraight
	LargeStraight
	ThreeOfAKind
	FourOfAKind
)

// ErrUnknownCategory indicates an identifier that names no category.
var ErrUnknownCategory = errors.New("unknown category")

var categoryIDs = map[Category]string{
	Ones:          "1",
	Twos:          "2",
	Threes:        "3",
	Fours:         "4",
	Fives:         "5",
	Sixes:         "6",
	FiveOfAKind:   "kn",
	Chance:        "ch",
	FullHouse:     "fh",
	SmallStraight: "ks",
	LargeStraight: "gs",
	ThreeOfAKind:  "3k",
	FourOfAKind:   "4k",
}

var categoriesByID = func() map[string]Category {
	out := make(map[string]Category, len(categoryIDs))
	for c, id := range categoryIDs {
		out[id] = c
	}
	return out
}()

// Categories returns every category in sheet order, upper section first.
func Categories() []Category {
	return []Category{
		Ones, Twos, Threes, Fours, Fives, Sixes,
		ThreeOfAKind, FourOfAKind, FullHouse, SmallStraight, LargeStraight, FiveOfAKind, Chance,
	}
}

// ParseCategory maps a wire identifier to its category. Identifiers are
// matched case-insensitively after trimming spaces.
func ParseCategory(id string) (Category, error) {
	c, ok := categoriesByID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return CategoryUnspecified, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return c, nil
}

// ID returns the wire identifier, or "" for CategoryUnspecified.
func (c Category) ID() string {
	return categoryIDs[c]
}

// Valid reports whether c is one of the thirteen categories.
func (c Category) Valid() bool {
	_, ok := categoryIDs[c]
	return ok
}

// Upper reports whether c belongs to the upper (face value) section.
func (c Category) Upper() bool {
	return c >= Ones && c <= Sixes
}

// Face returns the face value scored by an upper category, 0 otherwise.
func (c Category) Face() int {
	if !c.Upper() {
		return 0
	}
	return int(c-Ones) + 1
}

func (c Category) String() string {
	switch c {
	case Ones:
		return "Ones"
	case Twos:
		return "Twos"
	case Threes:
		return "Threes"
	case Fours:
		return "Fours"
	case Fives:
		return "Fives"
	case Sixes:
		return "Sixes"
	case FiveOfAKind:
		return "Five of a kind"
	case Chance:
		return "Chance"
	case FullHouse:
		return "Full house"
	case SmallStraight:
		return "Small straight"
	case LargeStraight:
		return "Large straight"
	case ThreeOfAKind:
		return "Three of a kind"
	case FourOfAKind:
		return "Four of a kind"
	default:
		return "Unspecified"
	}
}
