// internal/game/tile.go
package game

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
)

// Color is one of the four tile colors. The declaration order is the sort order.
type Color int

const (
	Red Color = iota
	Black
	Blue
	Orange
)

// Colors lists every color in sort order.
var Colors = [...]Color{Red, Black, Blue, Orange}

var colorNames = [...]string{"Red", "Black", "Blue", "Orange"}

// Tile number bounds and deck size.
const (
	MinNumber = 1
	MaxNumber = 13
	DeckSize  = len(Colors) * MaxNumber
)

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// Valid reports whether c is one of the four known colors.
func (c Color) Valid() bool {
	return c >= Red && c <= Orange
}

// ParseColor converts a wire name ("Red", "Black", ...) into a Color.
func ParseColor(s string) (Color, error) {
	for i, name := range colorNames {
		if name == s {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// MarshalText encodes the color by name so it can be used as JSON value and map key.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Tile is an immutable value. Two tiles are equal when both fields match.
type Tile struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

func (t Tile) String() string {
	return fmt.Sprintf("[%s %d]", t.Color, t.Number)
}

// Valid reports whether the tile exists in a standard deck.
func (t Tile) Valid() bool {
	return t.Color.Valid() && t.Number >= MinNumber && t.Number <= MaxNumber
}

// CompareTiles orders tiles by color, then by number.
func CompareTiles(a, b Tile) int {
	if c := cmp.Compare(a.Color, b.Color); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}

// SortTiles sorts in place using CompareTiles.
func SortTiles(tiles []Tile) {
	slices.SortFunc(tiles, CompareTiles)
}

// NewDeck returns the 52 tiles of a deck in sorted order.
func NewDeck() []Tile {
	deck := make([]Tile, 0, DeckSize)
	for _, c := range Colors {
		for n := MinNumber; n <= MaxNumber; n++ {
			deck = append(deck, Tile{Number: n, Color: c})
		}
	}
	return deck
}

// shuffleDeck is a uniform Fisher-Yates shuffle driven by rng.
func shuffleDeck(rng *rand.Rand, deck []Tile) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
