package game

import "fmt"

// Color labels the owner of a stone, or the side to move at a search node.
type Color int8

const (
	Neutral Color = iota
	Red
	Blue
)

// Orientation is the pair of opposite board sides a player must connect.
type Orientation int8

const (
	WestEast Orientation = iota
	NorthSouth
)

func (c Color) Opponent() Color {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return Neutral
	}
}

// Orientation returns the sides the color connects: red joins west to east,
// blue joins north to south.
func (c Color) Orientation() Orientation {
	if c == Blue {
		return NorthSouth
	}
	return WestEast
}

func (c Color) String() string {
	switch c {
	case Red:
		return "R"
	case Blue:
		return "B"
	default:
		return "N"
	}
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "R", "r", "red", "RED":
		return Red, nil
	case "B", "b", "blue", "BLUE":
		return Blue, nil
	case "N", "n", "neutral", "":
		return Neutral, nil
	}
	return Neutral, fmt.Errorf("unknown color %q", s)
}

func (o Orientation) String() string {
	if o == NorthSouth {
		return "north-south"
	}
	return "west-east"
}
