package main

import (
	"strings"

	"hexagent/game"

	"github.com/muesli/termenv"
)

// render draws the board with red and blue stones in their colors.
func render(out *termenv.Output, board *game.Board) string {
	red := out.String("R").Foreground(termenv.ANSIBrightRed).Bold().String()
	blue := out.String("B").Foreground(termenv.ANSIBrightBlue).Bold().String()
	empty := out.String(".").Faint().String()

	var sb strings.Builder
	for _, r := range board.String() {
		switch r {
		case 'R':
			sb.WriteString(red)
		case 'B':
			sb.WriteString(blue)
		case '.':
			sb.WriteString(empty)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
