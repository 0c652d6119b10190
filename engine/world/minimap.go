package world

import (
	"strings"
)

// Minimap draws the boards on their grid positions: '@' for the current
// board, '#' for visited boards and '.' for the rest.
func Minimap(g *Graph, p *PlayerState) string {
	ids := g.BoardIDs()
	if len(ids) == 0 {
		return ""
	}
	minX, minY := 1<<31-1, 1<<31-1
	maxX, maxY := -minX, -minY
	for _, id := range ids {
		gp := g.boards[id].GridPosition
		minX, maxX = min(minX, gp.X), max(maxX, gp.X)
		minY, maxY = min(minY, gp.Y), max(maxY, gp.Y)
	}

	w, h := maxX-minX+1, maxY-minY+1
	cells := make([][]byte, h)
	for y := range cells {
		cells[y] = []byte(strings.Repeat(" ", w))
	}
	for _, id := range ids {
		gp := g.boards[id].GridPosition
		mark := byte('.')
		switch {
		case id == p.Current():
			mark = '@'
		case p.HasVisited(id):
			mark = '#'
		}
		cells[gp.Y-minY][gp.X-minX] = mark
	}

	lines := make([]string, h)
	for y, row := range cells {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
