package chart

import (
	"fmt"
	"math"
	"strings"
)

// RenderSVG draws the pie as a standalone SVG document: one wedge path per
// slice, white separators, readable-slice percentage labels, and a center
// total. An empty distribution renders the empty-state message instead.
func RenderSVG(pie Pie) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		pie.Size, pie.Size, pie.Size, pie.Size)
	b.WriteString("\n")

	if pie.Empty {
		fmt.Fprintf(&b,
			`  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="18" fill="#636E72">%s</text>`,
			pie.CenterX, pie.CenterY, EmptyMessage)
		b.WriteString("\n</svg>\n")
		return b.String()
	}

	for _, s := range pie.Slices {
		if s.EndAngle-s.StartAngle >= 2*math.Pi-1e-9 {
			// A full-circle arc degenerates in SVG path syntax.
			fmt.Fprintf(&b,
				`  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#FFFFFF" stroke-width="3"/>`,
				pie.CenterX, pie.CenterY, pie.Radius, s.Category.Color)
		} else {
			fmt.Fprintf(&b,
				`  <path d="%s" fill="%s" stroke="#FFFFFF" stroke-width="3"/>`,
				wedgePath(pie, s), s.Category.Color)
		}
		b.WriteString("\n")
		if s.Label != nil {
			fmt.Fprintf(&b,
				`  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="14" font-weight="bold" fill="#FFFFFF">%s</text>`,
				s.Label.X, s.Label.Y, s.Label.Text)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b,
		`  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="24" font-weight="bold" fill="#2D3436">Total</text>`,
		pie.CenterX, pie.CenterY-15)
	b.WriteString("\n")
	fmt.Fprintf(&b,
		`  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="18" fill="#636E72">%d done</text>`,
		pie.CenterX, pie.CenterY+10, pie.Total)
	b.WriteString("\n</svg>\n")
	return b.String()
}

// wedgePath builds the SVG path of one slice: center, arc start, arc, close.
func wedgePath(pie Pie, s Slice) string {
	startX := pie.CenterX + math.Cos(s.StartAngle)*pie.Radius
	startY := pie.CenterY + math.Sin(s.StartAngle)*pie.Radius
	endX := pie.CenterX + math.Cos(s.EndAngle)*pie.Radius
	endY := pie.CenterY + math.Sin(s.EndAngle)*pie.Radius

	largeArc := 0
	if s.EndAngle-s.StartAngle > math.Pi {
		largeArc = 1
	}

	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		pie.CenterX, pie.CenterY, startX, startY, pie.Radius, pie.Radius, largeArc, endX, endY)
}
