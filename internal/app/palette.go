package app

import (
	"fmt"
	"image/color"
	"strings"
)

var clusterPalette = []string{
	"#8b5cf6", "#06b6d4", "#22c55e", "#f59e0b", "#ef4444",
	"#14b8a6", "#eab308", "#3b82f6", "#d946ef", "#f97316",
}

var fallbackColor = color.NRGBA{R: 0x71, G: 0x71, B: 0x7a, A: 0xff}

// clusterColor returns the marker color for a cluster id. Ids beyond the
// palette wrap around.
func clusterColor(id int) color.Color {
	if id < 0 || len(clusterPalette) == 0 {
		return fallbackColor
	}
	c, err := parseHexColor(clusterPalette[id%len(clusterPalette)])
	if err != nil {
		return fallbackColor
	}
	return c
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
