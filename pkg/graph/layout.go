package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Positioned Pipeline Graph
// =============================================================================

// Layout is the serialized result of a layout computation: one location per
// placed node and one line per flow.
//
// Locations appear in first-placement order. Lines appear in the graph's
// declared flow order; a line whose endpoints were never placed keeps empty
// arrows.
type Layout struct {
	Locations []Location `json:"locations"`
	Lines     []Line     `json:"lines"`
}

// Location is a placed node. X and Y are the top-left corner in canvas units.
type Location struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Type   string  `json:"type"` // visual type, e.g. "tasknode"
	Name   string  `json:"name,omitempty"`
}

// Bottom returns the y coordinate of the location's lower edge.
func (l Location) Bottom() float64 { return l.Y + l.Height }

// Right returns the x coordinate of the location's right edge.
func (l Location) Right() float64 { return l.X + l.Width }

// Overlaps reports whether two locations share any interior area.
func (l Location) Overlaps(o Location) bool {
	return l.X < o.Right() && o.X < l.Right() && l.Y < o.Bottom() && o.Y < l.Bottom()
}

// Line is a flow with its port assignment.
type Line struct {
	ID     string   `json:"id"`
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
}

// Endpoint is one end of a line: the node id and the side it attaches to.
type Endpoint struct {
	ID    string `json:"id"`
	Arrow Arrow  `json:"arrow"`
}

// Location returns the location of node id.
func (l *Layout) Location(id string) (Location, bool) {
	for _, loc := range l.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return Location{}, false
}

// Line returns the line with the given flow id.
func (l *Layout) Line(id string) (Line, bool) {
	for _, ln := range l.Lines {
		if ln.ID == id {
			return ln, true
		}
	}
	return Line{}, false
}

// Bounds returns the smallest rectangle covering every location, as
// top-left and bottom-right corners. An empty layout returns zeros.
func (l *Layout) Bounds() (minX, minY, maxX, maxY float64) {
	for i, loc := range l.Locations {
		if i == 0 || loc.X < minX {
			minX = loc.X
		}
		if i == 0 || loc.Y < minY {
			minY = loc.Y
		}
		if i == 0 || loc.Right() > maxX {
			maxX = loc.Right()
		}
		if i == 0 || loc.Bottom() > maxY {
			maxY = loc.Bottom()
		}
	}
	return minX, minY, maxX, maxY
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every line must reference ids, and locations must have positive sizes.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	for _, loc := range l.Locations {
		if loc.ID == "" {
			return Layout{}, fmt.Errorf("layout location without id")
		}
		if loc.Width <= 0 || loc.Height <= 0 {
			return Layout{}, fmt.Errorf("location %s has non-positive size", loc.ID)
		}
	}
	for _, ln := range l.Lines {
		if ln.ID == "" {
			return Layout{}, fmt.Errorf("layout line without id")
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
