package layout

// Config holds the spacing constants of the layout, in canvas units.
type Config struct {
	// BaseX and BaseY place the start event's top-left corner.
	BaseX float64 `toml:"base_x" json:"base_x,omitempty"`
	BaseY float64 `toml:"base_y" json:"base_y,omitempty"`
	// HorizontalSpacing is the gap between a node and its successor.
	HorizontalSpacing float64 `toml:"horizontal_spacing" json:"horizontal_spacing,omitempty"`
	// VerticalSpacing is the gap between stacked sibling branches.
	VerticalSpacing float64 `toml:"vertical_spacing" json:"vertical_spacing,omitempty"`
	// BranchOffset replaces HorizontalSpacing after exclusive and
	// conditional parallel gateways, leaving room for condition labels.
	BranchOffset float64 `toml:"branch_offset" json:"branch_offset,omitempty"`
}

// DefaultConfig returns the canvas defaults.
func DefaultConfig() Config {
	return Config{
		BaseX:             40,
		BaseY:             134,
		HorizontalSpacing: 46,
		VerticalSpacing:   46,
		BranchOffset:      168,
	}
}

// Option customizes a layout computation.
type Option func(*Config)

// WithConfig replaces the whole configuration. Zero fields fall back to
// their defaults.
func WithConfig(c Config) Option {
	return func(dst *Config) {
		def := DefaultConfig()
		*dst = Config{
			BaseX:             orDefault(c.BaseX, def.BaseX),
			BaseY:             orDefault(c.BaseY, def.BaseY),
			HorizontalSpacing: orDefault(c.HorizontalSpacing, def.HorizontalSpacing),
			VerticalSpacing:   orDefault(c.VerticalSpacing, def.VerticalSpacing),
			BranchOffset:      orDefault(c.BranchOffset, def.BranchOffset),
		}
	}
}

// WithOrigin moves the start event.
func WithOrigin(x, y float64) Option {
	return func(c *Config) { c.BaseX, c.BaseY = x, y }
}

// WithSpacing sets the horizontal and vertical gaps.
func WithSpacing(horizontal, vertical float64) Option {
	return func(c *Config) { c.HorizontalSpacing, c.VerticalSpacing = horizontal, vertical }
}

// WithBranchOffset sets the gap after conditional gateways.
func WithBranchOffset(offset float64) Option {
	return func(c *Config) { c.BranchOffset = offset }
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
