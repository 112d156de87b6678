// Package pipeline runs the flowtower stages with caching.
//
// The CLI and the HTTP API share this package so that both produce the same
// results for the same input and reuse each other's cache entries.
//
// # Stages
//
//  1. Parse: decode a pipeline tree payload into a [flow.Graph]
//  2. Layout: compute canvas positions with the layout engine
//  3. Cells: serialize the layout into render cells
//  4. Tree: build the nested list tree
//  5. Render: draw a static preview (optional)
//
// Layout, cells and tree results are cached under the hash of the raw
// payload plus the options that change them.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source: payload,
//	    Mode:   "vertical",
//	})
//	cells := result.Cells
//
// Stages can also run on their own once a graph is parsed:
//
//	g, hash, err := runner.Parse(ctx, opts)
//	l, err := runner.Layout(ctx, g, hash, opts)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/cells"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/render"
	"github.com/matzehuels/flowtower/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMode is the serialization mode used when none is given.
const DefaultMode = cells.ModeHorizontal

// DefaultScale is the PNG resolution factor.
const DefaultScale = 2.0

// MaxSourceSize bounds the payload accepted by Parse.
const MaxSourceSize = 10 << 20

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Source     []byte      `json:"-"`
	SourceName string      `json:"source_name,omitempty"`
	Format     flow.Format `json:"format,omitempty"`

	// Layout options
	Layout layout.Config `json:"layout"`

	// Cells options
	Mode string `json:"mode,omitempty"`

	// Tree options
	Labels         tree.Labels `json:"-"`
	NoSubprocesses bool        `json:"no_subprocesses,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	ShowLabels bool     `json:"show_labels,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Refresh skips cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives stage logs and parse warnings. Runner stages fall
	// back to the runner's logger when it is nil.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed pipeline graph.
	Graph *flow.Graph

	// GraphHash is the content hash of the payload.
	GraphHash string

	// Layout contains the canvas positions and ports.
	Layout graph.Layout

	// Cells contains the serialized render cells.
	Cells []graph.Cell

	// Tree contains the nested list tree.
	Tree []*graph.TreeNode

	// Artifacts contains rendered previews keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	FlowCount  int
	TreeSteps  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	CellsTime  time.Duration
	TreeTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	CellsHit  bool
	TreeHit   bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that a serialization mode is valid.
func ValidateMode(mode string) error {
	_, err := cells.ParseMode(mode)
	return err
}

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	_, err := render.ParseFormat(format)
	return err
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLayout checks that spacing constants are not negative.
func ValidateLayout(c layout.Config) error {
	for name, v := range map[string]float64{
		"horizontal_spacing": c.HorizontalSpacing,
		"vertical_spacing":   c.VerticalSpacing,
		"branch_offset":      c.BranchOffset,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative (got %v)", name, v)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForCells(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the payload and its format.
func (o *Options) ValidateForParse() error {
	if len(o.Source) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "pipeline tree payload is required")
	}
	if len(o.Source) > MaxSourceSize {
		return errors.New(errors.ErrCodeInvalidInput, "pipeline tree payload too large (max %d bytes)", MaxSourceSize)
	}
	switch o.Format {
	case flow.FormatAuto, flow.FormatJSON, flow.FormatYAML:
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid input format: %q (must be one of: json, yaml)", o.Format)
	}
	return nil
}

// SetLayoutDefaults fills zero spacing constants from layout.DefaultConfig.
func (o *Options) SetLayoutDefaults() {
	def := layout.DefaultConfig()
	if o.Layout.BaseX == 0 {
		o.Layout.BaseX = def.BaseX
	}
	if o.Layout.BaseY == 0 {
		o.Layout.BaseY = def.BaseY
	}
	if o.Layout.HorizontalSpacing == 0 {
		o.Layout.HorizontalSpacing = def.HorizontalSpacing
	}
	if o.Layout.VerticalSpacing == 0 {
		o.Layout.VerticalSpacing = def.VerticalSpacing
	}
	if o.Layout.BranchOffset == 0 {
		o.Layout.BranchOffset = def.BranchOffset
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if err := ValidateLayout(o.Layout); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return nil
}

// ValidateForCells validates and sets defaults for cell serialization.
func (o *Options) ValidateForCells() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if o.Mode == "" {
		o.Mode = string(DefaultMode)
	}
	return ValidateMode(o.Mode)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering. An empty
// format list is valid and skips the stage.
func (o *Options) ValidateForRender() error {
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative")
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		BaseX:             o.Layout.BaseX,
		BaseY:             o.Layout.BaseY,
		HorizontalSpacing: o.Layout.HorizontalSpacing,
		VerticalSpacing:   o.Layout.VerticalSpacing,
		BranchOffset:      o.Layout.BranchOffset,
	}
}

// CellsKeyOpts returns cache key options for cell serialization.
func (o *Options) CellsKeyOpts() cache.CellsKeyOpts {
	return cache.CellsKeyOpts{Layout: o.LayoutKeyOpts(), Mode: o.Mode}
}

// TreeKeyOpts returns cache key options for tree building.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	labels := map[string]string{}
	if o.Labels.Start != "" {
		labels["start"] = o.Labels.Start
	}
	if o.Labels.End != "" {
		labels["end"] = o.Labels.End
	}
	if o.Labels.Parallel != "" {
		labels["parallel"] = o.Labels.Parallel
	}
	for k, v := range o.Labels.Gateways {
		labels[k.String()] = v
	}
	return cache.TreeKeyOpts{Labels: labels, Subprocesses: !o.NoSubprocesses}
}

// TreeOptions converts the tree settings to builder options.
func (o *Options) TreeOptions() []tree.Option {
	opts := []tree.Option{tree.WithLabels(o.Labels)}
	if o.NoSubprocesses {
		opts = append(opts, tree.WithoutSubprocesses())
	}
	return opts
}

// RenderOptions converts the render settings to render options.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Labels: o.ShowLabels, Scale: o.Scale}
}
