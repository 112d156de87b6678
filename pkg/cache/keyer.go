package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data. Pipeline payloads are
// addressed by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digest builds "<kind>:<sha256>" over the JSON encoding of parts. Every
// part is a plain struct or string, so encoding cannot fail.
func digest(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// LayoutKey addresses the layout of a graph payload.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// CellsKey addresses the cells serialized from a layout.
	CellsKey(graphHash string, opts CellsKeyOpts) string
	// TreeKey addresses the list tree of a graph payload.
	TreeKey(graphHash string, opts TreeKeyOpts) string
}

// LayoutKeyOpts are the layout settings that change the result.
type LayoutKeyOpts struct {
	BaseX             float64 `json:"base_x"`
	BaseY             float64 `json:"base_y"`
	HorizontalSpacing float64 `json:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing"`
	BranchOffset      float64 `json:"branch_offset"`
}

// CellsKeyOpts are the serializer settings that change the result.
type CellsKeyOpts struct {
	Layout LayoutKeyOpts `json:"layout"`
	Mode   string        `json:"mode"`
}

// TreeKeyOpts are the tree settings that change the result.
type TreeKeyOpts struct {
	Labels       map[string]string `json:"labels,omitempty"`
	Subprocesses bool              `json:"subprocesses"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return digest("layout", graphHash, opts)
}

// CellsKey implements Keyer.
func (DefaultKeyer) CellsKey(graphHash string, opts CellsKeyOpts) string {
	return digest("cells", graphHash, opts)
}

// TreeKey implements Keyer.
func (DefaultKeyer) TreeKey(graphHash string, opts TreeKeyOpts) string {
	return digest("tree", graphHash, opts)
}

// scopedKeyer prefixes every key of an inner Keyer.
type scopedKeyer struct {
	Keyer
	prefix string
}

// NewScopedKeyer prefixes the keys of inner, or of the default keyer when
// inner is nil, so several tenants can share one backend:
//
//	k := cache.NewScopedKeyer(nil, "tenant-a:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return scopedKeyer{Keyer: inner, prefix: prefix}
}

func (k scopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.Keyer.LayoutKey(graphHash, opts)
}

func (k scopedKeyer) CellsKey(graphHash string, opts CellsKeyOpts) string {
	return k.prefix + k.Keyer.CellsKey(graphHash, opts)
}

func (k scopedKeyer) TreeKey(graphHash string, opts TreeKeyOpts) string {
	return k.prefix + k.Keyer.TreeKey(graphHash, opts)
}
