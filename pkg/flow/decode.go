package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowtower/pkg/errors"
)

// Format selects the document encoding accepted by [Decode].
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath returns the format implied by a file extension, or
// FormatAuto when the extension is not recognized.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// StringList is a list of ids that also accepts a bare string (or null) in
// the payload. Older pipeline trees spell single-valued incoming/outgoing
// fields as a plain string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = single(one)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = single(value.Value)
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = many
		return nil
	}
	return fmt.Errorf("line %d: expected string or list of strings", value.Line)
}

func single(v string) StringList {
	if v == "" {
		return nil
	}
	return StringList{v}
}

// Raw payload shapes. Id-keyed objects are decoded into ordered maps so
// declaration order survives decoding.
type (
	rawTree struct {
		Activities *orderedmap.OrderedMap[string, rawActivity] `json:"activities" yaml:"activities"`
		Gateways   *orderedmap.OrderedMap[string, rawGateway]  `json:"gateways" yaml:"gateways"`
		Flows      *orderedmap.OrderedMap[string, rawFlow]     `json:"flows" yaml:"flows"`
		StartEvent *rawEvent                                   `json:"start_event" yaml:"start_event"`
		EndEvent   *rawEvent                                   `json:"end_event" yaml:"end_event"`
	}

	rawEvent struct {
		ID       string     `json:"id" yaml:"id"`
		Name     string     `json:"name" yaml:"name"`
		Type     string     `json:"type" yaml:"type"`
		Incoming StringList `json:"incoming" yaml:"incoming"`
		Outgoing StringList `json:"outgoing" yaml:"outgoing"`
	}

	rawActivity struct {
		ID        string        `json:"id" yaml:"id"`
		Name      string        `json:"name" yaml:"name"`
		Type      string        `json:"type" yaml:"type"`
		Incoming  StringList    `json:"incoming" yaml:"incoming"`
		Outgoing  StringList    `json:"outgoing" yaml:"outgoing"`
		Component *rawComponent `json:"component" yaml:"component"`
		Pipeline  *rawTree      `json:"pipeline" yaml:"pipeline"`
	}

	rawComponent struct {
		Code string `json:"code" yaml:"code"`
		Data *struct {
			Subprocess *struct {
				Value *struct {
					Pipeline *rawTree `json:"pipeline" yaml:"pipeline"`
				} `json:"value" yaml:"value"`
			} `json:"subprocess" yaml:"subprocess"`
		} `json:"data" yaml:"data"`
	}

	rawGateway struct {
		ID                string                                       `json:"id" yaml:"id"`
		Name              string                                       `json:"name" yaml:"name"`
		Type              string                                       `json:"type" yaml:"type"`
		Incoming          StringList                                   `json:"incoming" yaml:"incoming"`
		Outgoing          StringList                                   `json:"outgoing" yaml:"outgoing"`
		Conditions        *orderedmap.OrderedMap[string, rawCondition] `json:"conditions" yaml:"conditions"`
		DefaultCondition  *rawCondition                                `json:"default_condition" yaml:"default_condition"`
		ConvergeGatewayID string                                       `json:"converge_gateway_id" yaml:"converge_gateway_id"`
	}

	rawCondition struct {
		FlowID   string `json:"flow_id" yaml:"flow_id"`
		Name     string `json:"name" yaml:"name"`
		Evaluate string `json:"evaluate" yaml:"evaluate"`
		Tag      string `json:"tag" yaml:"tag"`
	}

	rawFlow struct {
		ID        string `json:"id" yaml:"id"`
		Source    string `json:"source" yaml:"source"`
		Target    string `json:"target" yaml:"target"`
		IsDefault bool   `json:"is_default" yaml:"is_default"`
	}
)

// subPipeline returns the embedded graph of a sub-workflow activity, looking
// first at the activity itself and then inside the subprocess component.
func (a *rawActivity) subPipeline() *rawTree {
	if a.Pipeline != nil {
		return a.Pipeline
	}
	c := a.Component
	if c == nil || c.Data == nil || c.Data.Subprocess == nil || c.Data.Subprocess.Value == nil {
		return nil
	}
	return c.Data.Subprocess.Value.Pipeline
}

func (a *rawActivity) isSubWorkflow() bool {
	return a.Type == TypeSubProcess || (a.Component != nil && a.Component.Code == SubprocessComponent)
}

var gatewayKinds = map[string]NodeKind{
	TypeParallelGateway:            KindParallelGateway,
	TypeExclusiveGateway:           KindExclusiveGateway,
	TypeConditionalParallelGateway: KindConditionalParallelGateway,
	TypeConvergeGateway:            KindConvergeGateway,
}

// Parse decodes a pipeline tree, sniffing JSON versus YAML from the first
// non-space byte.
func Parse(data []byte) (*Graph, error) {
	return Decode(bytes.NewReader(data), FormatAuto)
}

// ReadFile reads and decodes a pipeline tree from disk. The format is chosen
// by extension; unknown extensions are sniffed.
func ReadFile(path string) (*Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// Decode reads a pipeline tree from r and builds its graph, including the
// embedded graphs of sub-workflow activities.
func Decode(r io.Reader, format Format) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pipeline tree: %w", err)
	}
	if format == FormatAuto {
		format = sniff(data)
	}

	var raw rawTree
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s pipeline tree", format)
	}
	return build(&raw, "")
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// build converts the raw payload into a Graph. path names the enclosing
// sub-workflow activities for error messages.
func build(raw *rawTree, path string) (*Graph, error) {
	invalid := func(cause error, format string, args ...any) error {
		msg := fmt.Sprintf(format, args...)
		if path != "" {
			msg = path + ": " + msg
		}
		return errors.Wrap(errors.ErrCodeInvalidGraph, cause, "%s", msg)
	}

	if raw.StartEvent == nil || raw.StartEvent.ID == "" {
		return nil, invalid(ErrNoStartEvent, "missing start_event")
	}
	if raw.EndEvent == nil || raw.EndEvent.ID == "" {
		return nil, invalid(ErrNoEndEvent, "missing end_event")
	}

	g := New()
	add := func(n Node) error {
		if err := g.AddNode(n); err != nil {
			return invalid(err, "node %q", n.ID)
		}
		return nil
	}

	if err := add(eventNode(raw.StartEvent, KindStartEvent)); err != nil {
		return nil, err
	}

	if raw.Activities != nil {
		for pair := raw.Activities.Oldest(); pair != nil; pair = pair.Next() {
			a := pair.Value
			n := Node{
				ID:       firstNonEmpty(a.ID, pair.Key),
				Kind:     KindActivity,
				Name:     a.Name,
				Incoming: a.Incoming,
				Outgoing: a.Outgoing,
			}
			if a.Component != nil {
				n.Component = a.Component.Code
			}
			if a.isSubWorkflow() {
				n.Kind = KindSubProcess
				if sub := a.subPipeline(); sub != nil {
					child, err := build(sub, strings.TrimPrefix(path+"/"+n.ID, "/"))
					if err != nil {
						return nil, err
					}
					n.Pipeline = child
				}
			}
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}

	if raw.Gateways != nil {
		for pair := raw.Gateways.Oldest(); pair != nil; pair = pair.Next() {
			gw := pair.Value
			id := firstNonEmpty(gw.ID, pair.Key)
			kind, ok := gatewayKinds[gw.Type]
			if !ok {
				return nil, invalid(ErrUnknownKind, "gateway %q has unknown type %q", id, gw.Type)
			}
			n := Node{
				ID:                id,
				Kind:              kind,
				Name:              gw.Name,
				Incoming:          gw.Incoming,
				Outgoing:          gw.Outgoing,
				ConvergeGatewayID: gw.ConvergeGatewayID,
			}
			if kind.IsConditional() {
				n.Conditions, n.DefaultCondition = conditions(&gw, n.Outgoing)
			}
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}

	if err := add(eventNode(raw.EndEvent, KindEndEvent)); err != nil {
		return nil, err
	}

	if raw.Flows != nil {
		for pair := raw.Flows.Oldest(); pair != nil; pair = pair.Next() {
			f := pair.Value
			if err := g.AddFlow(Flow{
				ID:        firstNonEmpty(f.ID, pair.Key),
				Source:    f.Source,
				Target:    f.Target,
				IsDefault: f.IsDefault,
			}); err != nil {
				return nil, invalid(err, "flow %q", pair.Key)
			}
		}
	}
	return g, nil
}

func eventNode(e *rawEvent, kind NodeKind) Node {
	return Node{
		ID:       e.ID,
		Kind:     kind,
		Name:     e.Name,
		Incoming: e.Incoming,
		Outgoing: e.Outgoing,
	}
}

// conditions returns the explicit conditions of a gateway ordered by its
// declared outgoing flows, plus the default condition. Conditions on flows
// missing from outgoing keep their payload order after the rest.
func conditions(gw *rawGateway, outgoing []string) ([]Condition, *Condition) {
	var def *Condition
	if gw.DefaultCondition != nil && gw.DefaultCondition.FlowID != "" {
		d := gw.DefaultCondition
		def = &Condition{FlowID: d.FlowID, Name: d.Name, Evaluate: d.Evaluate, Tag: d.Tag}
	}
	if gw.Conditions == nil {
		return nil, def
	}
	conds := make([]Condition, 0, gw.Conditions.Len())
	for pair := gw.Conditions.Oldest(); pair != nil; pair = pair.Next() {
		flowID := firstNonEmpty(pair.Value.FlowID, pair.Key)
		if def != nil && def.FlowID == flowID {
			continue
		}
		conds = append(conds, Condition{
			FlowID:   flowID,
			Name:     pair.Value.Name,
			Evaluate: pair.Value.Evaluate,
			Tag:      pair.Value.Tag,
		})
	}
	rank := func(c Condition) int {
		if i := slices.Index(outgoing, c.FlowID); i >= 0 {
			return i
		}
		return len(outgoing)
	}
	slices.SortStableFunc(conds, func(a, b Condition) int { return rank(a) - rank(b) })
	return conds, def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
