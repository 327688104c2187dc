package a11y

import (
	"bytes"
	"encoding/json"
)

// Value is CDP's typed-or-raw property shape: most AXNode fields come back
// as {"type": "...", "value": <raw>}, but a field may also carry the raw
// value directly. UnmarshalJSON accepts both, so property resolution does
// not need to know which one applied.
type Value struct {
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}

// UnmarshalJSON decodes any JSON object as the typed wrapper; any other
// JSON value is taken as the raw value itself, with an empty Type.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		type wrapper Value
		return json.Unmarshal(trimmed, (*wrapper)(v))
	}
	*v = Value{}
	return json.Unmarshal(trimmed, &v.Value)
}

// Property is one entry of a node's flat property bag, e.g. {"name":
// "focusable", "value": {"type": "boolean", "value": true}}.
type Property struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Node is one entry of the ordered node list returned by
// Accessibility.getFullAXTree.
type Node struct {
	NodeID           string     `json:"nodeId"`
	Role             *Value     `json:"role,omitempty"`
	Ignored          bool       `json:"ignored"`
	ChildIDs         []string   `json:"childIds,omitempty"`
	BackendDOMNodeID *int       `json:"backendDOMNodeId,omitempty"`
	Name             *Value     `json:"name,omitempty"`
	Description      *Value     `json:"description,omitempty"`
	Properties       []Property `json:"properties,omitempty"`
}

// RoleString returns the node's role as a plain string, or "" if absent.
func (n *Node) RoleString() string {
	if n.Role == nil {
		return ""
	}
	s, _ := n.Role.Value.(string)
	return s
}

// NameString returns the node's accessible name, or "" if absent.
func (n *Node) NameString() string {
	if n.Name == nil {
		return ""
	}
	s, _ := n.Name.Value.(string)
	return s
}

// DescriptionString returns the node's accessible description, or "" if absent.
func (n *Node) DescriptionString() string {
	if n.Description == nil {
		return ""
	}
	s, _ := n.Description.Value.(string)
	return s
}

// Property resolves a named entry from the node's flat property bag,
// tolerating both the typed {value} wrapper and a raw value stored
// directly, per the DESIGN NOTES dynamic-property-bag re-expression.
func (n *Node) Property(name string) (any, bool) {
	for _, p := range n.Properties {
		if p.Name != name {
			continue
		}
		return p.Value.Value, true
	}
	return nil, false
}

// BoolProperty reads a boolean-valued property, defaulting to false when
// absent or of the wrong underlying type.
func (n *Node) BoolProperty(name string) bool {
	v, ok := n.Property(name)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// StringProperty reads a string-valued property, defaulting to "" when
// absent or of the wrong underlying type.
func (n *Node) StringProperty(name string) string {
	v, ok := n.Property(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// controlRoles lists roles that constitute an interactive control.
var controlRoles = map[string]bool{
	"button": true, "checkbox": true, "combobox": true, "listbox": true,
	"menu": true, "menubar": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "option": true, "progressbar": true, "radio": true,
	"scrollbar": true, "searchbox": true, "slider": true, "spinbutton": true,
	"switch": true, "tab": true, "tablist": true, "textbox": true,
	"tree": true, "treeitem": true, "link": true, "gridcell": true,
}

// landmarkRoles lists roles that constitute a page landmark.
var landmarkRoles = map[string]bool{
	"banner": true, "complementary": true, "contentinfo": true, "form": true,
	"main": true, "navigation": true, "region": true, "search": true,
}

// leafRoles lists roles that are inherently leaves regardless of children.
var leafRoles = map[string]bool{
	"textbox": true, "searchbox": true, "image": true, "progressbar": true,
	"slider": true, "separator": true, "meter": true, "scrollbar": true,
	"spinbutton": true,
}

// textRoles lists roles treated as raw text runs.
var textRoles = map[string]bool{
	"StaticText": true, "text": true,
}
