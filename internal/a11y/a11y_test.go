package a11y

import (
	"fmt"
	"strings"
	"testing"
)

func intp(i int) *int { return &i }

func val(v any) *Value { return &Value{Value: v} }

func TestFilterAndRenderVIPLink(t *testing.T) {
	nodes := []Node{
		{
			NodeID:   "1",
			Role:     val("RootWebArea"),
			ChildIDs: []string{"2", "3"},
		},
		{
			NodeID:           "2",
			Role:             val("link"),
			Name:             val("VIP会员"),
			BackendDOMNodeID: intp(6804),
		},
		{
			NodeID:  "3",
			Role:    val("generic"),
			Ignored: true,
		},
	}

	filtered := Filter(nodes)
	text := Render(filtered)

	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), text)
	}
	if !strings.Contains(text, `uid=1_6804 link "VIP会员"`) {
		t.Errorf("expected VIP link line, got %q", text)
	}
	if strings.Contains(text, "generic") {
		t.Errorf("ignored generic node leaked into output: %q", text)
	}
}

func TestFilterDropsNonInterestingLeaf(t *testing.T) {
	nodes := []Node{
		{NodeID: "1", Role: val("RootWebArea"), ChildIDs: []string{"2"}},
		{NodeID: "2", Role: val("generic")},
	}
	filtered := Filter(nodes)
	if len(filtered) != 1 {
		t.Fatalf("expected root only, got %d nodes", len(filtered))
	}
}

func TestFilterKeepsControlDescendantChain(t *testing.T) {
	nodes := []Node{
		{NodeID: "1", Role: val("RootWebArea"), ChildIDs: []string{"2"}},
		{NodeID: "2", Role: val("button"), Name: val("Submit"), ChildIDs: []string{"3"}},
		{NodeID: "3", Role: val("StaticText"), Name: val("Submit")},
	}
	filtered := Filter(nodes)
	if len(filtered) != 2 {
		t.Fatalf("expected root + button kept, inner text dropped via insideControl, got %d", len(filtered))
	}
}

func TestFilterKeepsFocusableNodeNestedInsideControl(t *testing.T) {
	nodes := []Node{
		{NodeID: "1", Role: val("RootWebArea"), ChildIDs: []string{"2"}},
		{NodeID: "2", Role: val("button"), Name: val("Menu"), ChildIDs: []string{"3"}},
		{
			NodeID:     "3",
			Role:       val("generic"),
			Properties: []Property{{Name: "focusable", Value: Value{Value: true}}},
		},
	}
	filtered := Filter(nodes)
	if len(filtered) != 3 {
		t.Fatalf("expected root + button + focusable descendant kept, got %d", len(filtered))
	}
}

func TestRoundTripUIDEncodesDepthAndBackendID(t *testing.T) {
	nodes := []Node{
		{NodeID: "1", Role: val("RootWebArea"), ChildIDs: []string{"2"}},
		{
			NodeID:           "2",
			Role:             val("heading"),
			Name:             val("Title"),
			BackendDOMNodeID: intp(42),
		},
	}
	filtered := Filter(nodes)
	text := Render(filtered)

	var depth, backendID int
	found := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		var uid string
		fmt.Sscanf(trimmed, "uid=%s", &uid)
		if n, _ := fmt.Sscanf(uid, "%d_%d", &depth, &backendID); n == 2 && backendID == 42 {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected to find uid=1_42 in %q", text)
	}
	if depth != 1 {
		t.Errorf("depth = %d, want 1 (matches node's actual tree depth)", depth)
	}
}

func TestInterestingHeadingRequiresName(t *testing.T) {
	nodes := []Node{
		{NodeID: "1", Role: val("RootWebArea"), ChildIDs: []string{"2"}},
		{NodeID: "2", Role: val("heading")},
	}
	filtered := Filter(nodes)
	if len(filtered) != 1 {
		t.Fatalf("unnamed heading should not be interesting, got %d nodes", len(filtered))
	}
}

func TestPropertyToleratesRawAndTypedShapes(t *testing.T) {
	n := Node{
		Properties: []Property{
			{Name: "focusable", Value: Value{Type: "boolean", Value: true}},
			{Name: "disabled", Value: Value{Value: false}},
		},
	}
	if !n.BoolProperty("focusable") {
		t.Error("expected focusable=true")
	}
	if n.BoolProperty("disabled") {
		t.Error("expected disabled=false")
	}
	if _, ok := n.Property("missing"); ok {
		t.Error("expected missing property to resolve ok=false")
	}
}
