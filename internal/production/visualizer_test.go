// Tests for DefaultVisualizer DOT export.
package production

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultVisualizer_ExportDOT(t *testing.T) {
	v := &DefaultVisualizer{}
	dot := v.ExportDOT(sampleState())

	if !strings.HasPrefix(dot, "digraph Bounds {") {
		t.Error("Missing DOT header")
	}
	if !strings.Contains(dot, `label="hero";`) {
		t.Error("Missing tag cluster")
	}
	if !strings.Contains(dot, `"t0_grid" -> "t0_detail" [label="#0"];`) {
		t.Errorf("Missing completed link edge:\n%s", dot)
	}
	if !strings.Contains(dot, `"t0_detail" -> "t0_pending_1" [label="#1 pending" style=dashed];`) {
		t.Errorf("Missing pending link edge:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor=lightgreen`) {
		t.Error("Missing presence highlight")
	}
	if !strings.Contains(dot, "// photos active=3") {
		t.Error("Missing group annotation")
	}
	if strings.Count(dot, `"t0_grid" [label`) != 1 {
		t.Error("screen node declared more than once")
	}
}

func TestDefaultVisualizer_ExportJSON(t *testing.T) {
	v := &DefaultVisualizer{}
	data, err := v.ExportJSON(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := decoded["tags"]; !ok {
		t.Error("missing tags key")
	}
}
