package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/comalice/boundsx"
)

// DefaultVisualizer renders engine dumps.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for a dump: one cluster per tag,
// one node per screen the tag was seen on, and one edge per link in history
// order. Pending links point at a dashed placeholder node.
func (v *DefaultVisualizer) ExportDOT(state boundsx.State) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Bounds {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	present := make(map[boundsx.TagID]map[boundsx.ScreenKey]bool)
	for _, p := range state.Presence {
		if present[p.Tag] == nil {
			present[p.Tag] = make(map[boundsx.ScreenKey]bool)
		}
		present[p.Tag][p.Entry.Screen.ScreenKey] = true
	}

	for i, td := range state.Tags {
		renderTag(&buf, i, td, present[td.Tag])
	}

	if len(state.Groups) > 0 {
		buf.WriteString("  // groups\n")
		for _, g := range sortedKeys(state.Groups) {
			fmt.Fprintf(&buf, "  // %s active=%s\n", g, state.Groups[g])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the dump to indented JSON.
func (v *DefaultVisualizer) ExportJSON(state boundsx.State) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

func renderTag(buf *bytes.Buffer, idx int, td boundsx.TagDump, present map[boundsx.ScreenKey]bool) {
	node := func(key boundsx.ScreenKey) string {
		return fmt.Sprintf("t%d_%s", idx, key)
	}

	fmt.Fprintf(buf, "  subgraph cluster_%d {\n", idx)
	fmt.Fprintf(buf, "    label=%q;\n", string(td.Tag))

	seen := make(map[boundsx.ScreenKey]bool)
	declare := func(key boundsx.ScreenKey) {
		if seen[key] {
			return
		}
		seen[key] = true
		style := ""
		if present[key] {
			style = ` style="rounded,filled" fillcolor=lightgreen`
		}
		fmt.Fprintf(buf, "    %q [label=%q%s];\n", node(key), string(key), style)
	}

	for _, s := range td.Snapshots {
		declare(s.Screen.ScreenKey)
	}
	for _, l := range td.Links {
		declare(l.Source.Screen.ScreenKey)
		if l.Destination != nil {
			declare(l.Destination.Screen.ScreenKey)
		}
	}

	for n, l := range td.Links {
		from := node(l.Source.Screen.ScreenKey)
		if l.Destination == nil {
			pending := fmt.Sprintf("t%d_pending_%d", idx, n)
			fmt.Fprintf(buf, "    %q [label=\"?\" style=dashed];\n", pending)
			fmt.Fprintf(buf, "    %q -> %q [label=\"#%d pending\" style=dashed];\n", from, pending, n)
			continue
		}
		fmt.Fprintf(buf, "    %q -> %q [label=\"#%d\"];\n", from, node(l.Destination.Screen.ScreenKey), n)
	}

	buf.WriteString("  }\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
