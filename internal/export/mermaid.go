package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

// ConflictMermaid produces a Mermaid graph LR diagram with one node per
// stream and one edge per conflict, labeled type/severity. Critical edges
// are drawn in red.
func ConflictMermaid(r synthesis.Result) string {
	// Mermaid IDs must be alphanumeric.
	nodeIDs := make(map[string]string)
	var order []string
	getID := func(streamID string) string {
		if id, ok := nodeIDs[streamID]; ok {
			return id
		}
		id := fmt.Sprintf("S%d", len(nodeIDs))
		nodeIDs[streamID] = id
		order = append(order, streamID)
		return id
	}

	for _, s := range r.Metadata.Streams {
		getID(s.StreamID)
	}
	for _, c := range r.Conflicts {
		for _, src := range c.Sources {
			getID(src)
		}
	}

	status := make(map[string]string, len(r.Metadata.Streams))
	for _, s := range r.Metadata.Streams {
		status[s.StreamID] = string(s.Status)
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for _, sid := range order {
		label := escapeLabel(sid)
		if st, ok := status[sid]; ok {
			label += "<br/>" + st
		}
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", nodeIDs[sid], label)
	}

	var critical []int
	edge := 0
	for _, c := range r.Conflicts {
		if len(c.Sources) < 2 {
			continue
		}
		fmt.Fprintf(&sb, "  %s ---|\"%s/%s\"| %s\n",
			nodeIDs[c.Sources[0]], c.Type, c.Severity, nodeIDs[c.Sources[1]])
		if c.Severity == conflict.SeverityCritical {
			critical = append(critical, edge)
		}
		edge++
	}
	for _, i := range critical {
		fmt.Fprintf(&sb, "  linkStyle %d stroke:#d62728,stroke-width:3px\n", i)
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
