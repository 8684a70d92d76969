package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/plan"
)

// Overlay marks targets that currently have a live binding.
type Overlay struct {
	Bound []domain.TargetID
}

// GenerateMermaid produces a Mermaid flowchart of a plan. Each target is a
// chain from the caller through its advice, outermost first, to the original:
//
//   - Owner: subgraph
//   - Target: ((Circle))
//   - Advice: [[Subroutine]]
//   - Original: [Rectangle]
//
// Targets listed in the overlay are highlighted.
func GenerateMermaid(p *plan.Plan, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	var owners []string
	byOwner := make(map[string][]plan.Target)
	for _, t := range p.Targets {
		if _, ok := byOwner[t.Owner]; !ok {
			owners = append(owners, t.Owner)
		}
		byOwner[t.Owner] = append(byOwner[t.Owner], t)
	}

	for _, owner := range owners {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(owner), owner)
		for _, t := range byOwner[owner] {
			id := sanitizeMermaidID(t.ID().String())
			fmt.Fprintf(&sb, "        %s((\"%s\"))\n", id, t.Name)

			prev := id
			for i, a := range t.Advice {
				step := fmt.Sprintf("%s_%d", id, i)
				fmt.Fprintf(&sb, "        %s[[\"%s\"]]\n", step, strings.ReplaceAll(a.Kind, "\"", "'"))
				fmt.Fprintf(&sb, "        %s --> %s\n", prev, step)
				prev = step
			}
			fmt.Fprintf(&sb, "        %s_fn[\"original\"]\n", id)
			fmt.Fprintf(&sb, "        %s --> %s_fn\n", prev, id)
		}
		sb.WriteString("    end\n")
	}

	if overlay != nil && len(overlay.Bound) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef bound fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, target := range overlay.Bound {
			id := sanitizeMermaidID(target.String())
			if !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s bound;\n", id)
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
