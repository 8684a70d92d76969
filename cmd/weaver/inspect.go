package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/weaver/internal/presentation/graph"
	"github.com/aretw0/weaver/internal/presentation/tui"
	"github.com/aretw0/weaver/pkg/plan"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <plan>",
	Short: "Show the targets and advice of a plan",
	Long:  `Prints the plan as a markdown table, or as a Mermaid flowchart with --format mermaid. On a terminal the table is rendered; use --plain to get the raw markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "mermaid":
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p, nil))
			return nil
		case "markdown":
		default:
			return fmt.Errorf("unknown format %q (use markdown or mermaid)", format)
		}

		md := planMarkdown(args[0], p)

		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("plain", false, "Print markdown without rendering")
	inspectCmd.Flags().String("format", "markdown", "Output format (markdown, mermaid)")
}

func planMarkdown(path string, p *plan.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", path)
	if len(p.Targets) == 0 {
		b.WriteString("_No targets._\n")
		return b.String()
	}

	b.WriteString("| Target | Advice |\n|---|---|\n")
	for _, t := range p.Targets {
		kinds := make([]string, 0, len(t.Advice))
		for _, a := range t.Advice {
			kinds = append(kinds, adviceLabel(a))
		}
		if len(kinds) == 0 {
			kinds = append(kinds, "_none_")
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", t.ID(), strings.Join(kinds, ", "))
	}
	return b.String()
}

func adviceLabel(a plan.Advice) string {
	if len(a.Params) == 0 {
		return a.Kind
	}
	keys := make([]string, 0, len(a.Params))
	for k := range a.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, a.Params[k])
	}
	return fmt.Sprintf("%s(%s)", a.Kind, strings.Join(parts, " "))
}
