// Command draftboard is the batch companion to the editor: it renders,
// lays out, validates, and inspects diagram JSON files without a canvas.
package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/layout"
	"github.com/draftboard/draftboard/backend-go/internal/render"
)

var (
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	subtle = color.New(color.Faint)
)

// fileConfig is the optional TOML config (--config) with render defaults.
type fileConfig struct {
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	Orientation string `toml:"orientation"`
}

var (
	cfgPath string
	cfg     = fileConfig{Width: 1280, Height: 800, Orientation: "vertical"}
)

var rootCmd = &cobra.Command{
	Use:   "draftboard",
	Short: "draftboard — flowchart diagram toolkit",
	Long:  "Render, auto-layout, validate, and inspect flowchart diagram JSON files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return nil
		}
		if _, err := toml.DecodeFile(cfgPath, &cfg); err != nil {
			return fmt.Errorf("load config %s: %w", cfgPath, err)
		}
		return nil
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file")
	rootCmd.AddCommand(renderCmd(), layoutCmd(), validateCmd(), infoCmd())

	if err := rootCmd.Execute(); err != nil {
		bad.Fprintf(os.Stderr, "draftboard: %v\n", err)
		os.Exit(1)
	}
}

func loadDiagram(path string) (*diagram.Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := diagram.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func renderCmd() *cobra.Command {
	var out string
	var width, height int

	cmd := &cobra.Command{
		Use:   "render <diagram.json>",
		Short: "Render a diagram to a fitted PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiagram(args[0])
			if err != nil {
				return err
			}

			w, h := cfg.Width, cfg.Height
			if width > 0 {
				w = width
			}
			if height > 0 {
				h = height
			}
			r, err := render.New(w, h)
			if err != nil {
				return err
			}
			png, err := r.Snapshot(d)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			good.Printf("wrote %s", out)
			subtle.Printf(" (%dx%d, %d nodes, %d edges)\n", w, h, len(d.Nodes), len(d.Edges))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "diagram.png", "output PNG path")
	cmd.Flags().IntVar(&width, "width", 0, "image width (overrides config)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (overrides config)")
	return cmd
}

func layoutCmd() *cobra.Command {
	var out string
	var orientation string

	cmd := &cobra.Command{
		Use:   "layout <diagram.json>",
		Short: "Auto-layout a diagram and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiagram(args[0])
			if err != nil {
				return err
			}

			o := layout.Vertical
			chosen := orientation
			if chosen == "" {
				chosen = cfg.Orientation
			}
			if chosen == string(layout.Horizontal) {
				o = layout.Horizontal
			}
			layout.Auto(d, o)

			data, err := d.Export()
			if err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = args[0]
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}

			good.Printf("laid out %d nodes (%s)", len(d.Nodes), chosen)
			subtle.Printf(" -> %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default: overwrite input)")
	cmd.Flags().StringVar(&orientation, "orientation", "", "vertical or horizontal")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <diagram.json>",
		Short: "Check a diagram file for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiagram(args[0])
			if err != nil {
				return err
			}

			problems := 0
			seen := map[string]bool{}
			for i := range d.Nodes {
				n := &d.Nodes[i]
				if n.ID == "" {
					bad.Printf("node %d has no id\n", i)
					problems++
					continue
				}
				if seen[n.ID] {
					bad.Printf("duplicate node id %s\n", n.ID)
					problems++
				}
				seen[n.ID] = true
				if n.Width <= 0 || n.Height <= 0 {
					bad.Printf("node %s has a non-positive size\n", n.ID)
					problems++
				}
			}
			for i := range d.Edges {
				e := &d.Edges[i]
				if d.NodeByID(e.SourceID) == nil || d.NodeByID(e.TargetID) == nil {
					bad.Printf("edge %s references a missing node\n", e.ID)
					problems++
				}
				if e.SourceID == e.TargetID {
					subtle.Printf("edge %s is a self-loop\n", e.ID)
				}
			}

			if problems > 0 {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			good.Printf("ok: %d nodes, %d edges\n", len(d.Nodes), len(d.Edges))
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <diagram.json>",
		Short: "Summarize a diagram file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiagram(args[0])
			if err != nil {
				return err
			}

			kinds := map[diagram.NodeKind]int{}
			for i := range d.Nodes {
				kinds[d.Nodes[i].Kind]++
			}
			bends := 0
			for i := range d.Edges {
				if d.Edges[i].BendX != nil {
					bends++
				}
			}
			b := d.Bounds()

			fmt.Printf("nodes:  %d\n", len(d.Nodes))
			for _, k := range []diagram.NodeKind{diagram.KindStart, diagram.KindProcess, diagram.KindDecision, diagram.KindIO, diagram.KindEnd} {
				if kinds[k] > 0 {
					subtle.Printf("  %-9s %d\n", k, kinds[k])
				}
			}
			fmt.Printf("edges:  %d", len(d.Edges))
			if bends > 0 {
				subtle.Printf(" (%d with explicit bends)", bends)
			}
			fmt.Println()
			fmt.Printf("bounds: %.0f x %.0f at (%.0f, %.0f)\n", b.Width, b.Height, b.X, b.Y)
			return nil
		},
	}
}
