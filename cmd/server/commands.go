package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/topology"
	"github.com/stefanfredik/openaccess-sub000/internal/trace"
)

// ImportCmd loads a YAML inventory into the store
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"Inventory YAML file"`
}

// Run executes the import command
func (c *ImportCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	counts, err := a.inventory.ImportFile(ctx, a.tenant, c.File)
	if err != nil {
		return err
	}

	color.Green("Imported %s into tenant %d", c.File, a.tenant)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("  %-14s %d\n", k+":", counts[k])
	}

	return nil
}

// TraceCmd prints the signal path starting at a core
type TraceCmd struct {
	CoreID int64 `arg:"" help:"Starting core id"`
	JSON   bool  `help:"Print the path as JSON"`
}

// Run executes the trace command
func (c *TraceCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.fiber.TraceSignal(ctx, a.tenant, c.CoreID)
	if err != nil {
		return err
	}

	if c.JSON {
		return printJSON(os.Stdout, res)
	}
	printTrace(os.Stdout, res.Segments)
	return nil
}

// TopologyCmd prints the device topology as an indented tree
type TopologyCmd struct {
	JSON bool `help:"Print the forest as JSON"`
}

// Run executes the topology command
func (c *TopologyCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	forest, err := a.topology.GetTopology(ctx, a.tenant)
	if err != nil {
		return err
	}

	if c.JSON {
		return printJSON(os.Stdout, forest)
	}
	if len(forest) == 0 {
		fmt.Println("No devices")
		return nil
	}
	printTopology(os.Stdout, forest)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTrace(w io.Writer, segments []trace.Segment) {
	for i, s := range segments {
		switch s.Type {
		case trace.SegmentCore:
			fmt.Fprintf(w, "%2d. %s %s", i+1, color.CyanString("core"), s.Label)
			if s.CableName != "" {
				fmt.Fprintf(w, " [%s]", s.CableName)
			}
		case trace.SegmentSplice:
			fmt.Fprintf(w, "%2d. %s #%d in %s-%d", i+1, color.YellowString("splice"),
				s.SpliceID, s.EnclosureKind, s.EnclosureID)
			if s.LossDB != nil {
				fmt.Fprintf(w, " (%s dB)", strconv.FormatFloat(*s.LossDB, 'f', -1, 64))
			}
		case trace.SegmentTermination:
			fmt.Fprintf(w, "%2d. %s %s-%d", i+1, color.GreenString("termination"), s.PortKind, s.PortID)
		}
		fmt.Fprintln(w)
	}
}

func printTopology(w io.Writer, forest []*topology.Node) {
	topology.Walk(forest, func(n *topology.Node, depth int) bool {
		line := strings.Repeat("  ", depth) + n.UID + " " + n.Name
		switch {
		case n.IsDuplicate:
			line += color.HiBlackString(" (see above)")
		case n.Truncated:
			line += color.RedString(" (truncated)")
		}
		if n.Status != "" {
			line += " " + statusColor(n.Status)
		}
		fmt.Fprintln(w, line)
		return true
	})
}

func statusColor(status string) string {
	switch status {
	case domain.StatusActive:
		return color.GreenString(status)
	case domain.StatusInactive:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
