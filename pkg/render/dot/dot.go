// Package dot draws a ranking and the evidence it contradicts as a Graphviz
// diagram.
//
// Competitors appear top to bottom in rank order, chained by invisible edges
// so Graphviz keeps the order. Every anomaly becomes a red edge from the
// lower-ranked winner back up to the higher-ranked loser, labelled with its
// weight and drawn thicker the heavier it is. Reading the diagram shows at a
// glance which results the ranking had to overrule.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/outcome"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
)

// Format names.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures the diagram.
type Options struct {
	// Limit keeps only the heaviest anomalies. Zero draws all of them.
	Limit int

	// OnlyInvolved omits competitors that take part in no drawn anomaly.
	OnlyInvolved bool
}

// ToDOT renders order and its anomalies as DOT source.
func ToDOT(m *outcome.Matrix, order ranking.Ordering, opts Options) string {
	anomalies := ranking.NewScorer(m).Anomalies(order)
	if opts.Limit > 0 && len(anomalies) > opts.Limit {
		anomalies = anomalies[:opts.Limit]
	}

	involved := make(map[int]bool)
	maxWeight := 0.0
	for _, a := range anomalies {
		involved[a.Higher] = true
		involved[a.Lower] = true
		maxWeight = max(maxWeight, a.Weight)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph ranking {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.35;\n")
	buf.WriteString("\n")

	var shown []int
	for pos, idx := range order {
		if opts.OnlyInvolved && !involved[idx] {
			continue
		}
		shown = append(shown, idx)
		attrs := fmt.Sprintf("label=%q", label(m.Competitor(idx), pos+1))
		if involved[idx] {
			attrs += ", color=\"#b91c1c\""
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", m.Competitor(idx).ID, attrs)
	}

	buf.WriteString("\n")
	for i := 1; i < len(shown); i++ {
		fmt.Fprintf(&buf, "  %q -> %q [style=invis, weight=100];\n",
			m.Competitor(shown[i-1]).ID, m.Competitor(shown[i]).ID)
	}

	if len(anomalies) > 0 {
		buf.WriteString("\n")
	}
	for _, a := range anomalies {
		width := 1.0
		if maxWeight > 0 {
			width += 3 * a.Weight / maxWeight
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=\"#b91c1c\", constraint=false, penwidth=%.2f, label=%q];\n",
			m.Competitor(a.Lower).ID, m.Competitor(a.Higher).ID, width, strconv.FormatFloat(a.Weight, 'g', 4, 64))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(c outcome.Competitor, rank int) string {
	s := fmt.Sprintf("#%d %s", rank, c.DisplayName())
	if c.Team != "" {
		s += "\n" + c.Team
	}
	if c.Wins+c.Losses > 0 {
		s += " (" + c.Record() + ")"
	}
	return s
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces the requested format.
func Render(ctx context.Context, m *outcome.Matrix, order ranking.Ordering, format string, opts Options) ([]byte, error) {
	src := ToDOT(m, order, opts)
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		return RenderSVG(ctx, src)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
