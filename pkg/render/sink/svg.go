package sink

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

const svgCSS = `
    .frame { stroke-width: 1; }
    .group-label { font-size: 12px; font-weight: bold; fill: #333; }
    .block { stroke: #fff; stroke-width: 1; }
    .block:hover { stroke: #222; stroke-width: 2; }
    .block-text { fill: #111; pointer-events: none; }
    .title { font-size: 18px; font-weight: bold; fill: #222; }`

// titleHeight is the strip reserved above the treemap by [WithTitle].
const titleHeight = 32

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title  string
	labels bool
}

// WithTitle draws a title strip above the treemap.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithoutLabels omits block and group labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG renders the layout as a standalone SVG document. Group frames are
// drawn first, then blocks in layout order. Zero-size blocks are skipped.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	offset := 0.0
	if r.title != "" {
		offset = titleHeight
	}
	width, height := l.Width, l.Height+offset

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f" font-family="Helvetica, Arial, sans-serif">`+"\n",
		num(width), num(height), width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)
	fmt.Fprintf(&buf, `  <rect class="background" width="%s" height="%s" fill="#fafafa"/>`+"\n", num(width), num(height))

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="8" y="%d">%s</text>`+"\n", titleHeight-10, escapeXML(r.title))
	}
	// Offset canvases are shifted back to the document origin.
	dx, dy := 0.0, offset
	dx -= l.X
	dy -= l.Y
	if dx != 0 || dy != 0 {
		fmt.Fprintf(&buf, `  <g transform="translate(%s %s)">`+"\n", num(dx), num(dy))
	} else {
		buf.WriteString("  <g>\n")
	}

	for _, g := range l.Groups {
		renderGroup(&buf, g, l.Margin, r.labels)
	}
	renderBlocks(&buf, l.Blocks, r.labels)

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderGroup(buf *bytes.Buffer, g treemap.GroupBlock, margin *treemap.Margin, labels bool) {
	if g.W <= 0 || g.H <= 0 {
		return
	}
	fill, stroke := FrameFill(g.Key)
	fmt.Fprintf(buf, `    <rect class="frame" x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s"><title>%s</title></rect>`+"\n",
		g.X, g.Y, g.W, g.H, fill, stroke, escapeXML(groupTooltip(g)))

	if !labels || margin == nil || margin.Label < labelMinH {
		return
	}
	text, _, ok := fitLabel(g.Key+"  "+FormatSize(g.Weight), g.W-4, labelMinH)
	if !ok {
		return
	}
	fmt.Fprintf(buf, `    <text class="group-label" x="%d" y="%s">%s</text>`+"\n",
		g.X+int(margin.Padding)+2, num(float64(g.Y)+margin.Padding+margin.Label*0.75), escapeXML(text))
}

func groupTooltip(g treemap.GroupBlock) string {
	files := "files"
	if g.Count == 1 {
		files = "file"
	}
	return fmt.Sprintf("%s\n%s, %d %s", g.Key, FormatSize(g.Weight), g.Count, files)
}

func renderBlocks(buf *bytes.Buffer, blocks []treemap.Block, labels bool) {
	shade := make(map[string]int)
	for _, b := range blocks {
		if b.Area() == 0 {
			continue
		}
		key := ColorKey(b)
		i := shade[key]
		shade[key]++

		fmt.Fprintf(buf, `    <rect class="block" data-id="%s" x="%d" y="%d" width="%d" height="%d" fill="%s"><title>%s</title></rect>`+"\n",
			escapeXML(b.ID), b.X, b.Y, b.W, b.H, BlockFill(key, i), escapeXML(Tooltip(b)))

		if !labels {
			continue
		}
		text, size, ok := fitLabel(Label(b), b.W, b.H)
		if !ok {
			continue
		}
		fmt.Fprintf(buf, `    <text class="block-text" x="%s" y="%s" font-size="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			num(b.CenterX()), num(b.CenterY()), num(size), escapeXML(text))
	}
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
