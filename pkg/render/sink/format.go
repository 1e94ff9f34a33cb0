package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

var sizeUnits = []string{"MB", "GB", "TB", "PB"}

// FormatSize renders a size in megabytes with a binary unit, e.g. "512 KB",
// "740 MB", "13.7 GB". Non-positive and non-finite sizes print as "0 MB".
func FormatSize(mb float64) string {
	if !(mb > 0) || math.IsInf(mb, 0) {
		return "0 MB"
	}
	if mb < 1 {
		return trimZero(mb*1024) + " KB"
	}
	unit := 0
	for mb >= 1024 && unit < len(sizeUnits)-1 {
		mb /= 1024
		unit++
	}
	return trimZero(mb) + " " + sizeUnits[unit]
}

// trimZero prints one decimal below 100 and none above, dropping ".0".
func trimZero(v float64) string {
	if v >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0")
}

// FormatDuration renders a running time in seconds as "2h51m" or "42m".
func FormatDuration(sec float64) string {
	if !(sec > 0) {
		return ""
	}
	d := time.Duration(sec * float64(time.Second)).Round(time.Minute)
	if d < time.Minute {
		return "<1m"
	}
	h, m := int(d.Hours()), int(d.Minutes())%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

// ColorKey returns the key a block is colored by: its group when set,
// otherwise its parent folder.
func ColorKey(b treemap.Block) string {
	if b.Group != "" {
		return b.Group
	}
	return path.Dir(strings.ReplaceAll(b.ID, "\\", "/"))
}

// Hue maps a key to a stable hue in [0, 360).
func Hue(key string) float64 {
	return float64(xxhash.Sum64String(key) % 360)
}

// BlockFill returns the fill color for the i-th block of a color group.
// Neighbours within a group alternate lightness so tiles stay distinct.
func BlockFill(key string, i int) string {
	return fmt.Sprintf("hsl(%.0f, 55%%, %d%%)", Hue(key), 58+(i%4)*6)
}

// FrameFill returns the background and stroke colors of a group frame.
func FrameFill(key string) (fill, stroke string) {
	h := Hue(key)
	return fmt.Sprintf("hsl(%.0f, 30%%, 93%%)", h), fmt.Sprintf("hsl(%.0f, 35%%, 45%%)", h)
}

// Label returns the display label for a block: its title metadata when set,
// otherwise the file name.
func Label(b treemap.Block) string {
	if t, ok := b.Meta[catalog.MetaTitle].(string); ok && t != "" {
		return t
	}
	return path.Base(strings.ReplaceAll(b.ID, "\\", "/"))
}

// Tooltip returns the hover text for a block: path, raw size and, when
// known, running time.
func Tooltip(b treemap.Block) string {
	var sb strings.Builder
	sb.WriteString(b.ID)
	sb.WriteString("\n")
	sb.WriteString(FormatSize(b.Weight))
	if d, ok := b.Meta[catalog.MetaDuration].(float64); ok {
		if s := FormatDuration(d); s != "" {
			sb.WriteString(", ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

// =============================================================================
// Label fitting
// =============================================================================

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
	labelMinW       = 28
	labelMinH       = 12
)

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// fitLabel returns the label truncated to the block width and its font size.
// ok is false when the block is too small for any text.
func fitLabel(label string, w, h int) (text string, size float64, ok bool) {
	if w < labelMinW || h < labelMinH {
		return "", 0, false
	}
	runes := []rune(label)
	size = fontSizeFor(float64(w), float64(h), len(runes))
	maxChars := int(float64(w) * fontWidthRatio / (size * fontCharWidth))
	if maxChars < 3 {
		return "", 0, false
	}
	if len(runes) <= maxChars {
		return label, size, true
	}
	return string(runes[:maxChars-2]) + "..", size, true
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
