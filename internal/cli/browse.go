package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/cache"
	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/pipeline"
	"github.com/matzehuels/vidtree/pkg/render/sink"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// browseCommand creates the browse command: an interactive terminal treemap
// of one folder level at a time.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		mode   string
		folder string
	)

	cmd := &cobra.Command{
		Use:   "browse [catalog]",
		Short: "Explore a catalogue as a treemap in the terminal",
		Long: `Explore a catalogue as a treemap in the terminal.

Each tile is a subfolder or a video directly inside the current folder.

Keys:
  arrows/hjkl  move between tiles
  enter        open the selected folder
  backspace    go to the parent folder
  tab          toggle log/linear weighting
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("mode") && c.Config.Layout.Mode != "" {
				mode = c.Config.Layout.Mode
			}
			if err := pipeline.ValidateMode(mode); err != nil {
				return err
			}
			cat, err := pipeline.Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load catalog %s: %w", args[0], err)
			}

			runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, c.Logger)
			defer runner.Close()

			m := newBrowseModel(ctx, cat, runner, folder, mode)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", pipeline.DefaultMode, "weight mode: log (default), linear")
	cmd.Flags().StringVar(&folder, "folder", "", "folder to start in")
	registerLayoutCompletions(cmd)

	return cmd
}

// =============================================================================
// browseModel - Interactive treemap
// =============================================================================

// Rows taken by the header and footer lines.
const browseChrome = 2

var (
	browseHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseFooterStyle = lipgloss.NewStyle().Foreground(colorGray)
	browseSelected    = lipgloss.NewStyle().Background(colorWhite).Foreground(lipgloss.Color("0")).Bold(true)
)

type browseModel struct {
	ctx    context.Context
	cat    *catalog.Catalog
	runner *pipeline.Runner

	folder  string
	mode    string
	width   int
	height  int
	entries map[string]catalog.Entry
	blocks  []treemap.Block // visible tiles in terminal cells
	cursor  int
	err     error
}

func newBrowseModel(ctx context.Context, cat *catalog.Catalog, runner *pipeline.Runner, folder, mode string) browseModel {
	return browseModel{
		ctx:    ctx,
		cat:    cat,
		runner: runner,
		folder: catalog.Clean(folder),
		mode:   mode,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m = m.relayout()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.move(-1, 0)
		case "right", "l":
			m.move(1, 0)
		case "up", "k":
			m.move(0, -1)
		case "down", "j":
			m.move(0, 1)
		case "enter":
			if e, ok := m.selected(); ok && e.Dir {
				m.folder = e.Path
				m.cursor = 0
				m = m.relayout()
			}
		case "backspace", "u":
			if m.folder != "" {
				prev := m.folder
				m.folder = catalog.Parent(m.folder)
				m = m.relayout()
				m.selectPath(prev)
			}
		case "tab":
			if wm, _ := treemap.ParseWeightMode(m.mode); wm == treemap.Logarithmic {
				m.mode = treemap.Linear.String()
			} else {
				m.mode = treemap.Logarithmic.String()
			}
			m = m.relayout()
		}
	}
	return m, nil
}

// relayout recomputes the tiles of the current folder for the current
// terminal size.
func (m browseModel) relayout() browseModel {
	children := m.cat.Children(m.folder)
	m.entries = make(map[string]catalog.Entry, len(children))
	items := make([]treemap.Item, len(children))
	for i, e := range children {
		m.entries[e.Path] = e
		items[i] = treemap.Item{ID: e.Path, Weight: e.SizeMB}
	}

	m.blocks = nil
	rows := m.height - browseChrome
	if m.width < 2 || rows < 1 {
		return m
	}

	// Cells are about twice as tall as wide, so lay out on a half-width
	// canvas and stretch horizontally.
	opts := pipeline.Options{
		Mode:   m.mode,
		Width:  float64(m.width) / 2,
		Height: float64(rows),
	}
	l, _, err := m.runner.LayoutItems(m.ctx, items, opts)
	m.err = err
	for _, b := range l.Blocks {
		if b.W == 0 || b.H == 0 {
			continue
		}
		b.X, b.W = b.X*2, b.W*2
		m.blocks = append(m.blocks, b)
	}
	if m.cursor >= len(m.blocks) {
		m.cursor = 0
	}
	return m
}

func (m *browseModel) selected() (catalog.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.blocks) {
		return catalog.Entry{}, false
	}
	e, ok := m.entries[m.blocks[m.cursor].ID]
	return e, ok
}

func (m *browseModel) selectPath(p string) {
	for i, b := range m.blocks {
		if b.ID == p {
			m.cursor = i
			return
		}
	}
}

// move selects the nearest tile whose center lies in direction (dx, dy).
func (m *browseModel) move(dx, dy int) {
	if m.cursor >= len(m.blocks) {
		return
	}
	cur := m.blocks[m.cursor]
	cx, cy := cur.CenterX(), cur.CenterY()

	best, bestDist := -1, math.Inf(1)
	for i, b := range m.blocks {
		if i == m.cursor {
			continue
		}
		bx, by := b.CenterX(), b.CenterY()
		if (dx > 0 && bx <= cx) || (dx < 0 && bx >= cx) || (dy > 0 && by <= cy) || (dy < 0 && by >= cy) {
			continue
		}
		if d := math.Abs(bx-cx) + math.Abs(by-cy); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		m.cursor = best
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	where := "/" + m.folder
	if m.cat.Root != "" {
		where = m.cat.Root + where
	}
	b.WriteString(browseHeaderStyle.Render(truncate(fmt.Sprintf("%s  (%s, %s)", where, sink.FormatSize(m.cat.Filter(m.folder).TotalMB()), m.mode), m.width)))
	b.WriteString("\n")

	rows := m.height - browseChrome
	switch {
	case m.err != nil:
		b.WriteString(StyleWarning.Render(m.err.Error()))
	case len(m.blocks) == 0:
		b.WriteString(StyleDim.Render("No videos here"))
	default:
		b.WriteString(m.grid(rows))
	}
	b.WriteString("\n")

	footer := "←↑↓→ move  ⏎ open  ⌫ up  tab mode  q quit"
	if e, ok := m.selected(); ok {
		footer = fmt.Sprintf("%s · %s", e.Name, sink.FormatSize(e.SizeMB))
		if e.Dir {
			footer += fmt.Sprintf(" · %d videos", e.Count)
		}
	}
	b.WriteString(browseFooterStyle.Render(truncate(footer, m.width)))
	return b.String()
}

// grid paints every tile onto a rows x width character grid.
func (m browseModel) grid(rows int) string {
	cells := make([][]string, rows)
	for y := range cells {
		cells[y] = make([]string, m.width)
		for x := range cells[y] {
			cells[y][x] = " "
		}
	}

	for i, blk := range m.blocks {
		e := m.entries[blk.ID]
		style := tileStyle(blk, i, e.Dir)
		if i == m.cursor {
			style = browseSelected
		}
		name := []rune(e.Name)
		if e.Dir {
			name = append(name, '/')
		}
		for y := blk.Y; y < blk.Bottom() && y < rows; y++ {
			for x := blk.X; x < blk.Right() && x < m.width; x++ {
				ch := " "
				if y == blk.Y && x > blk.X && x-blk.X-1 < len(name) && x < blk.Right()-1 {
					ch = string(name[x-blk.X-1])
				}
				cells[y][x] = style.Render(ch)
			}
		}
	}

	lines := make([]string, rows)
	for y, row := range cells {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// tileStyle colors a folder tile by its own hue and a video tile by its
// folder's hue; folders are darker than videos.
func tileStyle(b treemap.Block, i int, dir bool) lipgloss.Style {
	key, light := sink.ColorKey(b), 0.55+float64(i%4)*0.05
	if dir {
		key, light = b.ID, 0.35
	}
	bg := hslHex(sink.Hue(key), 0.45, light)
	fg := lipgloss.Color("0")
	if light < 0.5 {
		fg = colorWhite
	}
	return lipgloss.NewStyle().Background(bg).Foreground(fg)
}

// hslHex converts an HSL color (h in degrees, s and l in [0, 1]) to a
// terminal color.
func hslHex(h, s, l float64) lipgloss.Color {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g = c, x
	case hp < 2:
		r, g = x, c
	case hp < 3:
		g, b = c, x
	case hp < 4:
		g, b = x, c
	case hp < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	m := l - c/2
	to8 := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", to8(r), to8(g), to8(b)))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
