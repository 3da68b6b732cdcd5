package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/editor"
	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
)

// Demo styles
var (
	demoSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	demoNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	demoDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	demoTargetStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	demoGrabbedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
)

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	var chartFile string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Interactive drag-and-drop playground",
		Long: `Interactive drag-and-drop playground.

Runs the editor in the terminal: pick up a node, move it around, and watch
the drop target, root band, and reattachment rules respond. Without --chart
a small sample org is seeded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(chartFile)
		},
	}

	cmd.Flags().StringVar(&chartFile, "chart", "", "chart file to load instead of the sample org")
	return cmd
}

func (c *CLI) runDemo(chartFile string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	changes := 0
	ed, err := c.newEditor(cfg, func(chart.Chart) { changes++ })
	if err != nil {
		return err
	}

	if chartFile != "" {
		doc, err := chart.Import(chartFile)
		if err != nil {
			return err
		}
		if err := ed.Load(doc); err != nil {
			return err
		}
	} else if err := seedDemoChart(ed); err != nil {
		return err
	}
	ed.ApplyLayout()
	ed.FitView()

	model := newDemoModel(ed, &changes)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return nil
}

// seedDemoChart fills the editor with a small sample org.
func seedDemoChart(ed *editor.Editor) error {
	nodes := []forest.Node{
		{ID: "ceo", Label: "CEO", Root: true},
		{ID: "cto", Label: "CTO"},
		{ID: "cfo", Label: "CFO"},
		{ID: "eng1", Label: "Engineer A"},
		{ID: "eng2", Label: "Engineer B"},
		{ID: "acct", Label: "Accountant"},
		{ID: "advisor", Label: "Advisor"},
	}
	for _, n := range nodes {
		if err := ed.AddNode(n, geom.Point{}); err != nil {
			return err
		}
	}
	edges := []forest.Edge{
		{From: "ceo", To: "cto"},
		{From: "ceo", To: "cfo"},
		{From: "cto", To: "eng1"},
		{From: "cto", To: "eng2"},
		{From: "cfo", To: "acct"},
	}
	for _, e := range edges {
		if err := ed.AddEdge(e.From, e.To); err != nil {
			return err
		}
	}
	return nil
}

// demoStep is the screen-space distance one keypress moves a grabbed node.
const demoStep = 20.0

// demoModel is the bubbletea model driving the editor.
type demoModel struct {
	ed      *editor.Editor
	changes *int

	nodes   []editor.ScreenNode
	cursor  int
	grabbed string
	grabPos geom.Point

	width  int
	height int
}

func newDemoModel(ed *editor.Editor, changes *int) demoModel {
	m := demoModel{ed: ed, changes: changes, width: 80, height: 24}
	m.refresh()
	return m
}

func (m *demoModel) refresh() {
	m.nodes = m.ed.ScreenNodes()
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m demoModel) Init() tea.Cmd {
	return nil
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.grabbed != "" {
				m.moveGrabbed(0, -demoStep)
			} else if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.grabbed != "" {
				m.moveGrabbed(0, demoStep)
			} else if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
		case "left", "h":
			if m.grabbed != "" {
				m.moveGrabbed(-demoStep, 0)
			}
		case "right", "l":
			if m.grabbed != "" {
				m.moveGrabbed(demoStep, 0)
			}
		case " ", "enter":
			m.toggleGrab()
		case "esc":
			if m.grabbed != "" {
				// Drop in place; a short drag reattaches to the old parent.
				m.ed.DragEnd(m.grabbed, m.grabPos)
				m.grabbed = ""
				m.refresh()
			}
		case "L":
			m.ed.ApplyLayout()
			m.refresh()
		case "f":
			m.ed.FitView()
			m.refresh()
		case "+", "=":
			m.ed.Zoom(1.25)
			m.refresh()
		case "-":
			m.ed.Zoom(0.8)
			m.refresh()
		}
	}
	return m, nil
}

func (m *demoModel) toggleGrab() {
	if m.grabbed != "" {
		m.ed.DragEnd(m.grabbed, m.grabPos)
		m.grabbed = ""
		m.refresh()
		return
	}
	if len(m.nodes) == 0 {
		return
	}
	n := m.nodes[m.cursor]
	m.grabbed = n.ID
	m.grabPos = n.Pos
	m.ed.DragStart(n.ID, n.Pos)
	m.refresh()
}

func (m *demoModel) moveGrabbed(dx, dy float64) {
	m.grabPos = geom.Point{X: m.grabPos.X + dx, Y: m.grabPos.Y + dy}
	m.ed.DragMove(m.grabbed, m.grabPos)
	m.refresh()
}

func (m demoModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("OrgCanvas Demo"))
	b.WriteString("\n")
	if m.grabbed == "" {
		b.WriteString(demoDimStyle.Render("↑/↓ select  ⏎ grab  L layout  f fit  +/- zoom  q quit"))
	} else {
		b.WriteString(demoDimStyle.Render("arrows move  ⏎ drop  esc drop in place"))
	}
	b.WriteString("\n\n")

	target, hasTarget := m.ed.Target()
	for i, n := range m.nodes {
		cursor := "  "
		if i == m.cursor && m.grabbed == "" {
			cursor = "▸ "
		}

		marker := " "
		switch {
		case n.ID == m.grabbed:
			marker = "✋"
		case n.Root:
			marker = "■"
		case n.Free:
			marker = "○"
		}

		line := fmt.Sprintf("%s%s %-14s %s", cursor, marker, n.Label,
			demoDimStyle.Render(fmt.Sprintf("(%.0f, %.0f)", n.Pos.X, n.Pos.Y)))

		switch {
		case n.ID == m.grabbed:
			b.WriteString(demoGrabbedStyle.Render(line))
		case hasTarget && n.ID == target:
			b.WriteString(demoTargetStyle.Render(line + "  ← drop target"))
		case i == m.cursor && m.grabbed == "":
			b.WriteString(demoSelectedStyle.Render(line))
		default:
			b.WriteString(demoNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(demoDimStyle.Render(strings.Repeat("-", 48)))
	b.WriteString("\n")

	status := fmt.Sprintf("  %d nodes   %d hierarchy changes", len(m.nodes), *m.changes)
	if m.grabbed != "" {
		if m.ed.OverRootBand() {
			status += "   " + demoTargetStyle.Render("root band: release to promote")
		} else if hasTarget {
			status += fmt.Sprintf("   over %s", target)
		} else {
			status += "   no target"
		}
	}
	b.WriteString(demoDimStyle.Render(status))
	b.WriteString("\n")

	return b.String()
}
