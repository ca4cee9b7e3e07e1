package cli

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/highlight"
	"github.com/matzehuels/linkscope/pkg/io"
	"github.com/matzehuels/linkscope/pkg/session"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	modeStyle         = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// Explore Command
// =============================================================================

// exploreCommand creates the explore command: an interactive terminal view
// driven by the same highlight state machine as the web view.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags encodeFlags

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a graph interactively in the terminal",
		Long: `Explore lists the nodes of a graph with their encoded colors and lets you
hover, select, search and filter them. The highlight rules are the same as
in the web view.

Keys: ↑/↓ hover, enter select, / search, f cycle filter chips,
x clear selection, esc reset, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, data, err := c.loadEncoder(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			format, _ := io.DetectFormat(args[0])
			doc := storage.NewDocument(enc.Graph(), filepath.Base(args[0]), string(format), cache.Hash(data))
			sess, err := session.New(doc, enc.Config())
			if err != nil {
				return err
			}

			p := tea.NewProgram(newExploreModel(sess),
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// ExploreModel
// =============================================================================

// ExploreModel is the bubbletea model for the explore view. Every key press
// becomes a highlight message dispatched to the session; the view is drawn
// from the published frame.
type ExploreModel struct {
	sess  *session.Session
	nodes []*graph.Node
	chips []highlight.Filter

	Cursor int
	Offset int
	Height int

	searching bool
	query     string
	chip      int // index into chips, -1 when none is active
	info      highlight.Ref
}

func newExploreModel(sess *session.Session) ExploreModel {
	enc := sess.View().Frame.Encoder()
	g := enc.Graph()
	nodes := make([]*graph.Node, len(g.Nodes))
	for i := range g.Nodes {
		nodes[i] = &g.Nodes[i]
	}
	return ExploreModel{
		sess:   sess,
		nodes:  nodes,
		chips:  enc.Legend().Chips(),
		Height: 15,
		chip:   -1,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

// dispatch sends msg to the session and applies the resulting effect to
// the host-side widgets.
func (m ExploreModel) dispatch(msg highlight.Msg) ExploreModel {
	_, eff := m.sess.Dispatch(msg)
	if eff.CloseInfo {
		m.info = highlight.Ref{}
	}
	if !eff.ShowInfo.IsZero() {
		m.info = eff.ShowInfo
	}
	if eff.ClearChip {
		m.chip = -1
	}
	if eff.ClearSearch {
		m.query = ""
		m.searching = false
	}
	if eff.Focus != "" {
		if i := slices.IndexFunc(m.nodes, func(n *graph.Node) bool { return n.ID == eff.Focus }); i >= 0 {
			m = m.moveTo(i)
		}
	}
	return m
}

func (m ExploreModel) moveTo(i int) ExploreModel {
	m.Cursor = i
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m ExploreModel) hoverCursor() ExploreModel {
	if len(m.nodes) == 0 {
		return m
	}
	return m.dispatch(highlight.Hover{Ref: highlight.Node(m.nodes[m.Cursor].ID)})
}

func (m ExploreModel) searchKeys() []string {
	if k := m.sess.Config().LabelBy; k != "" {
		return []string{k}
	}
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m = m.moveTo(m.Cursor - 1).hoverCursor()
			}
		case "down", "j":
			if m.Cursor < len(m.nodes)-1 {
				m = m.moveTo(m.Cursor + 1).hoverCursor()
			}
		case "enter":
			if len(m.nodes) > 0 {
				m = m.dispatch(highlight.Click{Ref: highlight.Node(m.nodes[m.Cursor].ID)})
			}
		case "x":
			m = m.dispatch(highlight.BackgroundClick{})
		case "/":
			m.searching = true
		case "f":
			m = m.cycleChip()
		case "esc":
			m = m.dispatch(highlight.Reset{})
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m ExploreModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		return m, nil
	case tea.KeyBackspace:
		if m.query == "" {
			return m, nil
		}
		r := []rune(m.query)
		m.query = string(r[:len(r)-1])
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	default:
		return m, nil
	}
	query := m.query
	m = m.dispatch(highlight.SearchChanged{Term: query, Keys: m.searchKeys()})
	m.query = query
	m.searching = true
	return m, nil
}

// cycleChip activates the next legend chip; past the last one the active
// chip is toggled off.
func (m ExploreModel) cycleChip() ExploreModel {
	if len(m.chips) == 0 {
		return m
	}
	if m.chip == len(m.chips)-1 {
		m = m.dispatch(highlight.FilterToggle{Filter: m.chips[m.chip]})
		m.chip = -1
		return m
	}
	next := m.chip + 1
	m = m.dispatch(highlight.FilterToggle{Filter: m.chips[next]})
	m.chip = next
	return m
}

// =============================================================================
// View
// =============================================================================

func (m ExploreModel) View() string {
	v := m.sess.View()
	f := v.Frame
	state := f.State()

	var b strings.Builder
	b.WriteString(StyleTitle.Render("linkscope "+v.Document.Filename) + "  " + modeStyle.Render(state.Mode.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ hover  ⏎ select  / search  f filter  x clear  esc reset  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.statusLine(state))
	b.WriteString("\n")

	b.WriteString(m.nodeTable(f))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.nodes)), len(m.nodes))))

	if panel := m.infoPanel(f); panel != "" {
		b.WriteString("\n\n")
		b.WriteString(panel)
	}
	return b.String()
}

func (m ExploreModel) statusLine(state highlight.State) string {
	var parts []string
	switch {
	case m.searching:
		parts = append(parts, "search: "+StyleHighlight.Render(m.query+"▏"))
	case m.query != "":
		parts = append(parts, "search: "+StyleValue.Render(m.query))
	}
	if m.chip >= 0 {
		c := m.chips[m.chip]
		parts = append(parts, fmt.Sprintf("filter: %s %s=%s", c.Kind, c.Attribute, StyleValue.Render(c.Value)))
	}
	parts = append(parts, fmt.Sprintf("%d nodes · %d links highlighted", state.Nodes.Len(), state.Edges.Len()))
	return listDimStyle.Render(strings.Join(parts, "  "))
}

func (m ExploreModel) nodeTable(f encode.Frame) string {
	end := min(m.Offset+m.Height, len(m.nodes))
	state := f.State()

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		label := f.NodeLabel(n)
		if label == "" {
			label = n.ID
		}
		mark := ""
		if state.HasNode(n.ID) {
			mark = "●"
		}
		rows = append(rows, []string{cursor, swatch(f.NodeColor(n)), label, fmt.Sprintf("%.1f", f.NodeSize(n)), mark})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Node", "Size", "Hl").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.nodes) || col == 1 {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case state.Suppressed && !state.HasNode(m.nodes[idx].ID):
				return listDimStyle
			}
			return listNormalStyle
		})
	return t.Render()
}

func (m ExploreModel) infoPanel(f encode.Frame) string {
	if m.info.IsZero() {
		return ""
	}
	ix := f.Encoder().Index()

	var title string
	var attrs map[string]any
	switch m.info.Kind {
	case highlight.EdgeKind:
		e, ok := ix.Edge(m.info.ID)
		if !ok {
			return ""
		}
		title = e.Source + " → " + e.Target
		attrs = e.Attrs
	default:
		n, ok := ix.Node(m.info.ID)
		if !ok {
			return ""
		}
		title = n.Label()
		attrs = maps.Clone(n.Attrs)
		if attrs == nil {
			attrs = map[string]any{}
		}
		attrs["degree"] = int64(ix.Degree(n.ID))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		s, _ := graph.Text(attrs[k])
		b.WriteString("\n")
		b.WriteString(styleKey.Render(k) + " " + StyleValue.Render(s))
	}
	return panelStyle.Render(b.String())
}
