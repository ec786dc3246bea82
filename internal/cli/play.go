package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/message"

	"github.com/matzehuels/barrace/pkg/pipeline"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/timeline"
)

const (
	defaultTermWidth = 80
	maxLabelWidth    = 24
	minBarCells      = 10
)

// playCommand creates the play command, an interactive terminal player.
func (c *CLI) playCommand() *cobra.Command {
	var in inputFlags
	var locale string
	var paused bool

	cmd := &cobra.Command{
		Use:   "play <dataset>",
		Short: "Play a race in the terminal",
		Long: `Play runs the race's timeline in real time and draws the bars in the
terminal. Playback follows the settings' duration and loop delays.

Keys: space toggles playback, ←/→ step, home/end jump, l toggles loop,
? shows all keys, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd.Context(), in.options(args[0]), locale, !paused)
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&locale, "locale", "", "locale for counter digit grouping (default en)")
	cmd.Flags().BoolVar(&paused, "paused", false, "start paused at the first step")

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, opts pipeline.Options, locale string, autoplay bool) error {
	tag, err := pipeline.ParseLocale(locale)
	if err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	in, err := pipeline.Load(opts)
	if err != nil {
		return err
	}

	feed := newSnapshotFeed()
	driver, err := timeline.New(timeline.FromSettings(in.Settings.Timeline, in.Dataset.Len()),
		timeline.WithLogger(loggerFromContext(ctx)),
		timeline.WithOnChange(feed.push))
	if err != nil {
		return err
	}
	defer driver.Close()

	m := newPlayer(in.Composer(), driver, feed, race.NewPrinter(tag))
	m.width = terminalWidth()
	if autoplay {
		driver.Play()
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}

// =============================================================================
// Snapshot Feed
// =============================================================================

// snapshotMsg carries a driver snapshot into the program's update loop.
type snapshotMsg timeline.Snapshot

// snapshotFeed hands driver snapshots to the program. It keeps only the
// latest one so a slow terminal skips frames instead of blocking the driver.
type snapshotFeed struct {
	ch chan timeline.Snapshot
}

func newSnapshotFeed() *snapshotFeed {
	return &snapshotFeed{ch: make(chan timeline.Snapshot, 1)}
}

// push never blocks.
func (f *snapshotFeed) push(s timeline.Snapshot) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// wait returns a command that delivers the next snapshot.
func (f *snapshotFeed) wait() tea.Cmd {
	return func() tea.Msg { return snapshotMsg(<-f.ch) }
}

// =============================================================================
// Key Bindings
// =============================================================================

type playerKeyMap struct {
	Toggle  key.Binding
	Back    key.Binding
	Forward key.Binding
	Start   key.Binding
	End     key.Binding
	Loop    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k playerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Loop, k.Quit, k.Help}
}

func (k playerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Loop},
		{k.Back, k.Forward, k.Start, k.End},
		{k.Help, k.Quit},
	}
}

var playerKeys = playerKeyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "play/pause"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous step"),
	),
	Forward: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next step"),
	),
	Start: key.NewBinding(
		key.WithKeys("home", "0"),
		key.WithHelp("home", "first step"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "$"),
		key.WithHelp("end", "last step"),
	),
	Loop: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "loop"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// =============================================================================
// Model
// =============================================================================

type player struct {
	comp    *race.Composer
	driver  *timeline.Driver
	feed    *snapshotFeed
	printer *message.Printer
	keys    playerKeyMap
	help    help.Model

	snap  timeline.Snapshot
	frame *race.Frame
	err   error
	width int
}

func newPlayer(comp *race.Composer, d *timeline.Driver, feed *snapshotFeed, p *message.Printer) *player {
	m := &player{
		comp:    comp,
		driver:  d,
		feed:    feed,
		printer: p,
		keys:    playerKeys,
		help:    help.New(),
		width:   defaultTermWidth,
	}
	m.err = m.setSnapshot(d.Snapshot())
	return m
}

func (m *player) Init() tea.Cmd {
	return m.feed.wait()
}

func (m *player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.err = m.setSnapshot(timeline.Snapshot(msg))
		return m, m.feed.wait()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		m.err = nil
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.driver.Toggle()
		case key.Matches(msg, m.keys.Back):
			m.seek(math.Ceil(m.snap.Index) - 1)
		case key.Matches(msg, m.keys.Forward):
			m.seek(math.Floor(m.snap.Index) + 1)
		case key.Matches(msg, m.keys.Start):
			m.seek(0)
		case key.Matches(msg, m.keys.End):
			m.seek(m.driver.Options().Last())
		case key.Matches(msg, m.keys.Loop):
			opts := m.driver.Options()
			opts.Loop = !opts.Loop
			if err := m.driver.SetOptions(opts); err != nil {
				m.err = err
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		if err := m.setSnapshot(m.driver.Snapshot()); err != nil {
			m.err = err
		}
	}
	return m, nil
}

func (m *player) seek(index float64) {
	if err := m.driver.Seek(index); err != nil {
		m.err = err
	}
}

// setSnapshot composes the frame for s. On error the previous frame stays on
// screen.
func (m *player) setSnapshot(s timeline.Snapshot) error {
	m.snap = s
	f, err := m.comp.Frame(s.Index)
	if err != nil {
		return err
	}
	m.frame = f
	return nil
}

func (m *player) View() string {
	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n\n")
	if m.frame != nil {
		sb.WriteString(m.barsView())
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *player) headerView() string {
	opts := m.driver.Options()
	parts := []string{StyleTitle.Render(appName)}
	if m.frame != nil && m.frame.StepLabel != "" {
		parts = append(parts, StyleHighlight.Bold(true).Render(m.frame.StepLabel))
	}
	parts = append(parts,
		StyleDim.Render(fmt.Sprintf("%.2f / %g", m.snap.Index, opts.Last())),
		stateStyle(m.snap.State).Render(m.snap.State.String()))
	if opts.Loop {
		parts = append(parts, StyleDim.Render("loop"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func stateStyle(s timeline.State) lipgloss.Style {
	switch s {
	case timeline.Playing:
		return StyleSuccess
	case timeline.Stopped:
		return StyleDim
	default:
		return StyleWarning
	}
}

// barsView draws the visible bars top to bottom. Bars are ordered by their
// current offset so smooth rank changes swap rows once a bar passes another.
func (m *player) barsView() string {
	bars := m.frame.Visible()
	slices.SortStableFunc(bars, func(a, b race.Bar) int {
		switch {
		case a.Top < b.Top:
			return -1
		case a.Top > b.Top:
			return 1
		}
		return 0
	})

	labelWidth := 0
	counters := make([]string, len(bars))
	counterWidth := 0
	for i, b := range bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		counters[i] = race.FormatCounter(m.printer, b.Counter)
		counterWidth = max(counterWidth, len(counters[i]))
	}
	labelWidth = min(labelWidth, maxLabelWidth)
	cells := max(minBarCells, m.width-labelWidth-counterWidth-3)

	labelStyle := lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth).Align(lipgloss.Right)
	lines := make([]string, len(bars))
	for i, b := range bars {
		lines[i] = labelStyle.Render(b.Label) + " " +
			lipgloss.NewStyle().Background(lipgloss.Color(b.Color)).Render(strings.Repeat(" ", barCells(b.WidthPercent, cells))) + " " +
			StyleValue.Render(counters[i])
	}
	return strings.Join(lines, "\n")
}

// barCells converts a width percentage to terminal cells, never less than one.
func barCells(widthPercent float64, cells int) int {
	return max(1, int(math.Round(widthPercent/100*float64(cells))))
}
