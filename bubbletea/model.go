package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/ansi"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

const inputHeight = 3

// Config describes what the playground is driving.
type Config struct {
	Mode    string // e.g. "generate", "ask"; shown in the idle status line
	Model   string
	History []playground.Transcript // rendered on start
}

// Model is the Bubble Tea model for the playground.
type Model struct {
	// Input is the prompt editor. Exported for test access.
	Input textarea.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates while a stream is running.
	Spinner spinner.Model

	run    RunFunc
	theme  playground.Theme
	styles Styles
	config Config

	blocks     []MessageBlock
	blockFocus int // index of the focused collapsible block (-1 = none)

	// Blocks of the current run, created on first use.
	response *ResponseBlock
	sources  *SourcesBlock
	progress *ProgressBlock
	stats    runStats

	running bool
	cancel  context.CancelFunc
	eventCh chan playground.Event
	doneCh  chan error
	err     error
	ready   bool
}

// runStats feeds the status line.
type runStats struct {
	usage      *playground.Usage
	confidence *float64
	elapsed    time.Duration
	percent    float64
	started    time.Time
	state      playground.StreamState
}

// New creates a Model.
func New(run RunFunc, theme playground.Theme, config Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a prompt..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	styles := NewStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.Accent))

	return Model{
		Input:      ta,
		Spinner:    sp,
		run:        run,
		theme:      theme,
		styles:     styles,
		config:     config,
		blockFocus: -1,
	}
}

// Running reports whether a stream is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last run, if any. Cancellation is not an error.
func (m Model) Err() error { return m.err }

// State returns the state of the last run.
func (m Model) State() playground.StreamState { return m.stats.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case RunDoneMsg:
		m = m.finishRun(msg.Err)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		cmd := m.Input.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputHeight-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderHistory()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.SetWidth(msg.Width)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if msg.Alt {
			// Newline in the editor.
			break
		}
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
		}
		return m, nil
	}

	if m.running {
		return m, nil
	}

	// Runes go to the editor only; 'j'/'k' must not scroll while typing.
	var cmd tea.Cmd
	var cmds []tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.Reset()
	m.err = nil

	m.blocks = append(m.blocks, NewPromptBlock(text, m.styles))
	m.response, m.sources, m.progress = nil, nil, nil
	m.stats = runStats{started: time.Now(), state: playground.StreamStateStreaming}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan playground.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startRun(m.run, ctx, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.Spinner.Tick,
	)
}

func (m Model) finishRun(err error) Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil
	if m.response != nil {
		m.response.Finish()
	}
	m.response, m.sources, m.progress = nil, nil, nil
	if m.stats.elapsed == 0 && !m.stats.started.IsZero() {
		m.stats.elapsed = time.Since(m.stats.started).Round(100 * time.Millisecond)
	}
	switch {
	case err == nil:
		m.stats.state = playground.StreamStateComplete
	case errors.Is(err, playground.ErrCanceled):
		m.stats.state = playground.StreamStateCanceled
	default:
		m.stats.state = playground.StreamStateError
		m.err = err
		m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
	}
	return m
}

func sanitizeSources(sources []playground.Source) []playground.Source {
	out := make([]playground.Source, len(sources))
	for i, s := range sources {
		s.ID = ansi.Sanitize(s.ID)
		s.Title = ansi.Sanitize(s.Title)
		s.URI = ansi.Sanitize(s.URI)
		s.Snippet = ansi.Sanitize(s.Snippet)
		out[i] = s
	}
	return out
}

// processEvent routes a streaming event to the block that displays it.
func (m Model) processEvent(evt playground.Event) Model {
	switch e := evt.(type) {
	case playground.EventContent:
		if m.response == nil {
			m.response = NewResponseBlock(m.theme)
			m.blocks = append(m.blocks, m.response)
		}
		m.response.Append(ansi.Sanitize(e.Delta))
	case playground.EventSources:
		if m.sources == nil {
			m.sources = NewSourcesBlock(m.styles)
			m.blocks = append(m.blocks, m.sources)
			m.blockFocus = len(m.blocks) - 1
		}
		m.sources.Add(sanitizeSources(e.Sources))
	case playground.EventProgress:
		m.ensureProgress().Set(ansi.Sanitize(e.Status), e.Percent)
		m.stats.percent = max(m.stats.percent, e.Percent)
	case playground.EventArtifact:
		m.ensureProgress().AddArtifact(ansi.Sanitize(e.URL))
	case playground.EventUsage:
		u := e.Usage
		m.stats.usage = &u
	case playground.EventConfidence:
		score := e.Score
		m.stats.confidence = &score
	case playground.EventComplete:
		if e.Elapsed > 0 {
			m.stats.elapsed = e.Elapsed
		}
		if m.response != nil {
			m.response.Finish()
		}
	}
	return m
}

func (m *Model) ensureProgress() *ProgressBlock {
	if m.progress == nil {
		m.progress = NewProgressBlock(m.styles)
		m.blocks = append(m.blocks, m.progress)
	}
	return m.progress
}

// renderHistory creates blocks for previously recorded transcripts.
func (m Model) renderHistory() Model {
	for _, t := range m.config.History {
		if t.Input != "" {
			m.blocks = append(m.blocks, NewPromptBlock(t.Input, m.styles))
		}
		if t.Content != "" {
			b := NewResponseBlock(m.theme)
			b.Append(ansi.Sanitize(t.Content))
			b.Finish()
			m.blocks = append(m.blocks, b)
		}
		if len(t.Sources) > 0 {
			b := NewSourcesBlock(m.styles)
			b.Add(sanitizeSources(t.Sources))
			m.blocks = append(m.blocks, b)
			m.blockFocus = len(m.blocks) - 1
		}
		if t.Status != "" || len(t.Artifacts) > 0 {
			b := NewProgressBlock(m.styles)
			b.Set(t.Status, t.Progress)
			for _, a := range t.Artifacts {
				b.AddArtifact(a)
			}
			m.blocks = append(m.blocks, b)
		}
		if t.State == playground.StreamStateError && t.Err != "" {
			m.blocks = append(m.blocks, NewErrorBlock(errors.New(t.Err), m.styles))
		}
	}
	return m
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(strings.TrimRight(block.View(m.Viewport.Width), "\n"))
	}
	return b.String()
}

// blockSeparator keeps sources and progress attached to the response above
// them. Everything else is separated by a blank line.
func blockSeparator(prev, curr MessageBlock) string {
	switch curr.(type) {
	case *SourcesBlock, *ProgressBlock:
		if _, ok := prev.(*PromptBlock); !ok {
			return "\n"
		}
	}
	return "\n\n"
}

// cycleFocusPrev moves blockFocus to the previous sources block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	n := len(m.blocks)
	start := m.blockFocus - 1
	if start < 0 {
		start = n - 1
	}
	for i := range n {
		idx := (start - i + n) % n
		if _, ok := m.blocks[idx].(*SourcesBlock); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.running {
		line := runewidth.Truncate(strings.Join(m.metrics(), " · "), max(width-2, 1), "…")
		return m.Spinner.View() + " " + m.styles.Muted.Render(line)
	}
	if m.err != nil {
		return m.styles.Error.Render(runewidth.Truncate(ansi.Sanitize(fmt.Sprintf("Error: %v", m.err)), width, "…"))
	}
	if m.stats.state == playground.StreamStateNew {
		return m.styles.Muted.Render(runewidth.Truncate(m.hint(), width, "…"))
	}
	line := runewidth.Truncate(strings.Join(append(m.metrics(), m.hint()), " · "), width, "…")
	if m.stats.state == playground.StreamStateComplete {
		return m.styles.Success.Render(line)
	}
	return m.styles.Muted.Render(line)
}

func (m Model) metrics() []string {
	parts := []string{m.stats.state.String()}
	if u := m.stats.usage; u != nil {
		parts = append(parts, fmt.Sprintf("%d tokens", u.Total()))
	}
	if m.stats.elapsed > 0 {
		parts = append(parts, m.stats.elapsed.String())
	}
	if c := m.stats.confidence; c != nil {
		parts = append(parts, fmt.Sprintf("confidence %.0f%%", *c*100))
	}
	if m.stats.percent > 0 {
		parts = append(parts, fmt.Sprintf("%.0f%%", m.stats.percent))
	}
	return parts
}

func (m Model) hint() string {
	var parts []string
	if m.config.Mode != "" {
		parts = append(parts, m.config.Mode)
	}
	if m.config.Model != "" {
		parts = append(parts, m.config.Model)
	}
	parts = append(parts, "Enter to send, Alt+Enter for newline, Ctrl+C to quit")
	return strings.Join(parts, " · ")
}

// startRun runs one stream in a goroutine and signals completion.
func startRun(run RunFunc, ctx context.Context, input string, eventCh chan<- playground.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, input, func(e playground.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the channel
// closes it reads the run's error from doneCh and returns RunDoneMsg.
func listenForEvent(ch <-chan playground.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return RunDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
