package bubbletea

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coach"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Lines taken by everything except the viewport: two header lines, the
// status line, the quick-prompt bar and the input line.
const chromeHeight = 5

// Model is the Bubble Tea model for the coach chat.
type Model struct {
	// Input is the message input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation. Exported for test access.
	Viewport viewport.Model
	// Spinner is the typing indicator.
	Spinner spinner.Model

	send    ChatFunc
	session *coach.Session
	theme   coach.Theme
	styles  Styles
	prompts []string
	now     Clock

	blocks []MessageBlock
	reply  *CoachBlock // reply being streamed, nil between turns

	running bool
	cancel  context.CancelFunc
	eventCh chan coach.Event
	doneCh  chan error
	err     error
	ready   bool
}

// Option configures a [Model].
type Option func(*Model)

// WithQuickPrompts sets the suggestions offered above the input. Alt+1
// through Alt+9 send them.
func WithQuickPrompts(prompts []string) Option {
	return func(m *Model) { m.prompts = prompts }
}

// WithClock sets the time source for message timestamps.
func WithClock(now Clock) Option {
	return func(m *Model) { m.now = now }
}

// New creates a chat Model. Messages already in session are shown when the
// window size is first known.
func New(send ChatFunc, session *coach.Session, theme coach.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask your AI coach..."
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.Coach

	m := Model{
		Input:   ti,
		Spinner: sp,
		send:    send,
		session: session,
		theme:   theme,
		styles:  styles,
		now:     time.Now,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Running returns whether a reply is streaming.
func (m Model) Running() bool { return m.running }

// Err returns the last reply failure, if any. Cancellation is not a failure.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		m.refresh()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case ReplyDoneMsg:
		m = m.finishReply(msg.Err)
		m.refresh()
		cmd := m.Input.Focus()
		return m, cmd
	}

	var cmds []tea.Cmd
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
	b.WriteString(m.styles.Title.Render("✦ AI Fitness Coach"))
	b.WriteString("\n")
	b.WriteString(m.styles.Success.Render("Online • Ready to help"))
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.promptBar(m.Viewport.Width))
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	vpHeight := max(msg.Height-chromeHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.refresh()

	m.Input.Width = max(msg.Width-runewidth.StringWidth(m.Input.Prompt)-1, 1)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.stop()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m.stop()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	if prompt, ok := m.quickPrompt(msg); ok {
		if m.running {
			return m, nil
		}
		return m.submit(prompt)
	}

	if m.running {
		return m, nil
	}

	// Runes go to the input only, so typing never scrolls the viewport.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// quickPrompt maps Alt+N to the Nth quick prompt.
func (m Model) quickPrompt(msg tea.KeyMsg) (string, bool) {
	if !msg.Alt || msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return "", false
	}
	n := int(msg.Runes[0] - '0')
	if n < 1 || n > len(m.prompts) || n > 9 {
		return "", false
	}
	return m.prompts[n-1], true
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.now(), m.now, m.styles))
	m.reply = nil
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan coach.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startChat(ctx, m.send, m.session, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.Spinner.Tick,
	)
}

func (m Model) processEvent(evt coach.Event) Model {
	switch e := evt.(type) {
	case coach.EventTextDelta:
		if m.reply == nil {
			m.reply = NewCoachBlock(m.now(), m.now, m.theme, m.styles)
			m.blocks = append(m.blocks, m.reply)
		}
		m.reply.Append(e.Delta)
	}
	return m
}

func (m Model) finishReply(err error) Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	if err != nil && m.reply != nil {
		m.reply.MarkPartial()
	}
	m.reply = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		m.err = err
		m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
	}
	return m
}

// renderSession creates blocks from the messages already in the session.
func (m Model) renderSession() Model {
	for _, msg := range m.session.Messages {
		switch msg := msg.(type) {
		case coach.UserMessage:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Text, msg.Timestamp, m.now, m.styles))
		case coach.AssistantMessage:
			if msg.Text == "" {
				continue
			}
			b := NewCoachBlock(msg.Timestamp, m.now, m.theme, m.styles)
			b.Append(msg.Text)
			if msg.StopReason == coach.StopError || msg.StopReason == coach.StopAborted {
				b.MarkPartial()
			}
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

// refresh re-renders the conversation and scrolls to the newest message.
func (m *Model) refresh() {
	if m.Viewport.Width == 0 {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	views := make([]string, len(m.blocks))
	for i, block := range m.blocks {
		views[i] = block.View(m.Viewport.Width)
	}
	return strings.Join(views, "\n\n")
}

func (m Model) statusLine() string {
	switch {
	case m.running:
		return m.Spinner.View() + " " + m.styles.Muted.Render("Coach is typing... (Esc to stop)")
	case m.err != nil:
		return m.styles.Error.Render(Describe(m.err)) + " " + m.styles.Muted.Render("Try again?")
	default:
		return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
	}
}

// promptBar lists the quick prompts with their shortcuts, cut to width.
func (m Model) promptBar(width int) string {
	if len(m.prompts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.prompts))
	for i, p := range m.prompts {
		if i >= 9 {
			break
		}
		parts = append(parts, "alt+"+strconv.Itoa(i+1)+" "+p)
	}
	bar := runewidth.Truncate(strings.Join(parts, " │ "), width, "…")
	if m.running {
		return m.styles.Muted.Render(bar)
	}
	return m.styles.Prompt.Render(bar)
}

// startChat runs the ChatFunc in a goroutine and signals completion.
func startChat(ctx context.Context, send ChatFunc, session *coach.Session, text string, eventCh chan<- coach.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := send(ctx, session, text, func(delta string) {
			select {
			case eventCh <- coach.EventTextDelta{Delta: delta}:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the error from doneCh and returns ReplyDoneMsg.
func listenForEvent(ch <-chan coach.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return ReplyDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
