package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/intent"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
)

// Submission is the snapshot handed to the submit function. It is built on
// the UI goroutine so the function never touches the session.
type Submission struct {
	Chain   config.ChainConfig
	Amount  string // major denom
	Minor   string // minor denom, already scaled
	Memo    string
	Intents []intent.Intent
}

// SubmitFunc broadcasts a submission and reports what happened.
type SubmitFunc func(ctx context.Context, sub Submission) Outcome

type submittedMsg struct{ outcome Outcome }

// keyMap defines the wizard key bindings
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Next   key.Binding
	Back   key.Binding
	Mode   key.Binding
	Search key.Binding
	Retry  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Next, k.Back, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Search},
		{k.Mode, k.Next, k.Back, k.Retry},
		{k.Help, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "equal/custom"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Options configures a Model.
type Options struct {
	Context    context.Context
	Chain      config.ChainConfig
	Validators []validator.ValidatorInfo
	Max        int
	Amount     string // prefilled amount in the major denom
	Receiver   string
	Submit     SubmitFunc
}

// Model is the bubbletea front-end over a Session.
type Model struct {
	opts    Options
	session *Session

	all      []validator.ValidatorInfo
	visible  []validator.ValidatorInfo
	cursor   int
	search   textinput.Model
	input    textinput.Model
	focused  bool // search box has focus
	lastErr  error
	busy     bool
	quitting bool

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	showHelp bool

	lastHash uint64
	cached   string
}

// NewModel builds the wizard for opts.Chain. Validators are shown in the
// order given.
func NewModel(opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	s := NewSession(opts.Chain, opts.Max)
	_ = s.SetAmount(opts.Amount)
	_ = s.SetReceiver(opts.Receiver)

	search := textinput.New()
	search.Placeholder = "moniker or address"
	search.CharLimit = 64
	search.Width = 40

	input := textinput.New()
	input.CharLimit = 32
	input.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		opts:    opts,
		session: s,
		all:     opts.Validators,
		visible: opts.Validators,
		search:  search,
		input:   input,
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
}

// Session exposes the underlying state machine.
func (m *Model) Session() *Session { return m.session }

// Cancelled reports whether the user quit before a submission finished.
func (m *Model) Cancelled() bool {
	_, ok := m.session.Outcome()
	return m.quitting && !ok
}

// Err is the last inline error shown to the user.
func (m *Model) Err() error { return m.lastErr }

func (m *Model) Init() tea.Cmd {
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submittedMsg:
		m.busy = false
		m.lastErr = m.session.Complete(msg.outcome)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focused {
		return m.handleSearch(msg)
	}
	if m.session.State() != StateConfirm && key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	switch m.session.State() {
	case StateSelectValidators:
		return m.handleSelect(msg)
	case StateSetWeights:
		return m.handleWeights(msg)
	case StateConfirm:
		return m.handleConfirm(msg)
	case StateResult:
		return m.handleResult(msg)
	}
	return m, nil
}

func (m *Model) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.search.SetValue("")
		m.applySearch()
		m.focused = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.focused = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()
	return m, cmd
}

func (m *Model) applySearch() {
	m.visible = validator.Search(m.all, m.search.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

func (m *Model) handleSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.lastErr = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1, len(m.visible))
	case key.Matches(msg, m.keys.Down):
		m.move(1, len(m.visible))
	case key.Matches(msg, m.keys.Search):
		m.focused = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Toggle):
		if len(m.visible) == 0 {
			return m, nil
		}
		_, m.lastErr = m.session.Toggle(m.visible[m.cursor].Intent())
	case key.Matches(msg, m.keys.Mode):
		m.lastErr = m.session.SetMode(1 - m.session.Mode())
	case key.Matches(msg, m.keys.Next):
		if m.lastErr = m.session.Next(); m.lastErr == nil {
			m.cursor = 0
			return m, m.enterState()
		}
	}
	return m, nil
}

func (m *Model) handleWeights(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vals := m.session.Selection().Validators()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.lastErr = m.session.Back()
		return m, m.enterState()
	case key.Matches(msg, m.keys.Up):
		m.move(-1, len(vals))
		return m, m.enterState()
	case key.Matches(msg, m.keys.Down):
		m.move(1, len(vals))
		return m, m.enterState()
	case key.Matches(msg, m.keys.Mode):
		m.lastErr = m.session.SetMode(intent.ModeEqual)
		if m.lastErr == nil {
			m.lastErr = m.session.Next()
		}
		return m, m.enterState()
	case key.Matches(msg, m.keys.Next):
		v := strings.TrimSpace(m.input.Value())
		if v != "" {
			pct, err := strconv.Atoi(v)
			if err != nil {
				m.lastErr = errorsmod.Wrapf(intent.ErrInvalidWeights, "%q is not a whole percent", v)
				return m, nil
			}
			if m.lastErr = m.session.SetWeight(vals[m.cursor].OperatorAddress, pct); m.lastErr != nil {
				return m, nil
			}
		}
		if m.cursor < len(vals)-1 {
			m.cursor++
			m.lastErr = nil
			return m, m.enterState()
		}
		if m.lastErr = m.session.Next(); m.lastErr == nil {
			return m, m.enterState()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.lastErr = m.session.Back()
		return m, m.enterState()
	case key.Matches(msg, m.keys.Next):
		amount := strings.TrimSpace(m.input.Value())
		if m.lastErr = m.session.SetAmount(amount); m.lastErr != nil {
			return m, nil
		}
		sub, err := m.submission()
		if m.lastErr = err; err != nil {
			return m, nil
		}
		m.busy = true
		submit, ctx := m.opts.Submit, m.opts.Context
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			if submit == nil {
				return submittedMsg{Outcome{Err: fmt.Errorf("no submitter configured")}}
			}
			return submittedMsg{submit(ctx, sub)}
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Retry):
		if m.lastErr = m.session.Retry(); m.lastErr == nil {
			return m, m.enterState()
		}
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Next):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// submission derives everything the broadcast needs from the session.
func (m *Model) submission() (Submission, error) {
	chain := m.session.Chain()
	minor, err := chain.ToMinor(m.session.Amount())
	if err != nil {
		return Submission{}, err
	}
	intents, err := m.session.Intents()
	if err != nil {
		return Submission{}, err
	}
	memo, err := m.session.Memo()
	if err != nil {
		return Submission{}, err
	}
	return Submission{
		Chain:   chain,
		Amount:  m.session.Amount(),
		Minor:   minor,
		Memo:    memo,
		Intents: intents,
	}, nil
}

// enterState prepares the input box for the current state.
func (m *Model) enterState() tea.Cmd {
	switch m.session.State() {
	case StateSetWeights:
		vals := m.session.Selection().Validators()
		if m.cursor >= len(vals) {
			m.cursor = 0
		}
		m.input.Placeholder = "percent"
		m.input.SetValue("")
		if pct, ok := m.session.Weights()[vals[m.cursor].OperatorAddress]; ok {
			m.input.SetValue(strconv.Itoa(pct))
		}
		return m.input.Focus()
	case StateConfirm:
		m.input.Placeholder = "amount in " + strings.ToUpper(m.session.Chain().MajorDenom)
		m.input.SetValue(m.session.Amount())
		return m.input.Focus()
	}
	m.cursor = 0
	m.input.Blur()
	return nil
}

func (m *Model) move(delta, n int) {
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1)
)

// View renders the current state. Rendering is skipped when nothing visible
// changed since the last frame.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	h := xxhash.Sum64String(m.fingerprint())
	if h == m.lastHash && m.cached != "" {
		return m.cached
	}
	m.lastHash = h
	m.cached = m.render()
	return m.cached
}

func (m *Model) fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%d|%v|%v|%v|%s|%s|", m.session.State(), m.cursor, m.width, m.focused, m.busy, m.showHelp, m.search.Value(), m.input.Value())
	fmt.Fprintf(&b, "%d|%s|", m.session.Mode(), strings.Join(m.session.Selection().Addresses(), ","))
	for _, a := range m.session.Selection().Addresses() {
		fmt.Fprintf(&b, "%d,", m.session.Weights()[a])
	}
	if m.lastErr != nil {
		b.WriteString(m.lastErr.Error())
	}
	if m.busy {
		b.WriteString(m.spinner.View())
	}
	if o, ok := m.session.Outcome(); ok {
		fmt.Fprintf(&b, "|%s|%v", o.TxHash, o.Err)
	}
	return b.String()
}

func (m *Model) render() string {
	var b strings.Builder
	chain := m.session.Chain()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Stake on %s", chain.Name)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s", chain.ChainID, m.session.State())))
	b.WriteString("\n\n")

	switch m.session.State() {
	case StateSelectValidators:
		m.renderSelect(&b)
	case StateSetWeights:
		m.renderWeights(&b)
	case StateConfirm:
		m.renderConfirm(&b)
	case StateResult:
		m.renderResult(&b)
	}

	if m.lastErr != nil {
		b.WriteString("\n" + errStyle.Render(m.lastErr.Error()) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderSelect(b *strings.Builder) {
	sel := m.session.Selection()
	fmt.Fprintf(b, "Selected %d/%d · weights: %s\n", sel.Len(), sel.Max(), m.session.Mode())
	if m.focused || m.search.Value() != "" {
		b.WriteString("Search: " + m.search.View() + "\n")
	}
	b.WriteString("\n")
	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("No validators match") + "\n")
		return
	}
	for i, v := range m.visible {
		mark := "[ ]"
		if sel.Contains(v.OperatorAddress) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %-24s %8s  %s", mark, truncate(v.Moniker, 24), v.Commission, dimStyle.Render(v.OperatorAddress))
		if !v.Active() {
			line += dimStyle.Render(" (inactive)")
		}
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
}

func (m *Model) renderWeights(b *strings.Builder) {
	vals := m.session.Selection().Validators()
	w := m.session.Weights()
	fmt.Fprintf(b, "Assign percentages (total %d/100)\n\n", w.Sum(m.session.Selection().Addresses()))
	for i, v := range vals {
		pct := w[v.OperatorAddress]
		line := fmt.Sprintf("%-24s %3d%%", truncate(v.Name, 24), pct)
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line + "  " + m.input.View()
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
}

func (m *Model) renderConfirm(b *strings.Builder) {
	var body strings.Builder
	if intents, err := m.session.Intents(); err == nil {
		for _, it := range intents {
			name := it.Address
			if v, ok := m.selected(it.Address); ok && v.Name != "" {
				name = v.Name
			}
			fmt.Fprintf(&body, "%-24s %s\n", truncate(name, 24), it.Percent())
		}
	}
	if r := m.session.Receiver(); r != "" && !m.session.Chain().Is118 {
		fmt.Fprintf(&body, "\nReceiver: %s\n", r)
	}
	b.WriteString(boxStyle.Render(strings.TrimRight(body.String(), "\n")) + "\n\n")
	if m.busy {
		b.WriteString(m.spinner.View() + " Broadcasting...\n")
		return
	}
	b.WriteString("Amount: " + m.input.View() + "\n")
}

func (m *Model) renderResult(b *strings.Builder) {
	o, _ := m.session.Outcome()
	if o.OK() {
		b.WriteString(successStyle.Render("Staked") + "\n")
		fmt.Fprintf(b, "Tx: %s\n", o.TxHash)
		if o.Height > 0 {
			fmt.Fprintf(b, "Height: %d\n", o.Height)
		}
		return
	}
	b.WriteString(errStyle.Render("Submission failed: "+o.Err.Error()) + "\n")
	b.WriteString(dimStyle.Render("Press r to try again; your validators and weights were kept.") + "\n")
}

func (m *Model) selected(addr string) (intent.Validator, bool) {
	for _, v := range m.session.Selection().Validators() {
		if v.OperatorAddress == addr {
			return v, true
		}
	}
	return intent.Validator{}, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
