package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"artassist/internal/config"
	"artassist/internal/imageio"
	"artassist/internal/logging"
	"artassist/internal/model"
	"artassist/internal/pipeline"
	"artassist/internal/poll"
	"artassist/internal/progress"
	"artassist/internal/sdapi"
	"artassist/internal/util"
)

const logViewLines = 8

// Deps is everything the panel needs, assembled by the panel command.
type Deps struct {
	Settings *config.Settings
	Client   *sdapi.Client
	Service  *pipeline.Service
	Poller   *poll.Poller
	Store    *imageio.Store
	Ring     *logging.Ring
	Image    string
	Hint     string
}

// Model is the bubbletea model for the control panel.
type Model struct {
	ctx  context.Context
	deps Deps

	// controls
	task     model.Task
	strength model.StrengthLabel
	detail   model.DetailMode
	count    int
	seed     int64

	// live state
	running  bool
	serverOK bool
	display  poll.Display
	status   string
	results  []model.ResultImage
	lastErr  error

	// widgets
	bar     bubblesprogress.Model
	spin    spinner.Model
	logs    viewport.Model
	width   int
	height  int
	styles  Styles
	eventCh chan tea.Msg
}

// NewModel builds the panel in its idle form.
func NewModel(ctx context.Context, deps Deps) Model {
	sty := defaultStyles()
	sp := spinner.New()
	sp.Style = sty.Spinner

	logs := viewport.New(80, logViewLines)

	return Model{
		ctx:      ctx,
		deps:     deps,
		task:     model.TaskCleanup,
		strength: model.StrengthMedium,
		detail:   model.DetailFace,
		count:    1,
		seed:     -1,
		status:   "Ready",
		bar:      bubblesprogress.New(bubblesprogress.WithDefaultGradient(), bubblesprogress.WithWidth(40)),
		spin:     sp,
		logs:     logs,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.tickCmd(), m.pollCmd(), m.listenEventsCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logs.Width = msg.Width - 4

	case tickMsg:
		return m, tea.Batch(m.pollCmd(), m.tickCmd())

	case pollMsg:
		m.display = msg.Display
		m.serverOK = msg.ServerOK
		m.logs.SetContent(strings.Join(m.deps.Ring.Tail(100), "\n"))
		m.logs.GotoBottom()

	case batchUpdateMsg:
		m.status = msg.U.Message

	case batchImageMsg:
		m.results = append(m.results, msg.I.Result)

	case batchResultMsg:
		m.running = false
		m.lastErr = msg.R.Err
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.spin, c = m.spin.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.running {
			m.cancelBatch()
		}
		return m, tea.Quit

	case "enter", "r":
		if m.running || m.deps.Image == "" {
			if m.deps.Image == "" {
				m.status = "No source image (start the panel with one: artassist panel sketch.png)"
			}
			return m, m.listenEventsCmd()
		}
		m.running = true
		m.lastErr = nil
		m.results = nil
		m.status = "Starting batch"
		m.startBatch()
		return m, m.listenEventsCmd()

	case "c":
		if m.running {
			m.cancelBatch()
			m.status = "Cancelling after the current image"
		}
		return m, m.listenEventsCmd()

	case "tab", "t":
		if !m.running {
			if m.task == model.TaskCleanup {
				m.task = model.TaskFaceFix
			} else {
				m.task = model.TaskCleanup
			}
		}

	case "s":
		if !m.running {
			m.strength = nextStrength(m.strength)
		}

	case "d":
		if !m.running && m.task == model.TaskCleanup {
			m.detail = nextDetail(m.detail)
		}

	case "+", "=":
		if !m.running && m.count < 20 {
			m.count++
		}

	case "-":
		if !m.running && m.count > 1 {
			m.count--
		}

	case "o":
		dir := m.deps.Store.TodayDir()
		if err := util.OpenFileManager(dir); err != nil {
			if err = util.OpenFileManager(m.deps.Store.BaseDir); err != nil {
				m.status = fmt.Sprintf("Open folder failed: %v", err)
			}
		}
	}
	return m, m.listenEventsCmd()
}

// startBatch launches the orchestrator in the background; events come back
// through eventCh.
func (m Model) startBatch() {
	req := model.BatchRequest{
		Task:      m.task,
		ImagePath: m.deps.Image,
		Hint:      m.deps.Hint,
		Count:     m.count,
		Strength:  m.strength,
		Detail:    m.detail,
		Seed:      m.seed,
	}
	go func() {
		// Terminal state reaches the panel through the reporter.
		_, _ = m.deps.Service.Run(m.ctx, req)
	}()
}

// cancelBatch applies both cancellation tiers: stop at the next image
// boundary and interrupt the in-flight job.
func (m Model) cancelBatch() {
	m.deps.Service.Cancel().Request()
	go func() {
		ictx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.deps.Client.Interrupt(ictx)
	}()
}

func (m Model) tickCmd() tea.Cmd {
	interval := m.deps.Settings.Progress.PollInterval
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		d := m.deps.Poller.Poll(m.ctx)
		ok := m.deps.Client.Ping(m.ctx) == nil
		return pollMsg{Display: d, ServerOK: ok}
	}
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func nextStrength(s model.StrengthLabel) model.StrengthLabel {
	switch s {
	case model.StrengthWeak:
		return model.StrengthMedium
	case model.StrengthMedium:
		return model.StrengthStrong
	default:
		return model.StrengthWeak
	}
}

func nextDetail(d model.DetailMode) model.DetailMode {
	switch d {
	case model.DetailNone:
		return model.DetailFace
	case model.DetailFace:
		return model.DetailHands
	case model.DetailHands:
		return model.DetailFaceHands
	default:
		return model.DetailNone
	}
}

// teaReporter bridges orchestrator events into the bubbletea loop.
type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Terminal phases must arrive; transient ones may be dropped under load.
	switch u.Phase {
	case progress.PhaseCompleted, progress.PhaseCancelled, progress.PhaseError:
		r.ch <- batchUpdateMsg{U: u}
	default:
		select {
		case r.ch <- batchUpdateMsg{U: u}:
		default:
		}
	}
}

func (r teaReporter) Image(i progress.ImageDone) {
	r.ch <- batchImageMsg{I: i}
}

func (r teaReporter) Result(res progress.Result) {
	r.ch <- batchResultMsg{R: res}
}
