package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/abelbrown/stories/internal/model"
	"github.com/abelbrown/stories/internal/otel"
	"github.com/abelbrown/stories/internal/player"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

// tickInterval is the story timer resolution.
const tickInterval = 100 * time.Millisecond

type screen int

const (
	screenCarousel screen = iota
	screenPlayer
)

// AppConfig wires the App to the core. The load functions return commands
// that run off the UI goroutine and report back with UsersLoaded and
// PageLoaded.
type AppConfig struct {
	LoadInitial func() tea.Cmd
	LoadNext    func(index int) tea.Cmd

	// Ledger is read and written only from Update and View.
	Ledger player.Ledger

	Log  *otel.Logger
	Ring *otel.RingBuffer

	// StoryDuration is how long each story shows before advancing.
	// Zero disables auto-advance.
	StoryDuration time.Duration
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the feed cursor. It receives users via messages.
type App struct {
	cfg AppConfig

	users   []model.User
	errMsg  string
	cursor  int
	width   int
	height  int
	ready   bool
	loading bool

	// Carousel scroll animation
	spring       harmonica.Spring
	scrollPos    float64
	scrollVel    float64
	scrollTarget float64
	animating    bool

	screen   screen
	player   *player.Player
	elapsed  time.Duration
	timerSeq int
	paused   bool

	spinner   spinner.Model
	progress  progress.Model
	help      help.Model
	ckeys     carouselKeys
	pkeys     playerKeys
	showDebug bool
}

// NewApp creates an App. Init starts the initial load when LoadInitial is set.
func NewApp(cfg AppConfig) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		cfg:      cfg,
		loading:  cfg.LoadInitial != nil,
		spring:   harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.8),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		ckeys:    defaultCarouselKeys(),
		pkeys:    defaultPlayerKeys(),
	}
}

// Init starts the initial load.
func (a App) Init() tea.Cmd {
	if a.cfg.LoadInitial == nil {
		return nil
	}
	return tea.Batch(a.cfg.LoadInitial(), a.spinner.Tick)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.cfg.Log.Debug(otel.KindMsgReceived, "ui", fmt.Sprintf("%T", msg))
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		a.cfg.Log.Debug(otel.KindKeyPress, "ui", msg.String())
		if a.screen == screenPlayer {
			return a.handlePlayerKey(msg)
		}
		return a.handleCarouselKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.progress.Width = max(10, msg.Width-4)
		a.help.Width = msg.Width
		return a, a.scrollTo(a.cursor)

	case UsersLoaded:
		a.loading = false
		a.users = msg.Users
		a.errMsg = msg.Err
		a.cursor = clampIndex(a.cursor, len(a.users))
		return a, a.scrollTo(a.cursor)

	case PageLoaded:
		if msg.Loaded && len(msg.Users) >= len(a.users) {
			a.users = msg.Users
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case frameMsg:
		a.scrollPos, a.scrollVel = a.spring.Update(a.scrollPos, a.scrollVel, a.scrollTarget)
		if math.Abs(a.scrollPos-a.scrollTarget) < 0.01 && math.Abs(a.scrollVel) < 0.01 {
			a.scrollPos, a.scrollVel = a.scrollTarget, 0
			a.animating = false
			return a, nil
		}
		return a, frame()

	case storyTick:
		return a.handleStoryTick(msg)
	}

	return a, nil
}

// handleCarouselKey processes keyboard input on the carousel.
func (a App) handleCarouselKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.ckeys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.ckeys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, a.ckeys.Retry):
		if a.cfg.LoadInitial == nil || a.loading {
			return a, nil
		}
		a.loading = true
		a.errMsg = ""
		return a, tea.Batch(a.cfg.LoadInitial(), a.spinner.Tick)

	case key.Matches(msg, a.ckeys.Left):
		return a.selectUser(a.cursor - 1)

	case key.Matches(msg, a.ckeys.Right):
		return a.selectUser(a.cursor + 1)

	case key.Matches(msg, a.ckeys.First):
		return a.selectUser(0)

	case key.Matches(msg, a.ckeys.Last):
		return a.selectUser(len(a.users) - 1)

	case key.Matches(msg, a.ckeys.Open):
		if len(a.users) == 0 {
			return a, nil
		}
		a.player = player.New(a.users, a.cursor, 0, a.cfg.Ledger, a.cfg.Log)
		a.screen = screenPlayer
		a.paused = false
		return a, a.startTimer()
	}

	return a, nil
}

// selectUser moves the carousel cursor and asks for the next page.
func (a App) selectUser(i int) (tea.Model, tea.Cmd) {
	if len(a.users) == 0 {
		return a, nil
	}
	i = clampIndex(i, len(a.users))
	if i == a.cursor {
		return a, nil
	}
	a.cursor = i
	return a, tea.Batch(a.scrollTo(i), a.loadNext(i))
}

func (a App) loadNext(i int) tea.Cmd {
	if a.cfg.LoadNext == nil {
		return nil
	}
	return a.cfg.LoadNext(i)
}

// handlePlayerKey processes keyboard input in the player.
func (a App) handlePlayerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.player
	switch {
	case key.Matches(msg, a.pkeys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.pkeys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, a.pkeys.Close):
		return a.closePlayer()

	case key.Matches(msg, a.pkeys.Next):
		p.GoToNextStory()
		return a, a.startTimer()

	case key.Matches(msg, a.pkeys.Prev):
		p.GoToPreviousStory()
		return a, a.startTimer()

	case key.Matches(msg, a.pkeys.NextUser):
		p.GoToNextUser(true)
		return a, a.startTimer()

	case key.Matches(msg, a.pkeys.PrevUser):
		p.GoToPreviousUser(false)
		return a, a.startTimer()

	case key.Matches(msg, a.pkeys.Like):
		p.ToggleLike()
		return a, nil

	case key.Matches(msg, a.pkeys.Pause):
		a.paused = !a.paused
		if a.paused {
			a.timerSeq++
			return a, nil
		}
		return a, a.resumeTimer()
	}

	return a, nil
}

// closePlayer returns to the carousel with the player's user selected.
func (a App) closePlayer() (tea.Model, tea.Cmd) {
	if a.player != nil {
		a.cursor = clampIndex(a.player.Position().User, len(a.users))
	}
	a.player = nil
	a.screen = screenCarousel
	a.timerSeq++
	return a, tea.Batch(a.scrollTo(a.cursor), a.loadNext(a.cursor))
}

// startTimer restarts the story timer from zero.
func (a *App) startTimer() tea.Cmd {
	a.elapsed = 0
	return a.resumeTimer()
}

// resumeTimer schedules the next tick for a fresh timer run.
func (a *App) resumeTimer() tea.Cmd {
	a.timerSeq++
	if a.cfg.StoryDuration <= 0 || a.paused || a.player == nil {
		return nil
	}
	return tick(a.timerSeq)
}

func (a App) handleStoryTick(msg storyTick) (tea.Model, tea.Cmd) {
	if a.screen != screenPlayer || msg.seq != a.timerSeq || a.paused || a.cfg.StoryDuration <= 0 {
		return a, nil
	}
	a.elapsed += tickInterval
	if a.elapsed < a.cfg.StoryDuration {
		return a, tick(a.timerSeq)
	}
	if a.player.AtEnd() {
		a.elapsed = a.cfg.StoryDuration
		return a, nil
	}
	a.player.GoToNextStory()
	return a, a.startTimer()
}

// scrollTo points the scroll spring at the page that shows cursor.
func (a *App) scrollTo(cursor int) tea.Cmd {
	a.scrollTarget = scrollTarget(cursor, len(a.users), a.width)
	if a.animating || a.scrollPos == a.scrollTarget {
		return nil
	}
	a.animating = true
	return frame()
}

func tick(seq int) tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return storyTick{seq: seq, at: t}
	})
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// timerPercent is the elapsed fraction of the current story.
func (a App) timerPercent() float64 {
	if a.cfg.StoryDuration <= 0 {
		return 0
	}
	return math.Min(1, float64(a.elapsed)/float64(a.cfg.StoryDuration))
}

// allSeen reports whether every story of u has been viewed.
func (a App) allSeen(u model.User) bool {
	if a.cfg.Ledger == nil || len(u.Stories) == 0 {
		return false
	}
	for _, s := range u.Stories {
		if !a.cfg.Ledger.IsViewed(u.ID, s.ID) {
			return false
		}
	}
	return true
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.cfg.Ring, a.width, a.height-1),
			debugStatusBar(a.width),
		)
	}

	if a.screen == screenPlayer && a.player != nil {
		body := renderPlayer(a.player, a.progress, a.timerPercent(), a.paused, a.width)
		return lipgloss.JoinVertical(lipgloss.Left,
			body,
			RenderStatusBar(a.player.PositionText(), a.help.View(a.pkeys), a.width),
		)
	}

	var body string
	switch {
	case len(a.users) == 0 && a.loading:
		body = HelpStyle.Render(a.spinner.View() + " Loading stories…")
	case len(a.users) == 0 && a.errMsg != "":
		body = ErrorStyle.Render(a.errMsg) + "\n" + HelpStyle.Render("Press 'r' to retry.")
	default:
		body = RenderCarousel(a.users, a.cursor, a.scrollPos, a.width, a.allSeen)
	}

	position := ""
	if len(a.users) > 0 {
		position = fmt.Sprintf("%d/%d", a.cursor+1, len(a.users))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		Title.Render("Stories"),
		body,
		RenderStatusBar(position, a.help.View(a.ckeys), a.width),
	)
}

// Cursor returns the carousel cursor (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Users returns the users the carousel holds (for testing).
func (a App) Users() []model.User {
	return a.users
}

// ErrorMessage returns the viewer-facing load error, if any.
func (a App) ErrorMessage() string {
	return a.errMsg
}

// Player returns the open player, or nil on the carousel.
func (a App) Player() *player.Player {
	if a.screen != screenPlayer {
		return nil
	}
	return a.player
}
