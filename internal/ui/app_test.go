package ui

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/abelbrown/stories/internal/model"
	"github.com/abelbrown/stories/internal/player"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeLedger is an in-memory player.Ledger.
type fakeLedger struct {
	viewed map[string]bool
	liked  map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{viewed: map[string]bool{}, liked: map[string]bool{}}
}

func (f *fakeLedger) MarkViewed(u, s string) bool {
	k := u + "\x00" + s
	if f.viewed[k] {
		return false
	}
	f.viewed[k] = true
	return true
}

func (f *fakeLedger) IsViewed(u, s string) bool { return f.viewed[u+"\x00"+s] }

func (f *fakeLedger) ToggleLike(u, s string) bool {
	k := u + "\x00" + s
	f.liked[k] = !f.liked[k]
	return f.liked[k]
}

func (f *fakeLedger) IsLiked(u, s string) bool { return f.liked[u+"\x00"+s] }

var _ player.Ledger = (*fakeLedger)(nil)

// mockCmd tracks calls to the load functions.
type mockCmd struct {
	initialCalls int
	nextIndexes  []int
	users        []model.User
}

func (m *mockCmd) loadInitial() tea.Cmd {
	m.initialCalls++
	return func() tea.Msg {
		return UsersLoaded{Users: m.users}
	}
}

func (m *mockCmd) loadNext(index int) tea.Cmd {
	m.nextIndexes = append(m.nextIndexes, index)
	return func() tea.Msg {
		return PageLoaded{}
	}
}

func testUsers(counts ...int) []model.User {
	users := make([]model.User, len(counts))
	for i, n := range counts {
		avatar, _ := url.Parse(fmt.Sprintf("https://example.com/avatar/%d.png", i))
		u := model.User{ID: fmt.Sprintf("u%d", i), Name: fmt.Sprintf("User %d", i), AvatarURL: avatar}
		for j := 0; j < n; j++ {
			img, _ := url.Parse(fmt.Sprintf("https://example.com/%d/%d.jpg", i, j))
			u.Stories = append(u.Stories, model.Story{ID: fmt.Sprintf("s%d", j), ImageURL: img})
		}
		users[i] = u
	}
	return users
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func sized(a App) App {
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model.(App)
}

func send(t *testing.T, a App, msgs ...tea.Msg) App {
	t.Helper()
	for _, msg := range msgs {
		model, _ := a.Update(msg)
		a = model.(App)
	}
	return a
}

func loadedApp(t *testing.T, cfg AppConfig, users []model.User) App {
	t.Helper()
	if cfg.Ledger == nil {
		cfg.Ledger = newFakeLedger()
	}
	return send(t, sized(NewApp(cfg)), UsersLoaded{Users: users})
}

func TestAppInit(t *testing.T) {
	mock := &mockCmd{users: testUsers(1)}
	app := NewApp(AppConfig{LoadInitial: mock.loadInitial})

	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if mock.initialCalls != 1 {
		t.Errorf("Init should call LoadInitial once, got %d", mock.initialCalls)
	}
}

func TestAppInitNilLoadInitial(t *testing.T) {
	app := NewApp(AppConfig{})
	if cmd := app.Init(); cmd != nil {
		t.Error("Init should return nil when LoadInitial is nil")
	}
}

func TestCarouselNavigation(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, AppConfig{LoadNext: mock.loadNext}, testUsers(1, 1, 1))

	app = send(t, app, runeKey('l'))
	if app.Cursor() != 1 {
		t.Errorf("l should move cursor to 1, got %d", app.Cursor())
	}
	app = send(t, app, tea.KeyMsg{Type: tea.KeyRight})
	if app.Cursor() != 2 {
		t.Errorf("right should move cursor to 2, got %d", app.Cursor())
	}
	app = send(t, app, runeKey('l'))
	if app.Cursor() != 2 {
		t.Errorf("l at end should keep cursor at 2, got %d", app.Cursor())
	}
	app = send(t, app, runeKey('g'))
	if app.Cursor() != 0 {
		t.Errorf("g should move cursor to 0, got %d", app.Cursor())
	}
	app = send(t, app, runeKey('h'))
	if app.Cursor() != 0 {
		t.Errorf("h at start should keep cursor at 0, got %d", app.Cursor())
	}
	app = send(t, app, runeKey('G'))
	if app.Cursor() != 2 {
		t.Errorf("G should move cursor to 2, got %d", app.Cursor())
	}

	want := []int{1, 2, 0, 2}
	if fmt.Sprint(mock.nextIndexes) != fmt.Sprint(want) {
		t.Errorf("LoadNext indexes = %v, want %v", mock.nextIndexes, want)
	}
}

func TestPageLoadedGrowsUsers(t *testing.T) {
	app := loadedApp(t, AppConfig{}, testUsers(1, 1))

	app = send(t, app, PageLoaded{Users: testUsers(1, 1, 1, 1), Loaded: true})
	if len(app.Users()) != 4 {
		t.Errorf("expected 4 users after page, got %d", len(app.Users()))
	}

	app = send(t, app, PageLoaded{Users: testUsers(1), Loaded: false})
	if len(app.Users()) != 4 {
		t.Errorf("unloaded page should not replace users, got %d", len(app.Users()))
	}
}

func TestLoadErrorAndRetry(t *testing.T) {
	mock := &mockCmd{users: testUsers(2)}
	app := NewApp(AppConfig{LoadInitial: mock.loadInitial, Ledger: newFakeLedger()})
	app = sized(app)
	app = send(t, app, UsersLoaded{Err: "Failed to load user stories."})

	if app.ErrorMessage() != "Failed to load user stories." {
		t.Fatalf("ErrorMessage() = %q", app.ErrorMessage())
	}
	if view := app.View(); !strings.Contains(view, "Failed to load user stories.") || !strings.Contains(view, "retry") {
		t.Errorf("error view should show message and retry hint, got:\n%s", view)
	}

	model, cmd := app.Update(runeKey('r'))
	app = model.(App)
	if cmd == nil || mock.initialCalls != 1 {
		t.Fatalf("r should call LoadInitial, calls=%d", mock.initialCalls)
	}

	app = send(t, app, UsersLoaded{Users: mock.users})
	if app.ErrorMessage() != "" || len(app.Users()) != 1 {
		t.Errorf("retry should clear the error and load users, got %q / %d", app.ErrorMessage(), len(app.Users()))
	}
}

func TestRetryIgnoredWhileLoading(t *testing.T) {
	mock := &mockCmd{}
	app := sized(NewApp(AppConfig{LoadInitial: mock.loadInitial}))

	_, cmd := app.Update(runeKey('r'))
	if cmd != nil || mock.initialCalls != 0 {
		t.Error("r should be ignored while the initial load is in flight")
	}
}

func TestOpenPlayerMarksViewed(t *testing.T) {
	ledger := newFakeLedger()
	app := loadedApp(t, AppConfig{Ledger: ledger}, testUsers(2, 1))
	app = send(t, app, runeKey('l'), tea.KeyMsg{Type: tea.KeyEnter})

	p := app.Player()
	if p == nil {
		t.Fatal("enter should open the player")
	}
	if got := p.Position(); got != (player.Position{User: 1, Story: 0}) {
		t.Errorf("player opened at %v, want (1,0)", got)
	}
	if !ledger.IsViewed("u1", "s0") {
		t.Error("opening the player should mark the story viewed")
	}
}

func TestOpenPlayerEmpty(t *testing.T) {
	app := loadedApp(t, AppConfig{}, nil)
	app = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.Player() != nil {
		t.Error("enter with no users should not open the player")
	}
}

func TestPlayerKeys(t *testing.T) {
	ledger := newFakeLedger()
	app := loadedApp(t, AppConfig{Ledger: ledger}, testUsers(2, 3))
	app = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	steps := []struct {
		msg  tea.Msg
		want player.Position
	}{
		{runeKey('l'), player.Position{User: 0, Story: 1}},
		{runeKey('l'), player.Position{User: 1, Story: 0}},
		{runeKey('l'), player.Position{User: 1, Story: 1}},
		{runeKey('k'), player.Position{User: 0, Story: 1}},
		{runeKey('h'), player.Position{User: 0, Story: 0}},
		{runeKey('h'), player.Position{User: 0, Story: 0}},
		{runeKey('j'), player.Position{User: 1, Story: 0}},
	}
	for i, step := range steps {
		app = send(t, app, step.msg)
		if got := app.Player().Position(); got != step.want {
			t.Fatalf("step %d: position %v, want %v", i, got, step.want)
		}
	}

	app = send(t, app, runeKey('f'))
	if !ledger.IsLiked("u1", "s0") || !app.Player().IsCurrentStoryLiked() {
		t.Error("f should like the current story")
	}
	if !strings.Contains(app.View(), "♥") {
		t.Error("liked story should render a heart")
	}
}

func TestClosePlayerSelectsCurrentUser(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, AppConfig{LoadNext: mock.loadNext}, testUsers(1, 1, 1))
	app = send(t, app, tea.KeyMsg{Type: tea.KeyEnter}, runeKey('l'), runeKey('l'), tea.KeyMsg{Type: tea.KeyEsc})

	if app.Player() != nil {
		t.Fatal("esc should close the player")
	}
	if app.Cursor() != 2 {
		t.Errorf("carousel cursor = %d, want 2", app.Cursor())
	}
	if len(mock.nextIndexes) == 0 || mock.nextIndexes[len(mock.nextIndexes)-1] != 2 {
		t.Errorf("closing should request paging from the new cursor, got %v", mock.nextIndexes)
	}
}

func TestStoryTimerAutoAdvances(t *testing.T) {
	app := loadedApp(t, AppConfig{StoryDuration: 3 * tickInterval}, testUsers(2))
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(App)
	if cmd == nil {
		t.Fatal("opening the player should start the timer")
	}

	for i := 0; i < 2; i++ {
		app = send(t, app, storyTick{seq: app.timerSeq})
	}
	if got := app.Player().Position(); got.Story != 0 {
		t.Fatalf("advanced early to %v", got)
	}

	app = send(t, app, storyTick{seq: app.timerSeq})
	if got := app.Player().Position(); got.Story != 1 {
		t.Fatalf("timer should advance to story 1, got %v", got)
	}

	// Last story of last user: the timer stops.
	for i := 0; i < 3; i++ {
		app = send(t, app, storyTick{seq: app.timerSeq})
	}
	if got := app.Player().Position(); got.Story != 1 {
		t.Errorf("timer moved past the end: %v", got)
	}
	if app.timerPercent() != 1 {
		t.Errorf("timerPercent() = %v at end, want 1", app.timerPercent())
	}
}

func TestStaleTicksIgnored(t *testing.T) {
	app := loadedApp(t, AppConfig{StoryDuration: tickInterval}, testUsers(3))
	app = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	stale := app.timerSeq

	app = send(t, app, runeKey('l'))
	app = send(t, app, storyTick{seq: stale})
	if got := app.Player().Position(); got.Story != 1 {
		t.Errorf("stale tick moved the player to %v", got)
	}
}

func TestPauseStopsTimer(t *testing.T) {
	app := loadedApp(t, AppConfig{StoryDuration: tickInterval}, testUsers(3))
	app = send(t, app, tea.KeyMsg{Type: tea.KeyEnter}, runeKey('p'))

	app = send(t, app, storyTick{seq: app.timerSeq})
	if got := app.Player().Position(); got.Story != 0 {
		t.Errorf("paused timer advanced to %v", got)
	}

	model, cmd := app.Update(runeKey('p'))
	app = model.(App)
	if cmd == nil {
		t.Fatal("unpausing should schedule a tick")
	}
	app = send(t, app, storyTick{seq: app.timerSeq})
	if got := app.Player().Position(); got.Story != 1 {
		t.Errorf("resumed timer should advance, got %v", got)
	}
}

func TestNoAutoAdvanceWithoutDuration(t *testing.T) {
	app := loadedApp(t, AppConfig{}, testUsers(2))
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("no timer should start when StoryDuration is zero")
	}
}

func TestCarouselViewMarksSeenUsers(t *testing.T) {
	ledger := newFakeLedger()
	ledger.MarkViewed("u0", "s0")
	app := loadedApp(t, AppConfig{Ledger: ledger}, testUsers(1, 1))

	if !app.allSeen(app.Users()[0]) {
		t.Error("u0 should count as seen")
	}
	if app.allSeen(app.Users()[1]) {
		t.Error("u1 should not count as seen")
	}
	view := app.View()
	if !strings.Contains(view, "User 0, 1") || !strings.Contains(view, "1/2") {
		t.Errorf("carousel should show cards and position, got:\n%s", view)
	}
}

func TestFrameSettlesScroll(t *testing.T) {
	app := loadedApp(t, AppConfig{}, testUsers(make([]int, 40)...))
	app = send(t, app, runeKey('G'))
	if app.scrollTarget == 0 {
		t.Fatal("jumping to the end should move the scroll target")
	}
	for i := 0; i < 600 && app.animating; i++ {
		app = send(t, app, frameMsg{})
	}
	if app.animating || app.scrollPos != app.scrollTarget {
		t.Errorf("scroll did not settle: pos=%v target=%v", app.scrollPos, app.scrollTarget)
	}
}

func TestQuit(t *testing.T) {
	app := loadedApp(t, AppConfig{}, testUsers(1))
	_, cmd := app.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewBeforeReady(t *testing.T) {
	app := NewApp(AppConfig{})
	if app.View() != "Loading..." {
		t.Errorf("View() before size = %q", app.View())
	}
}
