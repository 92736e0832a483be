// Package app is the terminal UI: a reference field, the playback status
// panel and the history list, all driving a playback.Service.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tubeplay/internal/keymap"
	"github.com/llehouerou/tubeplay/internal/playback"
	"github.com/llehouerou/tubeplay/internal/state"
	"github.com/llehouerou/tubeplay/internal/ui/headerbar"
	"github.com/llehouerou/tubeplay/internal/ui/helpbindings"
	"github.com/llehouerou/tubeplay/internal/ui/historypanel"
	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// historyLimit caps how many history entries are loaded.
const historyLimit = 200

// Deps are the collaborators the UI drives.
type Deps struct {
	Playback playback.Service
	State    state.Interface
	Logger   zerolog.Logger
	Now      func() time.Time // defaults to time.Now
}

// Model is the root application model.
type Model struct {
	Playback    playback.Service
	playbackSub *playback.Subscription
	StateMgr    state.Interface
	Keys        *keymap.Resolver

	Input    textinput.Model
	Spinner  spinner.Model
	spinning bool
	History  historypanel.Model
	Help     helpbindings.Model
	ShowHelp bool
	Focus    headerbar.Pane

	Notice    *Notice
	noticeSeq int

	logger zerolog.Logger
	now    func() time.Time
	Width  int
	Height int
}

// New creates the application model. The last typed reference is restored
// from state.
func New(deps Deps) Model {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	t := styles.T()
	input := textinput.New()
	input.Prompt = "▶ "
	input.PromptStyle = t.S().Key
	input.Placeholder = "YouTube URL, video id or direct media URL"
	input.CharLimit = 2048
	if saved, err := deps.State.GetInput(); err != nil {
		deps.Logger.Warn().Err(err).Msg("restore input")
	} else if saved != nil {
		input.SetValue(saved.Reference)
	}
	input.Focus()

	history := historypanel.New()
	history.SetClock(now)

	return Model{
		Playback:    deps.Playback,
		playbackSub: deps.Playback.Subscribe(),
		StateMgr:    deps.State,
		Keys:        keymap.NewResolver(keymap.All),
		Input:       input,
		Spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(t.S().Pending),
		),
		History: history,
		Help:    helpbindings.New(),
		Focus:   headerbar.PaneInput,
		logger:  deps.Logger,
		now:     now,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.WatchServiceEvents(),
		m.loadHistoryCmd(),
	)
}
