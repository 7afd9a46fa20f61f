package feedtui

import (
	"context"
	"log"
	"time"

	"instavibe/camera"
	"instavibe/lib"

	bubbleKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const previewInterval = 150 * time.Millisecond

type mode int

const (
	modeFeed mode = iota
	modeSearch
	modeCompose
	modeConfirmDelete
)

type composeField int

const (
	fieldUsername composeField = iota
	fieldCaption
)

type feedUIModel struct {
	ctx      context.Context
	feed     *lib.Feed
	composer *lib.Composer
	capture  *camera.Capture

	keymap keymap
	mode   mode

	entries  []lib.FeedEntry
	selected int
	search   textinput.Model
	query    string

	username textinput.Model
	caption  textarea.Model
	focus    composeField

	feedViewport viewport.Model
	spinner      spinner.Model
	previewGate  *UpdateDebouncer
	preview      string

	busy   string
	status string
	errMsg string

	ready  bool
	width  int
	height int
}

type keymap = struct {
	quit,
	up,
	down,
	pageUp,
	pageDown,
	newPost,
	search,
	refresh,
	remove,
	copyUrl,
	openUrl,
	checkImages,
	confirm,
	back,
	nextField,
	startCamera,
	takePhoto,
	retake,
	submit bubbleKey.Binding
}

func newKeymap() keymap {
	return keymap{
		quit: bubbleKey.NewBinding(
			bubbleKey.WithKeys("q", "ctrl+c"),
			bubbleKey.WithHelp("q", "quit"),
		),
		up: bubbleKey.NewBinding(
			bubbleKey.WithKeys("k", "up"),
			bubbleKey.WithHelp("k", "prev"),
		),
		down: bubbleKey.NewBinding(
			bubbleKey.WithKeys("j", "down"),
			bubbleKey.WithHelp("j", "next"),
		),
		pageUp: bubbleKey.NewBinding(
			bubbleKey.WithKeys("u", "pgup"),
			bubbleKey.WithHelp("u", "page up"),
		),
		pageDown: bubbleKey.NewBinding(
			bubbleKey.WithKeys("d", "pgdown"),
			bubbleKey.WithHelp("d", "page down"),
		),
		newPost: bubbleKey.NewBinding(
			bubbleKey.WithKeys("n"),
			bubbleKey.WithHelp("n", "new post"),
		),
		search: bubbleKey.NewBinding(
			bubbleKey.WithKeys("/"),
			bubbleKey.WithHelp("/", "search"),
		),
		refresh: bubbleKey.NewBinding(
			bubbleKey.WithKeys("r"),
			bubbleKey.WithHelp("r", "refresh"),
		),
		remove: bubbleKey.NewBinding(
			bubbleKey.WithKeys("x", "delete"),
			bubbleKey.WithHelp("x", "delete"),
		),
		copyUrl: bubbleKey.NewBinding(
			bubbleKey.WithKeys("y"),
			bubbleKey.WithHelp("y", "copy url"),
		),
		openUrl: bubbleKey.NewBinding(
			bubbleKey.WithKeys("o"),
			bubbleKey.WithHelp("o", "open image"),
		),
		checkImages: bubbleKey.NewBinding(
			bubbleKey.WithKeys("i"),
			bubbleKey.WithHelp("i", "check images"),
		),
		confirm: bubbleKey.NewBinding(
			bubbleKey.WithKeys("y", "Y"),
			bubbleKey.WithHelp("y", "yes"),
		),
		back: bubbleKey.NewBinding(
			bubbleKey.WithKeys("esc"),
			bubbleKey.WithHelp("esc", "back"),
		),
		nextField: bubbleKey.NewBinding(
			bubbleKey.WithKeys("tab", "shift+tab"),
			bubbleKey.WithHelp("tab", "next field"),
		),
		startCamera: bubbleKey.NewBinding(
			bubbleKey.WithKeys("ctrl+t"),
			bubbleKey.WithHelp("ctrl+t", "start camera"),
		),
		takePhoto: bubbleKey.NewBinding(
			bubbleKey.WithKeys("ctrl+p"),
			bubbleKey.WithHelp("ctrl+p", "take photo"),
		),
		retake: bubbleKey.NewBinding(
			bubbleKey.WithKeys("ctrl+r"),
			bubbleKey.WithHelp("ctrl+r", "retake"),
		),
		submit: bubbleKey.NewBinding(
			bubbleKey.WithKeys("ctrl+s"),
			bubbleKey.WithHelp("ctrl+s", "post"),
		),
	}
}

func initialModel(ctx context.Context, feed *lib.Feed, composer *lib.Composer, capture *camera.Capture) *feedUIModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search username or caption"

	username := textinput.New()
	username.Prompt = ""
	username.Placeholder = "Enter username"
	username.CharLimit = 64

	caption := textarea.New()
	caption.Placeholder = "Write a caption..."
	caption.ShowLineNumbers = false
	caption.SetHeight(3)
	caption.CharLimit = 2200

	return &feedUIModel{
		ctx:         ctx,
		feed:        feed,
		composer:    composer,
		capture:     capture,
		keymap:      newKeymap(),
		search:      search,
		username:    username,
		caption:     caption,
		spinner:     s,
		previewGate: NewUpdateDebouncer(previewInterval),
	}
}

func (m feedUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.ctx, m.feed.Changes()))
}

func (m *feedUIModel) cleanup() {
	log.Println("Cleaning up feed UI model")
	m.capture.Release()
}
