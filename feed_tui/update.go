package feedtui

import (
	"context"
	"errors"
	"image"
	"log"
	"time"

	"instavibe/camera"
	"instavibe/lib"
	"instavibe/shared"

	"github.com/atotto/clipboard"
	bubbleKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
)

const busyPosting = "Posting"

type feedChangedMsg struct{}

type refreshDoneMsg struct{ err error }

type submitDoneMsg struct {
	res *shared.CreatePostResponse
	err error
}

type deleteDoneMsg struct{ err error }

type cameraDoneMsg struct {
	event string
	err   error
}

type previewTickMsg struct{}

type previewFrameMsg struct{ img image.Image }

type probeDoneMsg struct{}

type actionDoneMsg struct {
	ok  string
	err error
}

func waitForChange(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ch:
			return feedChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *feedUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.windowResized(msg.Width, msg.Height)

	case feedChangedMsg:
		m.syncEntries()
		return m, waitForChange(m.ctx, m.feed.Changes())

	case refreshDoneMsg:
		m.busy = ""

	case submitDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.status = m.composer.SuccessMessage()
		m.errMsg = ""
		m.leaveCompose()

	case deleteDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.status = "Post deleted"
		}

	case cameraDoneMsg:
		m.busy = ""
		if errors.Is(msg.err, camera.ErrCanceled) {
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = camera.UserMessage(msg.err)
			m.preview = m.renderSnapshot()
			return m, nil
		}
		m.errMsg = ""
		if msg.event == "capture" {
			m.preview = m.renderSnapshot()
			return m, nil
		}
		m.previewGate.Reset()
		return m, m.previewTick()

	case previewTickMsg:
		return m, m.grabFrame()

	case previewFrameMsg:
		if m.mode != modeCompose || m.capture.State() != camera.StateStreaming {
			return m, nil
		}
		if msg.img != nil && m.previewGate.ShouldUpdate(time.Now()) {
			cols, rows := m.previewSize()
			m.preview = renderHalfBlocks(msg.img, cols, rows)
		}
		return m, m.previewTick()

	case probeDoneMsg:
		m.busy = ""
		m.syncEntries()

	case actionDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.status = msg.ok
		}

	case tea.MouseMsg:
		if msg.Type == tea.MouseWheelUp {
			m.feedViewport.LineUp(3)
		} else if msg.Type == tea.MouseWheelDown {
			m.feedViewport.LineDown(3)
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFeed:
			return m.updateFeed(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeCompose:
			return m.updateCompose(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
	}

	return m, nil
}

func (m *feedUIModel) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.errMsg = ""

	switch {
	case bubbleKey.Matches(msg, m.keymap.quit):
		return m, tea.Quit
	case bubbleKey.Matches(msg, m.keymap.down):
		m.moveSelection(1)
	case bubbleKey.Matches(msg, m.keymap.up):
		m.moveSelection(-1)
	case bubbleKey.Matches(msg, m.keymap.pageDown):
		m.feedViewport.HalfViewDown()
	case bubbleKey.Matches(msg, m.keymap.pageUp):
		m.feedViewport.HalfViewUp()
	case bubbleKey.Matches(msg, m.keymap.newPost):
		return m, m.enterCompose()
	case bubbleKey.Matches(msg, m.keymap.search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case bubbleKey.Matches(msg, m.keymap.refresh):
		m.busy = "Loading posts"
		return m, m.refreshCmd()
	case bubbleKey.Matches(msg, m.keymap.remove):
		if m.current() != nil {
			m.mode = modeConfirmDelete
		}
	case bubbleKey.Matches(msg, m.keymap.copyUrl):
		if e := m.current(); e != nil {
			return m, copyCmd(e.ImageUrl)
		}
	case bubbleKey.Matches(msg, m.keymap.openUrl):
		if e := m.current(); e != nil {
			return m, openCmd(e.ImageUrl)
		}
	case bubbleKey.Matches(msg, m.keymap.checkImages):
		m.busy = "Checking images"
		return m, m.probeCmd()
	}

	m.updateFeedView()
	return m, nil
}

func (m *feedUIModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case bubbleKey.Matches(msg, m.keymap.back):
		m.search.SetValue("")
		m.query = ""
		m.search.Blur()
		m.mode = modeFeed
		m.syncEntries()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.search.Blur()
		m.mode = modeFeed
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.syncEntries()
	return m, cmd
}

func (m *feedUIModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeFeed
	e := m.current()
	if e == nil || !bubbleKey.Matches(msg, m.keymap.confirm) {
		return m, nil
	}
	m.busy = "Deleting post"
	return m, m.deleteCmd(e.Post.Id)
}

func (m *feedUIModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// the draft and camera are frozen until the upload answers
	if m.composer.State() == lib.ComposerSubmitting || m.busy == busyPosting {
		return m, nil
	}

	switch {
	case bubbleKey.Matches(msg, m.keymap.back):
		if err := m.composer.Cancel(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.leaveCompose()
		return m, nil
	case bubbleKey.Matches(msg, m.keymap.nextField):
		return m, m.toggleFocus()
	case bubbleKey.Matches(msg, m.keymap.startCamera):
		m.busy = "Starting camera"
		return m, m.cameraCmd("start", m.capture.StartSession)
	case bubbleKey.Matches(msg, m.keymap.takePhoto):
		return m, m.cameraCmd("capture", m.capture.CaptureFrame)
	case bubbleKey.Matches(msg, m.keymap.retake):
		m.busy = "Starting camera"
		return m, m.cameraCmd("retake", m.capture.Retake)
	case bubbleKey.Matches(msg, m.keymap.submit):
		if m.busy != "" {
			return m, nil
		}
		m.composer.SetUsername(m.username.Value())
		m.composer.SetCaption(m.caption.Value())
		m.busy = busyPosting
		m.errMsg = ""
		return m, m.submitCmd()
	}

	var cmd tea.Cmd
	if m.focus == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.caption, cmd = m.caption.Update(msg)
	}
	return m, cmd
}

func (m *feedUIModel) enterCompose() tea.Cmd {
	m.composer.Reopen()
	m.mode = modeCompose
	m.preview = ""
	m.focus = fieldUsername
	m.caption.Blur()
	return m.username.Focus()
}

func (m *feedUIModel) leaveCompose() {
	m.mode = modeFeed
	m.username.Reset()
	m.caption.Reset()
	m.username.Blur()
	m.caption.Blur()
	m.preview = ""
	m.updateFeedView()
}

func (m *feedUIModel) toggleFocus() tea.Cmd {
	if m.focus == fieldUsername {
		m.focus = fieldCaption
		m.username.Blur()
		return m.caption.Focus()
	}
	m.focus = fieldUsername
	m.caption.Blur()
	return m.username.Focus()
}

func (m *feedUIModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.feed.Refresh(m.ctx)}
	}
}

func (m *feedUIModel) submitCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := m.composer.Submit(m.ctx)
		return submitDoneMsg{res: res, err: err}
	}
}

func (m *feedUIModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{err: m.feed.Delete(m.ctx, id)}
	}
}

func (m *feedUIModel) probeCmd() tea.Cmd {
	return func() tea.Msg {
		m.feed.ProbeImages(m.ctx)
		return probeDoneMsg{}
	}
}

func (m *feedUIModel) cameraCmd(event string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return cameraDoneMsg{event: event, err: fn(m.ctx)}
	}
}

func (m *feedUIModel) previewTick() tea.Cmd {
	return tea.Tick(previewInterval, func(time.Time) tea.Msg {
		return previewTickMsg{}
	})
}

func (m *feedUIModel) grabFrame() tea.Cmd {
	stream := m.capture.Preview()
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		img, err := stream.Frame(m.ctx)
		if err != nil {
			// the session can end between ticks; the next state change stops the loop
			if !errors.Is(err, context.Canceled) {
				log.Printf("preview frame error: %v", err)
			}
			return previewFrameMsg{}
		}
		return previewFrameMsg{img: img}
	}
}

func copyCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(url); err != nil {
			log.Printf("clipboard error: %v", err)
			return actionDoneMsg{err: errors.New("Couldn't copy to the clipboard")}
		}
		return actionDoneMsg{ok: "Copied image url"}
	}
}

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("error opening %s: %v", url, err)
			return actionDoneMsg{err: errors.New("Couldn't open the browser")}
		}
		return actionDoneMsg{ok: "Opened image in your browser"}
	}
}

func (m *feedUIModel) syncEntries() {
	m.entries = m.feed.Search(m.query)
	if m.selected >= len(m.entries) {
		m.selected = len(m.entries) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.updateFeedView()
}

func (m *feedUIModel) current() *lib.FeedEntry {
	if m.selected < 0 || m.selected >= len(m.entries) {
		return nil
	}
	return &m.entries[m.selected]
}

func (m *feedUIModel) moveSelection(delta int) {
	next := m.selected + delta
	if next < 0 || next >= len(m.entries) {
		return
	}
	m.selected = next
	m.updateFeedView()
}

func (m *feedUIModel) windowResized(w, h int) {
	m.width = w
	m.height = h

	m.caption.SetWidth(max(w-4, 10))

	vw, vh := m.getViewportDimensions()
	if m.ready {
		m.feedViewport.Width = vw
		m.feedViewport.Height = vh
	} else {
		m.feedViewport = viewport.New(vw, vh)
		m.feedViewport.Style = lipgloss.NewStyle().Padding(0, 1, 0, 1)
		m.ready = true
	}
	m.updateFeedView()
}

func (m *feedUIModel) getViewportDimensions() (int, int) {
	headerHeight := lipgloss.Height(m.renderHeader())
	helpHeight := lipgloss.Height(m.renderHelp())
	statusHeight := 1
	return m.width, max(m.height-(headerHeight+helpHeight+statusHeight), 1)
}

func (m *feedUIModel) updateFeedView() {
	if !m.ready {
		return
	}
	content, selectedLine := m.renderEntries()
	m.feedViewport.SetContent(content)

	// keep the selected post on screen
	if selectedLine < m.feedViewport.YOffset {
		m.feedViewport.SetYOffset(selectedLine)
	} else if selectedLine >= m.feedViewport.YOffset+m.feedViewport.Height {
		m.feedViewport.SetYOffset(selectedLine - m.feedViewport.Height + 1)
	}
}

func (m *feedUIModel) previewSize() (int, int) {
	cols := min(max(m.width/2, 16), 64)
	rows := min(max(m.height-14, 6), 24)
	return cols, rows
}

func (m *feedUIModel) renderSnapshot() string {
	img := m.capture.Snapshot()
	if img == nil {
		return ""
	}
	cols, rows := m.previewSize()
	return renderHalfBlocks(img, cols, rows)
}
