// Package tui is the terminal front end: a document sidebar next to a chat
// pane, both driven by one bubbletea program. All vector store and provider
// calls run as tea commands so the interface never blocks on the network.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat/cli/internal/chat"
	"github.com/docchat/cli/internal/ingest"
	"github.com/docchat/cli/internal/registry"
)

// Deps are the wired application components the views call into.
type Deps struct {
	Registry     *registry.Registry
	Ingestor     *ingest.Ingestor
	Extractor    *ingest.Extractor
	Orchestrator *chat.Orchestrator
	Session      *chat.Session
	UploadsDir   string
}

// App owns the bubbletea program.
type App struct {
	deps Deps
}

// NewApp creates the TUI application.
func NewApp(deps Deps) *App {
	return &App{deps: deps}
}

// Run starts the TUI and blocks until exit.
func (a *App) Run() error {
	_, err := tea.NewProgram(newRootModel(a.deps), tea.WithAltScreen()).Run()
	return err
}

type focusArea int

const (
	focusDocuments focusArea = iota
	focusChat
)

const sidebarWidth = 34

// errMsg carries a failure from any command back into the update loop.
type errMsg struct {
	err error
}

type rootModel struct {
	deps   Deps
	docs   *documentsView
	chat   *chatView
	focus  focusArea
	status string
	width  int
	height int
}

func newRootModel(deps Deps) *rootModel {
	m := &rootModel{
		deps:  deps,
		focus: focusDocuments,
	}
	m.docs = newDocumentsView(deps)
	m.chat = newChatView(deps)
	return m
}

func (m *rootModel) Init() tea.Cmd {
	return tea.Batch(m.docs.loadDocuments, m.chat.init())
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.docs.resize(sidebarWidth, msg.Height-2)
		m.chat.resize(msg.Width-sidebarWidth-4, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// text entry modes swallow everything except their own keys
		if !m.docs.capturesInput() && !m.chat.capturesInput() {
			switch msg.String() {
			case "ctrl+c", "q":
				if msg.String() == "q" && m.focus == focusChat {
					break // plain q is typed text in the chat pane
				}
				return m, tea.Quit
			case "tab":
				if m.focus == focusDocuments {
					m.focus = focusChat
					m.chat.focus()
				} else {
					m.focus = focusDocuments
					m.chat.blur()
				}
				return m, nil
			case "ctrl+r":
				m.toggleMode()
				return m, nil
			case "ctrl+g":
				m.deps.Session.Debug = !m.deps.Session.Debug
				return m, nil
			}
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case errMsg:
		m.status = errorStyle.Render(msg.err.Error())
		m.docs.busy = false
		m.chat.finish()
		return m, nil

	case statusMsg:
		m.status = statusStyle.Render(string(msg))
		return m, nil

	case documentSelectedMsg:
		m.deps.Session.SetActiveDoc(msg.id)
		m.chat.reset()
		m.focus = focusChat
		m.chat.focus()
		m.status = statusStyle.Render("Chatting about " + msg.id)
		return m, nil

	case documentDeletedMsg:
		if m.deps.Session.ActiveDoc == msg.id {
			m.deps.Session.ClearActiveDoc()
			m.chat.reset()
		}
		m.deps.Session.ForgetProcessed(msg.id)
		m.deps.Session.DropCachedDocument(msg.id)
		m.status = statusStyle.Render("Deleted " + msg.id)
		return m, m.docs.loadDocuments
	}

	var cmds []tea.Cmd
	if cmd := m.docs.update(msg, m.focus == focusDocuments); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.chat.update(msg, m.focus == focusChat); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *rootModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.docs.view(m.focus == focusDocuments)
	main := m.chat.view(m.focus == focusChat)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	statusLine := m.status
	if statusLine == "" {
		statusLine = helpStyle.Render("tab: switch pane | ctrl+r: toggle mode | ctrl+g: debug | q: quit")
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, statusLine)
}

func (m *rootModel) toggleMode() {
	if m.deps.Session.Mode == chat.ModeRAG {
		m.deps.Session.Mode = chat.ModeNoRAG
	} else {
		m.deps.Session.Mode = chat.ModeRAG
	}
	m.status = statusStyle.Render("Mode: " + string(m.deps.Session.Mode))
}

// statusMsg sets the status line text.
type statusMsg string
