package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat/cli/internal/chat"
)

// chatView is the conversation pane for the active document.
type chatView struct {
	deps Deps

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	transcript []string
	waiting    bool
	width      int
	height     int
}

func newChatView(deps Deps) *chatView {
	ti := textinput.New()
	ti.Placeholder = "Ask about the document..."
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &chatView{
		deps:     deps,
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  sp,
	}
}

func (cv *chatView) init() tea.Cmd {
	return textinput.Blink
}

func (cv *chatView) resize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width - 2
	cv.viewport.Height = height - 6
	cv.input.Width = width - 6
	cv.renderTranscript()
}

func (cv *chatView) focus() {
	cv.input.Focus()
}

func (cv *chatView) blur() {
	cv.input.Blur()
}

// capturesInput is true while the user is composing; navigation keys then
// belong to the text field.
func (cv *chatView) capturesInput() bool {
	return cv.input.Focused() && cv.input.Value() != ""
}

// reset clears the pane when the active document changes.
func (cv *chatView) reset() {
	cv.transcript = nil
	cv.renderTranscript()
}

// finish ends the waiting state after a failed turn.
func (cv *chatView) finish() {
	cv.waiting = false
}

func (cv *chatView) update(msg tea.Msg, focused bool) tea.Cmd {
	switch msg := msg.(type) {
	case answerMsg:
		cv.waiting = false
		cv.appendAnswer(msg.turn)
		return nil

	case spinner.TickMsg:
		if !cv.waiting {
			return nil
		}
		var cmd tea.Cmd
		cv.spinner, cmd = cv.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if !focused {
			return nil
		}
		if msg.String() == "enter" {
			return cv.send()
		}
		var cmds []tea.Cmd
		var cmd tea.Cmd
		cv.input, cmd = cv.input.Update(msg)
		cmds = append(cmds, cmd)
		cv.viewport, cmd = cv.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	cv.input, cmd = cv.input.Update(msg)
	return cmd
}

// send dispatches the current input as one turn. Empty input is ignored
// without a provider call; so is typing while a turn is in flight.
func (cv *chatView) send() tea.Cmd {
	text := strings.TrimSpace(cv.input.Value())
	if text == "" || cv.waiting {
		return nil
	}
	if cv.deps.Session.ActiveDoc == "" {
		return func() tea.Msg { return statusMsg("Select a document first") }
	}

	cv.input.SetValue("")
	cv.waiting = true
	cv.transcript = append(cv.transcript, userStyle.Render("You: ")+text)
	cv.renderTranscript()

	sess := cv.deps.Session
	return tea.Batch(cv.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		turn, err := cv.deps.Orchestrator.Answer(ctx, sess, text)
		if err != nil {
			return errMsg{err: err}
		}
		return answerMsg{turn: turn}
	})
}

func (cv *chatView) appendAnswer(turn *chat.Turn) {
	cv.transcript = append(cv.transcript, assistantStyle.Render("AI: "+turn.Answer))

	if cv.deps.Session.Debug {
		var dbg []string
		for i, chunk := range turn.Chunks {
			dbg = append(dbg, fmt.Sprintf("  chunk %d score %.4f: %s", i, chunk.Score, truncate(chunk.Text, 80)))
		}
		if cv.deps.Session.Mode == chat.ModeNoRAG {
			source := "reconstructed"
			if turn.FromCache {
				source = "cached"
			}
			dbg = append(dbg, fmt.Sprintf("  full document (%s), %d chars", source, turn.ContextChars))
		} else {
			dbg = append(dbg, fmt.Sprintf("  context: %d chars", turn.ContextChars))
		}
		cv.transcript = append(cv.transcript, debugStyle.Render(strings.Join(dbg, "\n")))
	}
	cv.transcript = append(cv.transcript, "")
	cv.renderTranscript()
}

func (cv *chatView) renderTranscript() {
	cv.viewport.SetContent(lipgloss.NewStyle().Width(cv.viewport.Width).Render(strings.Join(cv.transcript, "\n")))
	cv.viewport.GotoBottom()
}

func (cv *chatView) view(focused bool) string {
	header := titleStyle.Render("Chat")
	if doc := cv.deps.Session.ActiveDoc; doc != "" {
		header += statusStyle.Render("  "+doc+"  ") + modeStyle.Render(string(cv.deps.Session.Mode))
	} else {
		header += helpStyle.Render("  no document selected")
	}
	if cv.deps.Session.Debug {
		header += debugStyle.Render("  [debug]")
	}

	inputLine := "> " + cv.input.View()
	if cv.waiting {
		inputLine = cv.spinner.View() + " thinking..."
	}

	body := lipgloss.JoinVertical(lipgloss.Left, header, "", cv.viewport.View(), "", inputLine)

	border := inactiveBorderStyle
	if focused {
		border = activeBorderStyle
	}
	return border.Width(cv.width).Height(cv.height).Render(body)
}

// answerMsg carries a completed turn.
type answerMsg struct {
	turn *chat.Turn
}
