package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat/cli/internal/ingest"
	"github.com/docchat/cli/internal/registry"
)

// documentsView is the sidebar: every ingested document, plus upload and
// delete flows.
type documentsView struct {
	deps Deps

	docs     []registry.Document
	selected int
	busy     bool

	// suppressed hides ids whose deletion the backend has accepted but may
	// not reflect in listings yet
	suppressed map[string]struct{}

	confirmDelete string // id pending y/n confirmation
	pathInput     textinput.Model
	uploading     bool

	width  int
	height int
}

func newDocumentsView(deps Deps) *documentsView {
	ti := textinput.New()
	ti.Placeholder = "path to .pdf or .epub"
	ti.CharLimit = 512
	return &documentsView{
		deps:       deps,
		suppressed: make(map[string]struct{}),
		pathInput:  ti,
	}
}

func (dv *documentsView) resize(width, height int) {
	dv.width = width
	dv.height = height
	dv.pathInput.Width = width - 4
}

// capturesInput reports whether a text entry or confirmation flow owns the
// keyboard.
func (dv *documentsView) capturesInput() bool {
	return dv.uploading || dv.confirmDelete != ""
}

func (dv *documentsView) update(msg tea.Msg, focused bool) tea.Cmd {
	switch msg := msg.(type) {
	case documentsLoadedMsg:
		dv.docs = dv.visible(msg.docs)
		dv.busy = false
		if dv.selected >= len(dv.docs) {
			dv.selected = len(dv.docs) - 1
		}
		if dv.selected < 0 {
			dv.selected = 0
		}
		return nil

	case documentIngestedMsg:
		dv.busy = false
		dv.uploading = false
		delete(dv.suppressed, msg.result.Document)
		dv.deps.Session.MarkProcessed(msg.result.Document)
		return tea.Batch(dv.loadDocuments, func() tea.Msg {
			return statusMsg(fmt.Sprintf("Ingested %s (%d chunks)", msg.result.Document, msg.result.NumChunks))
		})

	case tea.KeyMsg:
		if !focused {
			return nil
		}
		return dv.handleKey(msg)
	}

	if dv.uploading {
		var cmd tea.Cmd
		dv.pathInput, cmd = dv.pathInput.Update(msg)
		return cmd
	}
	return nil
}

func (dv *documentsView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if dv.uploading {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(dv.pathInput.Value())
			if path == "" {
				return nil
			}
			if dv.deps.Session.IsProcessed(filepath.Base(path)) {
				dv.uploading = false
				return func() tea.Msg {
					return statusMsg(filepath.Base(path) + " already ingested this session")
				}
			}
			dv.busy = true
			return dv.ingestPath(path)
		case "esc":
			dv.uploading = false
			return nil
		}
		var cmd tea.Cmd
		dv.pathInput, cmd = dv.pathInput.Update(msg)
		return cmd
	}

	if dv.confirmDelete != "" {
		switch msg.String() {
		case "y", "Y":
			id := dv.confirmDelete
			dv.confirmDelete = ""
			dv.suppressed[id] = struct{}{}
			return dv.deleteDocument(id)
		case "n", "N", "esc":
			dv.confirmDelete = ""
		}
		return nil
	}

	switch msg.String() {
	case "j", "down":
		if dv.selected < len(dv.docs)-1 {
			dv.selected++
		}
	case "k", "up":
		if dv.selected > 0 {
			dv.selected--
		}
	case "enter", " ":
		if dv.selected >= 0 && dv.selected < len(dv.docs) {
			id := dv.docs[dv.selected].ID
			return func() tea.Msg { return documentSelectedMsg{id: id} }
		}
	case "a":
		dv.uploading = true
		dv.pathInput.SetValue("")
		return dv.pathInput.Focus()
	case "d":
		if dv.selected >= 0 && dv.selected < len(dv.docs) {
			dv.confirmDelete = dv.docs[dv.selected].ID
		}
	case "r":
		dv.busy = true
		return dv.loadDocuments
	}
	return nil
}

func (dv *documentsView) view(focused bool) string {
	var lines []string
	lines = append(lines, titleStyle.Render("Documents"), "")

	if dv.busy {
		lines = append(lines, statusStyle.Render("Working..."))
	}

	if len(dv.docs) == 0 && !dv.busy {
		lines = append(lines, helpStyle.Render("No documents yet."), helpStyle.Render("Press a to add one."))
	}

	for i, doc := range dv.docs {
		label := fmt.Sprintf("%s (%d)", doc.Title, doc.NumPages)
		style := lipgloss.NewStyle()
		if i == dv.selected && focused {
			style = selectedStyle
		}
		if doc.ID == dv.deps.Session.ActiveDoc {
			style = activeDocStyle
		}
		lines = append(lines, style.Render(truncate(label, dv.width-2)))
	}

	lines = append(lines, "")
	switch {
	case dv.uploading:
		lines = append(lines, "Add document:", dv.pathInput.View(), helpStyle.Render("enter: ingest | esc: cancel"))
	case dv.confirmDelete != "":
		lines = append(lines, errorStyle.Render("Delete "+dv.confirmDelete+"? (y/n)"))
	default:
		lines = append(lines, helpStyle.Render("j/k: move | enter: open"), helpStyle.Render("a: add | d: delete | r: reload"))
	}

	border := inactiveBorderStyle
	if focused {
		border = activeBorderStyle
	}
	return border.Width(dv.width).Height(dv.height).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// visible filters out locally suppressed ids and sorts by title.
func (dv *documentsView) visible(all map[string]registry.Document) []registry.Document {
	docs := make([]registry.Document, 0, len(all))
	for id, doc := range all {
		if _, hidden := dv.suppressed[id]; hidden {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Title < docs[j].Title })
	return docs
}

// loadDocuments lists documents from the registry.
func (dv *documentsView) loadDocuments() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	docs, err := dv.deps.Registry.List(ctx)
	if err != nil {
		return errMsg{err: fmt.Errorf("list documents: %w", err)}
	}
	return documentsLoadedMsg{docs: docs}
}

// ingestPath stages the file, extracts its text, and stores it.
func (dv *documentsView) ingestPath(path string) tea.Cmd {
	return func() tea.Msg {
		if !ingest.SupportedType(path) {
			return errMsg{err: fmt.Errorf("unsupported file type: %s", filepath.Base(path))}
		}

		f, err := os.Open(path)
		if err != nil {
			return errMsg{err: fmt.Errorf("open upload: %w", err)}
		}
		staged, err := ingest.Stage(f, dv.deps.UploadsDir, filepath.Base(path))
		f.Close()
		if err != nil {
			return errMsg{err: err}
		}

		text, err := dv.deps.Extractor.ExtractText(staged)
		if err != nil {
			return errMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		result, err := dv.deps.Ingestor.Ingest(ctx, filepath.Base(path), text)
		if err != nil {
			return errMsg{err: err}
		}
		return documentIngestedMsg{result: result}
	}
}

func (dv *documentsView) deleteDocument(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := dv.deps.Ingestor.Delete(ctx, id); err != nil {
			return errMsg{err: err}
		}
		return documentDeletedMsg{id: id}
	}
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// documentsLoadedMsg carries a fresh registry listing.
type documentsLoadedMsg struct {
	docs map[string]registry.Document
}

// documentSelectedMsg switches the conversation to a document.
type documentSelectedMsg struct {
	id string
}

// documentDeletedMsg signals a completed deletion.
type documentDeletedMsg struct {
	id string
}

// documentIngestedMsg signals a completed ingestion.
type documentIngestedMsg struct {
	result *ingest.Result
}
