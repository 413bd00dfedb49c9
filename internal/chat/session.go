// Package chat holds per-conversation state and the orchestrator that turns a
// user message into an answer via either retrieval or full-document context.
package chat

import (
	"github.com/google/uuid"

	"github.com/docchat/cli/internal/llm"
)

// Mode selects how a turn gathers document context.
type Mode string

const (
	// ModeRAG answers from retrieved chunks plus conversation history.
	ModeRAG Mode = "RAG"
	// ModeNoRAG answers each turn fresh from the complete document text.
	ModeNoRAG Mode = "NO_RAG"
)

// Session is the explicit per-conversation state object. Every concurrent
// session owns its own instance; nothing here is global.
type Session struct {
	ID        uuid.UUID
	ActiveDoc string
	Mode      Mode
	Debug     bool
	Messages  []llm.Message

	processed map[string]struct{}
	contents  map[string]string // reconstructed full text, keyed by document id
}

// NewSession creates an idle session in RAG mode.
func NewSession() *Session {
	return &Session{
		ID:        uuid.New(),
		Mode:      ModeRAG,
		processed: make(map[string]struct{}),
		contents:  make(map[string]string),
	}
}

// SetActiveDoc switches the conversation to another document and clears the
// turn history, which belongs to one document at a time.
func (s *Session) SetActiveDoc(doc string) {
	if doc == s.ActiveDoc {
		return
	}
	s.ActiveDoc = doc
	s.Messages = nil
}

// ClearActiveDoc drops the active document and its history, e.g. after the
// document was deleted.
func (s *Session) ClearActiveDoc() {
	s.ActiveDoc = ""
	s.Messages = nil
}

// AppendUser records the user's message. It stays recorded even when the turn
// later fails.
func (s *Session) AppendUser(content string) {
	s.Messages = append(s.Messages, llm.Message{Role: llm.RoleUser, Content: content})
}

// AppendAssistant records a successful answer.
func (s *Session) AppendAssistant(content string) {
	s.Messages = append(s.Messages, llm.Message{Role: llm.RoleAssistant, Content: content})
}

// MarkProcessed remembers that an upload was already ingested this session.
func (s *Session) MarkProcessed(name string) {
	s.processed[name] = struct{}{}
}

// IsProcessed reports whether an upload was already ingested this session.
func (s *Session) IsProcessed(name string) bool {
	_, ok := s.processed[name]
	return ok
}

// ForgetProcessed drops a name from the processed set, e.g. after deletion.
func (s *Session) ForgetProcessed(name string) {
	delete(s.processed, name)
}

// CachedDocument returns the session-cached full text of a document.
func (s *Session) CachedDocument(doc string) (string, bool) {
	text, ok := s.contents[doc]
	return text, ok
}

// CacheDocument stores reconstructed full text for the rest of the session,
// so multi-turn conversations do not re-query the store every turn.
func (s *Session) CacheDocument(doc, text string) {
	s.contents[doc] = text
}

// DropCachedDocument evicts a document's cached text.
func (s *Session) DropCachedDocument(doc string) {
	delete(s.contents, doc)
}
