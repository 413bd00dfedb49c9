package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docchat/cli/internal/llm"
	"github.com/docchat/cli/internal/rag"
	"github.com/docchat/cli/internal/store"
)

const (
	ragPersona = "You are an expert assistant holding a conversation about an uploaded document. " +
		"Use the provided context to answer precisely and naturally."

	fullDocPersona = "You are an expert assistant that analyzes documents and answers questions about them. " +
		"You will be given the complete content of a document. " +
		"Base every answer only on the information in that document. " +
		"If the information is not in the document, say so clearly."

	// DefaultMaxAnswerTokens bounds the completion length per turn.
	DefaultMaxAnswerTokens = 500
)

// Turn is one answered exchange, including the debug trace the UI can show.
type Turn struct {
	Answer       string
	Chunks       []rag.ScoredChunk // RAG mode only
	ContextChars int
	FromCache    bool // NO_RAG mode: full text served from the session cache
}

// Orchestrator runs the per-turn pipeline: embed, then retrieve or
// reconstruct, then complete. Each turn is a linear chain of synchronous
// calls; any step failure aborts the turn.
type Orchestrator struct {
	embedder        llm.Embedder
	completer       llm.Completer
	retriever       *rag.Retriever
	reconstructor   *rag.Reconstructor
	maxAnswerTokens int
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(embedder llm.Embedder, completer llm.Completer, retriever *rag.Retriever, reconstructor *rag.Reconstructor, maxAnswerTokens int) *Orchestrator {
	if maxAnswerTokens <= 0 {
		maxAnswerTokens = DefaultMaxAnswerTokens
	}
	return &Orchestrator{
		embedder:        embedder,
		completer:       completer,
		retriever:       retriever,
		reconstructor:   reconstructor,
		maxAnswerTokens: maxAnswerTokens,
	}
}

// Answer runs one turn for the session's active document. The user message is
// recorded before any external call; on failure the turn aborts with a
// StepError and no assistant message is appended.
func (o *Orchestrator) Answer(ctx context.Context, sess *Session, input string) (*Turn, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty message")
	}
	if sess.ActiveDoc == "" {
		return nil, errors.New("no active document")
	}

	sess.AppendUser(input)

	var (
		turn *Turn
		err  error
	)
	if sess.Mode == ModeNoRAG {
		turn, err = o.answerFullDocument(ctx, sess, input)
	} else {
		turn, err = o.answerRAG(ctx, sess)
	}
	if err != nil {
		return nil, err
	}

	sess.AppendAssistant(turn.Answer)
	return turn, nil
}

// answerRAG embeds the latest user message, retrieves context, and completes
// with the full prior turn history in the prompt.
func (o *Orchestrator) answerRAG(ctx context.Context, sess *Session) (*Turn, error) {
	query := sess.Messages[len(sess.Messages)-1].Content

	vec, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, stepErr(StepEmbedding, err)
	}

	chunks, err := o.retriever.Retrieve(ctx, vec, store.RAGNamespace(sess.ActiveDoc))
	if err != nil {
		return nil, stepErr(StepRetrieval, err)
	}
	contextBlock := rag.JoinContext(chunks)

	messages := make([]llm.Message, 0, len(sess.Messages)+2)
	messages = append(messages,
		llm.Message{Role: llm.RoleSystem, Content: ragPersona},
		llm.Message{Role: llm.RoleSystem, Content: "Relevant document context: " + contextBlock},
	)
	messages = append(messages, sess.Messages...)

	answer, err := o.completer.Complete(ctx, messages, o.maxAnswerTokens)
	if err != nil {
		return nil, stepErr(StepCompletion, err)
	}
	return &Turn{Answer: answer, Chunks: chunks, ContextChars: len(contextBlock)}, nil
}

// answerFullDocument reconstructs (or reuses) the complete document text and
// answers the question fresh against it. Prior turn history is deliberately
// not included: each NO_RAG turn stands alone.
func (o *Orchestrator) answerFullDocument(ctx context.Context, sess *Session, input string) (*Turn, error) {
	content, fromCache := sess.CachedDocument(sess.ActiveDoc)
	if !fromCache {
		text, err := o.reconstructor.Reconstruct(ctx, sess.ActiveDoc)
		if err != nil {
			return nil, stepErr(StepReconstruction, err)
		}
		if text == "" {
			return nil, stepErr(StepReconstruction, fmt.Errorf("no stored full text for %q", sess.ActiveDoc))
		}
		sess.CacheDocument(sess.ActiveDoc, text)
		content = text
	}

	prompt := fmt.Sprintf(
		"Below is the complete content of the document:\n\n"+
			"---BEGIN DOCUMENT---\n%s\n---END DOCUMENT---\n\n"+
			"The user's question is: %s\n\n"+
			"Answer using ONLY the information in the document above.",
		content, input,
	)
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fullDocPersona},
		{Role: llm.RoleUser, Content: prompt},
	}

	answer, err := o.completer.Complete(ctx, messages, o.maxAnswerTokens)
	if err != nil {
		return nil, stepErr(StepCompletion, err)
	}
	return &Turn{Answer: answer, ContextChars: len(content), FromCache: fromCache}, nil
}
