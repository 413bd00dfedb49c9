package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"github.com/docchat/cli/config"
	"github.com/docchat/cli/internal/chat"
	"github.com/docchat/cli/internal/chunker"
	"github.com/docchat/cli/internal/ingest"
	"github.com/docchat/cli/internal/llm"
	"github.com/docchat/cli/internal/rag"
	"github.com/docchat/cli/internal/registry"
	"github.com/docchat/cli/internal/store"
	chromemstore "github.com/docchat/cli/internal/store/chromem"
	memorystore "github.com/docchat/cli/internal/store/memory"
	pgvectorstore "github.com/docchat/cli/internal/store/pgvector"
	"github.com/docchat/cli/internal/tui"
)

func main() {
	var (
		ingestFlag = flag.String("ingest", "", "Ingest a document file and exit")
		deleteFlag = flag.String("delete", "", "Delete an ingested document and exit")
		listFlag   = flag.Bool("list", false, "List ingested documents and exit")
	)
	flag.Parse()

	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vector store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *listFlag {
		if err := listDocuments(ctx, st); err != nil {
			fmt.Fprintf(os.Stderr, "Error listing documents: %v\n", err)
			os.Exit(1)
		}
		return
	}

	enc, err := chunker.CL100KBase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tokenizer: %v\n", err)
		os.Exit(1)
	}

	embedder := llm.NewTextEmbedder(cfg.Provider.BaseURL, cfg.APIKey(), cfg.Provider.EmbedModel, store.Dimension)
	ingestor := ingest.New(st, embedder, enc, ingest.Options{
		MaxTokens:     cfg.Processing.MaxTokens,
		MaxChars:      cfg.Processing.MaxChars,
		StoreFullText: cfg.Processing.StoreFullText,
	})

	if *deleteFlag != "" {
		if err := ingestor.Delete(ctx, *deleteFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting document: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %s\n", *deleteFlag)
		return
	}

	if *ingestFlag != "" {
		if err := ingestFile(ctx, ingestor, *ingestFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error ingesting document: %v\n", err)
			os.Exit(1)
		}
		return
	}

	completer := llm.NewClient(cfg.Provider.BaseURL, cfg.APIKey(), cfg.Provider.ChatModel)
	orchestrator := chat.NewOrchestrator(
		embedder,
		completer,
		rag.NewRetriever(st, cfg.Processing.TopK),
		rag.NewReconstructor(st),
		cfg.Provider.MaxAnswerTokens,
	)

	app := tui.NewApp(tui.Deps{
		Registry:     registry.New(st),
		Ingestor:     ingestor,
		Extractor:    ingest.NewExtractor(),
		Orchestrator: orchestrator,
		Session:      chat.NewSession(),
		UploadsDir:   cfg.Paths.UploadsDir,
	})
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// openStore builds the configured vector store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "chromem":
		return chromemstore.New(cfg.Store.Path)
	case "pgvector":
		return pgvectorstore.New(ctx, cfg.Store.ConnectionString)
	case "memory":
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ingestFile extracts text from a document file and stores it.
func ingestFile(ctx context.Context, ingestor *ingest.Ingestor, path string) error {
	if !ingest.SupportedType(path) {
		return fmt.Errorf("unsupported file type: %s", path)
	}

	text, err := ingest.NewExtractor().ExtractText(path)
	if err != nil {
		return err
	}

	result, err := ingestor.Ingest(ctx, filepath.Base(path), text)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s: %d chunks", result.Document, result.NumChunks)
	if result.FullChunks > 0 {
		fmt.Printf(", %d full-text chunks", result.FullChunks)
	}
	fmt.Println()
	return nil
}

func listDocuments(ctx context.Context, st store.Store) error {
	docs, err := registry.New(st).List(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents ingested")
		return nil
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		doc := docs[id]
		fmt.Printf("%s\t%d pages\tuploaded %s\n", doc.Title, doc.NumPages, doc.UploadDate)
	}
	return nil
}
