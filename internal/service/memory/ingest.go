package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/internal/providers/rag"
	"github.com/sandevgo/tuskdash/pkg/log"
)

const previewRunes = 200

var (
	ErrEmptyDocument    = errors.New("document contains no text")
	ErrDocumentNotFound = errors.New("document not found")
)

type IngestResult struct {
	DocumentID string
	Fragments  int
	Embedded   int
	Preview    string
}

// Ingester splits documents into overlapping fragments and stores them for retrieval.
type Ingester struct {
	repo      core.KnowledgeRepository
	embedder  core.Embedder
	chunkSize int
	overlap   int
}

func NewIngester(repo core.KnowledgeRepository, embedder core.Embedder) *Ingester {
	return &Ingester{
		repo:      repo,
		embedder:  embedder,
		chunkSize: rag.DefaultChunkSize,
		overlap:   rag.DefaultChunkOverlap,
	}
}

// Ingest stores text under a new document id. Fragments whose embedding
// fails are kept without a vector and are never returned by retrieval.
func (i *Ingester) Ingest(ctx context.Context, filename, text string) (IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return IngestResult{}, ErrEmptyDocument
	}
	logger := log.FromCtx(ctx).With().Str("filename", filename).Logger()

	docID := uuid.NewString()
	parts := rag.SplitText(text, i.chunkSize, i.overlap)

	dims := i.embedder.Dims()
	fragments := make([]core.KnowledgeFragment, 0, len(parts))
	embedded := 0
	for idx, part := range parts {
		f := core.KnowledgeFragment{
			DocumentID: docID,
			Filename:   filename,
			Index:      idx,
			Text:       part,
			TokenCount: rag.CountTokens(part),
		}

		vec, err := i.embedder.Embed(ctx, part, core.PurposeDocument)
		switch {
		case err != nil:
			logger.Warn().Err(err).Int("fragment", idx).Msg("failed to embed fragment")
		case dims > 0 && len(vec) != dims:
			logger.Warn().Int("fragment", idx).Int("got", len(vec)).Int("want", dims).Msg("fragment embedding has wrong size")
		default:
			f.Embedding = vec
			embedded++
		}
		fragments = append(fragments, f)
	}

	if err := i.repo.AddFragments(ctx, fragments); err != nil {
		return IngestResult{}, fmt.Errorf("failed to store document: %w", err)
	}

	logger.Info().
		Str("document_id", docID).
		Int("fragments", len(fragments)).
		Int("embedded", embedded).
		Msg("document ingested")

	return IngestResult{
		DocumentID: docID,
		Fragments:  len(fragments),
		Embedded:   embedded,
		Preview:    rag.Preview(text, previewRunes),
	}, nil
}

type Document struct {
	ID        string
	Filename  string
	Fragments int
	Tokens    int
	Text      string
}

// Document rebuilds an ingested document from its stored fragments.
func (i *Ingester) Document(ctx context.Context, id string) (Document, error) {
	fragments, err := i.repo.DocumentFragments(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("failed to load document: %w", err)
	}
	if len(fragments) == 0 {
		return Document{}, ErrDocumentNotFound
	}

	doc := Document{ID: id, Filename: fragments[0].Filename, Fragments: len(fragments)}
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		texts = append(texts, f.Text)
		doc.Tokens += f.TokenCount
	}
	doc.Text = rag.Reassemble(texts, i.overlap)
	return doc, nil
}
