package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/internal/providers/rag"
	"github.com/sandevgo/tuskdash/pkg/log"
	"golang.org/x/sync/errgroup"
)

const errorReplyPrefix = "AI error: "

var ErrEmptyMessage = errors.New("message must not be empty")

// Assembler turns one user utterance into a persisted exchange and a model reply.
type Assembler struct {
	cfg       *config.AppConfig
	turns     core.TurnRepository
	knowledge core.KnowledgeRepository
	embedder  core.Embedder
	model     core.ChatModel
	prompter  *SysPrompt
}

func NewAssembler(
	cfg *config.AppConfig,
	turns core.TurnRepository,
	knowledge core.KnowledgeRepository,
	embedder core.Embedder,
	model core.ChatModel,
	prompter *SysPrompt,
) *Assembler {
	return &Assembler{
		cfg:       cfg,
		turns:     turns,
		knowledge: knowledge,
		embedder:  embedder,
		model:     model,
		prompter:  prompter,
	}
}

// Embed never fails; an embedder error yields an unavailable embedding.
func (a *Assembler) Embed(ctx context.Context, text string) core.Embedding {
	vec, err := a.embedder.Embed(ctx, text, core.PurposeQuery)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to embed message, retrieval disabled for this call")
		return core.UnavailableEmbedding()
	}
	if dims := a.embedder.Dims(); dims > 0 && len(vec) != dims {
		log.FromCtx(ctx).Warn().Int("got", len(vec)).Int("want", dims).Msg("embedding dimension mismatch, retrieval disabled for this call")
		return core.UnavailableEmbedding()
	}
	return core.NewEmbedding(vec)
}

func (a *Assembler) RecordTurn(ctx context.Context, role core.Role, text string, emb core.Embedding) (int64, error) {
	turn := core.Turn{Role: role, Text: text}
	if emb.Available {
		turn.Embedding = emb.Vector
	}

	id, err := a.turns.AddTurn(ctx, turn)
	if err != nil {
		return 0, fmt.Errorf("failed to record %s turn: %w", role, err)
	}
	return id, nil
}

func (a *Assembler) RetrieveMemory(ctx context.Context, emb core.Embedding, excludeID int64, k int) ([]core.Turn, error) {
	if !emb.Available || len(emb.Vector) == 0 || k <= 0 {
		return nil, nil
	}
	return a.turns.NearestUserTurns(ctx, emb.Vector, excludeID, k)
}

func (a *Assembler) RetrieveKnowledge(ctx context.Context, emb core.Embedding, k int) ([]core.KnowledgeFragment, error) {
	if !emb.Available || len(emb.Vector) == 0 || k <= 0 {
		return nil, nil
	}
	return a.knowledge.NearestFragments(ctx, emb.Vector, k)
}

func (a *Assembler) RecentTurns(ctx context.Context, limit int, excludeID int64) ([]core.Turn, error) {
	return a.turns.RecentTurns(ctx, limit, excludeID)
}

func (a *Assembler) BuildPrompt(
	memory []core.Turn,
	knowledge []core.KnowledgeFragment,
	recent []core.Turn,
	userText string,
) core.PromptBundle {
	return a.prompter.Build(memory, knowledge, recent, userText)
}

// Generate converts every model failure into a user-safe reply.
func (a *Assembler) Generate(ctx context.Context, bundle core.PromptBundle) core.Reply {
	model := bundle.Model
	if model == "" {
		model = a.model.Name()
	}

	text, err := a.model.Generate(ctx, bundle)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("model", model).Msg("generation failed")
		return core.Reply{
			Text:   errorReplyPrefix + err.Error(),
			Model:  model,
			Failed: true,
			Reason: err.Error(),
		}
	}
	return core.Reply{Text: text, Model: model}
}

// Chat runs one exchange end to end. Only store failures are returned as errors;
// the assistant turn is recorded even when generation fails.
func (a *Assembler) Chat(ctx context.Context, userText, model string) (core.Reply, error) {
	if strings.TrimSpace(userText) == "" {
		return core.Reply{}, ErrEmptyMessage
	}
	logger := log.FromCtx(ctx)

	emb := a.Embed(ctx, userText)

	userID, err := a.RecordTurn(ctx, core.RoleUser, userText, emb)
	if err != nil {
		return core.Reply{}, err
	}

	var (
		memory    []core.Turn
		knowledge []core.KnowledgeFragment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := a.RetrieveMemory(gctx, emb, userID, a.cfg.MemoryK)
		if err != nil {
			logger.Warn().Err(err).Msg("memory retrieval failed")
			return nil
		}
		memory = res
		return nil
	})
	g.Go(func() error {
		res, err := a.RetrieveKnowledge(gctx, emb, a.cfg.KnowledgeK)
		if err != nil {
			logger.Warn().Err(err).Msg("knowledge retrieval failed")
			return nil
		}
		knowledge = res
		return nil
	})
	_ = g.Wait()

	recent, err := a.RecentTurns(ctx, a.cfg.ContextWindow, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load recent turns")
		recent = nil
	}

	bundle := a.BuildPrompt(memory, knowledge, recent, userText)
	bundle.Model = model

	logger.Debug().
		Int("memory", len(memory)).
		Int("knowledge", len(knowledge)).
		Int("recent", len(recent)).
		Int("prompt_tokens", rag.CountTokens(bundle.System)+rag.CountTokens(userText)).
		Msg("prompt assembled")

	reply := a.Generate(ctx, bundle)

	if _, err := a.RecordTurn(ctx, core.RoleAssistant, reply.Text, core.UnavailableEmbedding()); err != nil {
		return reply, err
	}
	return reply, nil
}

// History returns the latest turns, oldest first.
func (a *Assembler) History(ctx context.Context) ([]core.Turn, error) {
	return a.turns.RecentTurns(ctx, a.cfg.HistoryLimit, 0)
}

func (a *Assembler) ModelName() string {
	return a.model.Name()
}

func (a *Assembler) ModelAvailable() bool {
	return a.model.Available()
}

// Models lists selectable models, falling back to the configured one.
func (a *Assembler) Models(ctx context.Context) []string {
	models, err := a.model.Models(ctx)
	if err != nil || len(models) == 0 {
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to list models")
		}
		return []string{a.model.Name()}
	}
	return models
}
