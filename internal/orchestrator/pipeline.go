package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/eval"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/gate"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/session"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/signals"
)

// #endregion

// #region pipeline-struct

// Deps are the pipeline's collaborators. Only Generator is required.
type Deps struct {
	Searcher  retrieval.Searcher
	Generator Generator
	Store     VectorStore
	Journal   TurnJournal
	Logger    *zap.Logger
}

// Pipeline runs one assistant turn: retrieval policy and search, registry
// ordering, archetype inference and smoothing, generation, post-validation.
// It holds no per-turn state and is safe for concurrent use.
type Pipeline struct {
	source config.Source
	deps   Deps
	evals  *eval.EvalHarness
	log    *zap.Logger
}

// #endregion

// #region constructor

// New creates a Pipeline reading configuration from source on every turn.
func New(source config.Source, deps Deps) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("orchestrator: nil config source")
	}
	if deps.Generator == nil {
		return nil, errors.New("orchestrator: nil generator")
	}
	return &Pipeline{
		source: source,
		deps:   deps,
		evals:  eval.NewEvalHarness(eval.DefaultEvalConfig()),
		log:    logging.OrNop(deps.Logger),
	}, nil
}

// #endregion

// #region turn

// Turn processes one user message. Only a generator failure aborts the turn;
// search, store and journal failures are logged and the turn degrades.
func (p *Pipeline) Turn(ctx context.Context, in TurnInput) (TurnResult, error) {
	cfg := p.source.Current()
	res := TurnResult{TurnID: uuid.New().String()}
	rec := logging.TurnRecord{
		TurnID:        res.TurnID,
		SessionID:     in.SessionID,
		UserTextLen:   len(in.UserText),
		SmoothingUsed: cfg.Archetype.SmoothingFactor,
	}

	previous, parentID := p.previousVector(ctx, in)

	// 1. Retrieval
	retriever := retrieval.NewRetriever(p.deps.Searcher, retrievalConfig(cfg))
	rr, err := retriever.Retrieve(ctx, retrieval.Input{UserText: in.UserText, PageURL: in.Context.PageURL})
	if err != nil {
		p.log.Warn("search failed; continuing unsourced", zap.String("turn_id", res.TurnID), zap.Error(err))
		rec.SearchError = err.Error()
	}
	res.Retrieval = rr
	res.EvidenceMode = DeriveEvidenceMode(in.EvidenceMode, len(rr.Chunks))

	// 2. Archetype inference and smoothing
	breakdown := signals.NewProducer(cfg.Boost.Tiers()).Produce(signals.ProduceInput{
		UserText:  in.UserText,
		PageURL:   in.Context.PageURL,
		ModelSlug: in.Context.ModelSlug,
		Archetype: in.Context.Archetype,
	})

	next := previous
	if !breakdown.Vector.IsZero() {
		candidate := archetype.SmoothUpdate(previous, archetype.NormalizeVector(breakdown.Vector), cfg.Archetype.SmoothingFactor)
		ev := p.evals.Run(previous, candidate)
		res.Eval = &ev
		if ev.Passed {
			next = candidate
			res.Smoothed = true
		} else {
			p.log.Warn("smoothed vector rejected; keeping previous", zap.String("turn_id", res.TurnID), zap.String("reason", ev.Reason))
		}
	}
	res.Vector = next

	scores := archetype.NormalizeScoresOrFallback(archetype.VectorToScores(next))
	res.Classification = archetype.BuildClassification(archetype.Breakdown{
		Primary:   SelectPrimary(breakdown.Primary, scores, cfg.Archetype.ConfidenceMin),
		Vector:    next,
		Signals:   breakdown.Signals,
		Reasoning: breakdown.Reasoning,
	})

	// 3. Generation
	raw, err := p.deps.Generator.Generate(ctx, GenerateRequest{
		TurnID:       res.TurnID,
		UserText:     in.UserText,
		Context:      in.Context,
		Chunks:       rr.Chunks,
		EvidenceMode: res.EvidenceMode,
		Archetype:    res.Classification.Archetype,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("generate: %w", err)
	}
	rec.RawTextLen = len(raw)

	// 4. Post-validation
	res.Validation = gate.PostValidate(raw, gate.Options{EvidenceMode: res.EvidenceMode})
	res.Text = res.Validation.Text

	// 5. Persistence
	if res.Smoothed && p.deps.Store != nil && in.SessionID != "" {
		version := session.NewRecord(in.SessionID, parentID, next, &res.Classification)
		if err := p.deps.Store.Commit(ctx, version); err != nil {
			p.log.Warn("commit session vector failed", zap.String("session_id", in.SessionID), zap.Error(err))
		} else {
			res.VersionID = version.VersionID
		}
	}

	fillRecord(&rec, res)
	logging.LogTurn(p.log, rec)
	if p.deps.Journal != nil {
		if err := p.deps.Journal.RecordTurn(ctx, rec); err != nil {
			p.log.Warn("journal turn failed", zap.String("turn_id", res.TurnID), zap.Error(err))
		}
	}
	return res, nil
}

// #endregion

// #region previous-vector

// previousVector prefers the vector carried in the request context, then the
// session store, then the neutral vector.
func (p *Pipeline) previousVector(ctx context.Context, in TurnInput) (archetype.Vector, string) {
	if in.Context.ArchetypeVector != nil {
		return archetype.NormalizeVector(*in.Context.ArchetypeVector), ""
	}
	if p.deps.Store == nil || in.SessionID == "" {
		return archetype.NeutralVector(), ""
	}
	cur, err := p.deps.Store.Current(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			p.log.Warn("load session vector failed", zap.String("session_id", in.SessionID), zap.Error(err))
		}
		return archetype.NeutralVector(), ""
	}
	return cur.Vector, cur.VersionID
}

// #endregion

// #region helpers

// DeriveEvidenceMode honours an explicit mode, otherwise a turn with at least
// one retrieved chunk is perazzi_sourced.
func DeriveEvidenceMode(forced string, chunkCount int) evidence.Mode {
	if strings.TrimSpace(forced) != "" {
		return evidence.ParseMode(forced)
	}
	if chunkCount > 0 {
		return evidence.ModePerazziSourced
	}
	return evidence.ModeGeneralUnsourced
}

// SelectPrimary returns explicit when set, otherwise the winner of scores
// when it leads the runner-up by at least minMargin, otherwise nil.
func SelectPrimary(explicit *archetype.Key, scores archetype.Scores, minMargin float64) *archetype.Key {
	if explicit != nil {
		return explicit
	}
	winner, runnerUp := archetype.PickWinnerAndRunnerUp(scores)
	if archetype.Margin(scores, winner, runnerUp) >= minMargin {
		return &winner
	}
	return nil
}

func retrievalConfig(cfg config.Config) retrieval.RetrievalConfig {
	rc := retrieval.DefaultConfig()
	rc.TopK = cfg.Flags.RetrievalTopK
	rc.Rerank = cfg.Flags.EnableRerank
	rc.RerankCandidateLimit = cfg.Flags.RerankCandidateLimit
	rc.ModelsRegistrySot = cfg.Flags.ModelsRegistrySot
	return rc
}

func fillRecord(rec *logging.TurnRecord, res TurnResult) {
	rec.VersionID = res.VersionID
	rec.RetrieveReason = res.Retrieval.Decision.Reason
	rec.Retrieved = len(res.Retrieval.Chunks) > 0
	rec.ChunkCount = len(res.Retrieval.Chunks)
	rec.SotReason = res.Retrieval.Sot.Reason
	rec.EvidenceMode = string(res.EvidenceMode)

	rec.Reasons = res.Validation.Reasons
	rec.ReplacedWithBlock = res.Validation.ReplacedWithBlock
	rec.LabelInjected = res.Validation.LabelInjected
	rec.QualifierInjected = res.Validation.QualifierInjected
	rec.RuleID = res.Validation.RuleID

	if d := res.Classification.Decision; d != nil {
		rec.Winner = string(d.Winner)
		rec.RunnerUp = string(d.RunnerUp)
		rec.Signals = d.Signals
	} else {
		w, r := archetype.PickWinnerAndRunnerUp(res.Classification.ArchetypeScores)
		rec.Winner, rec.RunnerUp = string(w), string(r)
	}
	if a := res.Classification.Archetype; a != nil {
		rec.Primary = string(*a)
	}
	rec.Smoothed = res.Smoothed
	if res.Eval != nil {
		rec.EvalPassed = res.Eval.Passed
		rec.EvalReason = res.Eval.Reason
	}
}

// #endregion
