package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/gate"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/session"
)

// #region fakes
func fixedText(text string) GeneratorFunc {
	return func(context.Context, GenerateRequest) (string, error) { return text, nil }
}

type fakeSearcher struct {
	chunks []retrieval.RetrievedChunk
	err    error
}

func (f fakeSearcher) Search(context.Context, retrieval.SearchRequest) ([]retrieval.RetrievedChunk, error) {
	return f.chunks, f.err
}

type memJournal struct {
	mu   sync.Mutex
	recs []logging.TurnRecord
}

func (j *memJournal) RecordTurn(_ context.Context, rec logging.TurnRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	return nil
}

type mutableSource struct {
	mu  sync.Mutex
	cfg config.Config
}

func (s *mutableSource) Current() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *mutableSource) set(fn func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
}

func newPipeline(t *testing.T, deps Deps) *Pipeline {
	t.Helper()
	p, err := New(config.StaticSource{Config: config.Default()}, deps)
	require.NoError(t, err)
	return p
}

func tempStore(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// #endregion fakes

// #region constructor-tests
func TestNew_RequiresGeneratorAndSource(t *testing.T) {
	_, err := New(config.StaticSource{Config: config.Default()}, Deps{})
	require.Error(t, err)
	_, err = New(nil, Deps{Generator: fixedText("x")})
	require.Error(t, err)
}

// #endregion constructor-tests

// #region guardrail-tests
func TestTurn_PricingBlocked(t *testing.T) {
	p := newPipeline(t, Deps{Generator: fixedText("A new Perazzi can cost around $12,000 depending on options.")})

	res, err := p.Turn(context.Background(), TurnInput{UserText: "how much is an MX8?"})
	require.NoError(t, err)
	assert.True(t, res.Validation.ReplacedWithBlock)
	assert.Equal(t, gate.ResponsePricing, res.Text)
	assert.Equal(t, []string{"blocked:pricing"}, res.Validation.Reasons)
}

func TestTurn_NoChunksIsGeneralUnsourced(t *testing.T) {
	p := newPipeline(t, Deps{Generator: fixedText("Here's a general overview of what to consider when choosing a first competition gun.")})

	res, err := p.Turn(context.Background(), TurnInput{UserText: "what should I consider?"})
	require.NoError(t, err)
	assert.Equal(t, evidence.ModeGeneralUnsourced, res.EvidenceMode)
	assert.True(t, strings.HasPrefix(res.Text, evidence.GeneralUnsourcedLabel))
	assert.True(t, res.Validation.LabelInjected)
}

func TestTurn_ChunksMakeItSourced(t *testing.T) {
	searcher := fakeSearcher{chunks: []retrieval.RetrievedChunk{
		{ID: "a", SourcePath: "docs/mx8.md", Content: "The MX8 is a competition over-under."},
	}}
	raw := "The MX8 is Perazzi's classic competition over-under."
	p := newPipeline(t, Deps{Searcher: searcher, Generator: fixedText(raw)})

	res, err := p.Turn(context.Background(), TurnInput{UserText: "tell me about the MX8"})
	require.NoError(t, err)
	assert.Equal(t, evidence.ModePerazziSourced, res.EvidenceMode)
	assert.Equal(t, raw, res.Text)
	assert.False(t, res.Validation.Triggered)
	assert.Len(t, res.Retrieval.Chunks, 1)
}

func TestTurn_ForcedEvidenceMode(t *testing.T) {
	searcher := fakeSearcher{chunks: []retrieval.RetrievedChunk{{ID: "a", SourcePath: "docs/a.md", Content: "x"}}}
	p := newPipeline(t, Deps{Searcher: searcher, Generator: fixedText("Perazzi's warranty is lifetime for the original owner.")})

	res, err := p.Turn(context.Background(), TurnInput{UserText: "warranty?", EvidenceMode: "general_unsourced"})
	require.NoError(t, err)
	assert.Equal(t, evidence.ModeGeneralUnsourced, res.EvidenceMode)
	assert.True(t, res.Validation.QualifierInjected)
	assert.Contains(t, res.Text, "I don't have Perazzi documentation in view")
}

func TestTurn_SearchErrorDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	journal := &memJournal{}
	p := newPipeline(t, Deps{
		Searcher:  fakeSearcher{err: errors.New("index offline")},
		Generator: fixedText("The MX8 is a fine gun."),
		Journal:   journal,
		Logger:    zap.New(core),
	})

	res, err := p.Turn(context.Background(), TurnInput{UserText: "tell me about the MX8"})
	require.NoError(t, err)
	assert.Equal(t, evidence.ModeGeneralUnsourced, res.EvidenceMode)
	assert.Equal(t, retrieval.ReasonDomainSignal, res.Retrieval.Decision.Reason)
	assert.Equal(t, 1, logs.FilterMessage("search failed; continuing unsourced").Len())

	require.Len(t, journal.recs, 1)
	assert.Contains(t, journal.recs[0].SearchError, "index offline")
}

func TestTurn_GeneratorErrorAborts(t *testing.T) {
	p := newPipeline(t, Deps{Generator: GeneratorFunc(func(context.Context, GenerateRequest) (string, error) {
		return "", errors.New("model timeout")
	})})

	_, err := p.Turn(context.Background(), TurnInput{UserText: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate: model timeout")
}

// #endregion guardrail-tests

// #region archetype-tests
func TestTurn_SmoothsAndPersists(t *testing.T) {
	store := tempStore(t)
	journal := &memJournal{}
	p := newPipeline(t, Deps{Generator: fixedText("Engraving is done by hand."), Store: store, Journal: journal})
	ctx := context.Background()

	first, err := p.Turn(ctx, TurnInput{SessionID: "s1", UserText: "I want engraving"})
	require.NoError(t, err)
	require.True(t, first.Smoothed)
	assert.InDelta(t, 0.4, first.Vector.Prestige, 1e-9)
	assert.InDelta(t, 0.15, first.Vector.Loyalist, 1e-9)
	require.NotNil(t, first.Classification.Archetype)
	assert.Equal(t, archetype.Prestige, *first.Classification.Archetype)
	require.NotEmpty(t, first.VersionID)

	cur, err := store.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.VersionID, cur.VersionID)

	second, err := p.Turn(ctx, TurnInput{SessionID: "s1", UserText: "more engraving please"})
	require.NoError(t, err)
	assert.InDelta(t, 0.55, second.Vector.Prestige, 1e-9)

	next, err := store.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, second.VersionID, next.VersionID)
	assert.Equal(t, first.VersionID, next.ParentID)

	require.Len(t, journal.recs, 2)
	assert.Equal(t, "Prestige", journal.recs[1].Winner)
	assert.Equal(t, second.VersionID, journal.recs[1].VersionID)
}

func TestTurn_NoSignalsKeepsVector(t *testing.T) {
	store := tempStore(t)
	p := newPipeline(t, Deps{Generator: fixedText("Hello!"), Store: store})

	res, err := p.Turn(context.Background(), TurnInput{SessionID: "s1", UserText: "hello"})
	require.NoError(t, err)
	assert.False(t, res.Smoothed)
	assert.Nil(t, res.Eval)
	assert.Equal(t, archetype.NeutralVector(), res.Vector)
	assert.Nil(t, res.Classification.Archetype)
	assert.Nil(t, res.Classification.Decision)
	assert.Empty(t, res.VersionID)

	_, err = store.Current(context.Background(), "s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestTurn_ContextVectorAndExplicitArchetype(t *testing.T) {
	p := newPipeline(t, Deps{Generator: GeneratorFunc(func(_ context.Context, req GenerateRequest) (string, error) {
		require.NotNil(t, req.Archetype)
		assert.Equal(t, archetype.Legacy, *req.Archetype)
		return "ok", nil
	})})

	vec := archetype.Vector{Analyst: 1}
	res, err := p.Turn(context.Background(), TurnInput{
		UserText: "hello",
		Context:  TurnContext{Archetype: "Legacy", ArchetypeVector: &vec},
	})
	require.NoError(t, err)
	assert.Equal(t, vec, res.Vector)
	assert.Equal(t, 1.0, res.Classification.ArchetypeScores[archetype.Analyst])
	require.NotNil(t, res.Classification.Archetype)
	assert.Equal(t, archetype.Legacy, *res.Classification.Archetype)
}

func TestTurn_ConfigReadPerTurn(t *testing.T) {
	src := &mutableSource{cfg: config.Default()}
	p, err := New(src, Deps{Generator: fixedText("ok")})
	require.NoError(t, err)

	src.set(func(c *config.Config) { c.Archetype.SmoothingFactor = 1 })
	res, err := p.Turn(context.Background(), TurnInput{UserText: "engraving"})
	require.NoError(t, err)
	assert.Equal(t, archetype.NeutralVector(), res.Vector)

	src.set(func(c *config.Config) { c.Archetype.SmoothingFactor = 0 })
	res, err = p.Turn(context.Background(), TurnInput{UserText: "engraving"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Vector.Prestige)
}

// #endregion archetype-tests

// #region helper-tests
func TestDeriveEvidenceMode(t *testing.T) {
	assert.Equal(t, evidence.ModePerazziSourced, DeriveEvidenceMode("", 3))
	assert.Equal(t, evidence.ModeGeneralUnsourced, DeriveEvidenceMode("", 0))
	assert.Equal(t, evidence.ModeGeneralUnsourced, DeriveEvidenceMode("general_unsourced", 5))
	assert.Equal(t, evidence.ModePerazziSourced, DeriveEvidenceMode("perazzi_sourced", 0))
	assert.Equal(t, evidence.ModePerazziSourced, DeriveEvidenceMode("bogus", 0))
}

func TestSelectPrimary(t *testing.T) {
	legacy := archetype.Legacy
	assert.Equal(t, &legacy, SelectPrimary(&legacy, archetype.UniformScores(), 0.08))
	assert.Nil(t, SelectPrimary(nil, archetype.UniformScores(), 0.08))

	narrow := archetype.Scores{archetype.Loyalist: 0.25, archetype.Prestige: 0.2, archetype.Analyst: 0.2, archetype.Achiever: 0.2, archetype.Legacy: 0.15}
	assert.Nil(t, SelectPrimary(nil, narrow, 0.08))

	got := SelectPrimary(nil, narrow, 0.04)
	require.NotNil(t, got)
	assert.Equal(t, archetype.Loyalist, *got)
}

// #endregion helper-tests
