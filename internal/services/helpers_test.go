package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/db"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// fakeProvider returns canned responses in order and records the prompts
// it was called with. The mutex matters: generation fans out one completion
// per platform, so Complete runs from concurrent goroutines.
type fakeProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   [][]llm.Message
	opts      []llm.Options
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, messages)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "{}", nil
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func (f *fakeProvider) Stream(ctx context.Context, messages []llm.Message, opts llm.Options, onDelta func(string)) error {
	text, err := f.Complete(ctx, messages, opts)
	if err != nil {
		return err
	}
	onDelta(text)
	return nil
}

func (f *fakeProvider) CountTokens(ctx context.Context, text string) (int, error) {
	return llm.ApproxTokens(text), nil
}

func (f *fakeProvider) TestConnection(ctx context.Context) bool { return f.err == nil }

type testEnv struct {
	db          *gorm.DB
	cloneRepo   repos.CloneRepo
	sampleRepo  repos.SampleRepo
	versionRepo repos.DNAVersionRepo
	sourceRepo  repos.MergeSourceRepo
	contentRepo repos.ContentRepo
	methRepo    repos.MethodologyRepo
	registry    *llm.Registry
	provider    *fakeProvider

	clones      CloneService
	samples     SampleService
	dna         DNAService
	merge       MergeService
	content     ContentService
	scoring     ScoringService
	methodology MethodologyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	svc, err := db.NewMemory(log)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	conn := svc.DB()

	env := &testEnv{
		db:          conn,
		cloneRepo:   repos.NewCloneRepo(conn, log),
		sampleRepo:  repos.NewSampleRepo(conn, log),
		versionRepo: repos.NewDNAVersionRepo(conn, log),
		sourceRepo:  repos.NewMergeSourceRepo(conn, log),
		contentRepo: repos.NewContentRepo(conn, log),
		methRepo:    repos.NewMethodologyRepo(conn, log),
		provider:    &fakeProvider{},
	}
	env.registry = llm.NewRegistry(llm.Credentials{DefaultProvider: "fake"}, log)
	env.registry.Register("fake", env.provider)

	env.clones = NewCloneService(conn, log, env.cloneRepo, types.SoftDeleteRetentionDays)
	env.samples = NewSampleService(conn, log, env.cloneRepo, env.sampleRepo)
	env.dna = NewDNAService(conn, log, env.cloneRepo, env.sampleRepo, env.versionRepo, env.methRepo, env.registry)
	env.merge = NewMergeService(conn, log, env.cloneRepo, env.versionRepo, env.sourceRepo, env.registry)
	env.content = NewContentService(conn, log, env.cloneRepo, env.versionRepo, env.contentRepo, env.registry)
	env.scoring = NewScoringService(conn, log, env.contentRepo, env.versionRepo, env.registry)
	env.methodology = NewMethodologyService(conn, log, env.methRepo)
	return env
}

func (e *testEnv) mustCreateClone(t *testing.T, name string) *types.VoiceClone {
	t.Helper()
	clone, err := e.clones.Create(context.Background(), name, "", nil)
	if err != nil {
		t.Fatalf("failed to create clone: %v", err)
	}
	return clone
}

func (e *testEnv) mustAddSample(t *testing.T, clone *types.VoiceClone, content, contentType string) *types.WritingSample {
	t.Helper()
	sample, err := e.samples.Add(context.Background(), AddSampleInput{
		CloneID:     clone.ID,
		Content:     content,
		ContentType: contentType,
	})
	if err != nil {
		t.Fatalf("failed to add sample: %v", err)
	}
	return sample
}

func (e *testEnv) mustAnalyze(t *testing.T, clone *types.VoiceClone) *types.VoiceDNAVersion {
	t.Helper()
	version, err := e.dna.Analyze(context.Background(), clone.ID, "fake", "")
	if err != nil {
		t.Fatalf("failed to analyze clone: %v", err)
	}
	return version
}

const dnaResponse = `{"dna": {"tone": "wry", "rhythm": "staccato", "consistency_score": 80}, "prominence_scores": {"tone": 90, "rhythm": 70}}`
