package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/candidate-scorer/internal/models"
	"alfredoptarigan/candidate-scorer/internal/repositories"
)

type fakeEvalRepo struct {
	mu       sync.Mutex
	evals    map[uuid.UUID]*models.Evaluation
	statuses []models.EvaluationStatus
	result   *models.ScoreResult
	errMsg   string
	stages   []models.StageReport
}

func newFakeEvalRepo(evals ...models.Evaluation) *fakeEvalRepo {
	r := &fakeEvalRepo{evals: map[uuid.UUID]*models.Evaluation{}}
	for i := range evals {
		e := evals[i]
		r.evals[e.ID] = &e
	}
	return r
}

func (r *fakeEvalRepo) Create(eval *models.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if eval.ID == uuid.Nil {
		eval.ID = uuid.New()
	}
	r.evals[eval.ID] = eval
	return nil
}

func (r *fakeEvalRepo) FindByID(id uuid.UUID) (*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.evals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEvalRepo) UpdateStatus(id uuid.UUID, status models.EvaluationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.evals[id]
	if !ok {
		return repositories.ErrNotFound
	}
	e.Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeEvalRepo) UpdateResult(id uuid.UUID, result *models.ScoreResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evals[id].Status = models.StatusCompleted
	r.statuses = append(r.statuses, models.StatusCompleted)
	r.result = result
	return nil
}

func (r *fakeEvalRepo) UpdateError(id uuid.UUID, errorMsg string, stages []models.StageReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.evals[id]; ok {
		e.Status = models.StatusFailed
	}
	r.statuses = append(r.statuses, models.StatusFailed)
	r.errMsg = errorMsg
	r.stages = stages
	return nil
}

func (r *fakeEvalRepo) FindPendingJobs(limit int) ([]models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Evaluation
	for _, e := range r.evals {
		if e.Status == models.StatusQueued {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEvalRepo) LatestByCandidates(ids []uuid.UUID) (map[uuid.UUID]models.Evaluation, error) {
	return map[uuid.UUID]models.Evaluation{}, nil
}

type fakeCandidateRepo struct {
	candidates map[uuid.UUID]*models.Candidate
	profile    *repositories.CandidateProfile
}

func (r *fakeCandidateRepo) Create(c *models.Candidate) error {
	r.candidates[c.ID] = c
	return nil
}

func (r *fakeCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	c, ok := r.candidates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (r *fakeCandidateRepo) List(skip, limit int) ([]models.Candidate, error) { return nil, nil }
func (r *fakeCandidateRepo) Count() (int64, error)                            { return 0, nil }

func (r *fakeCandidateRepo) UpdateProfile(id uuid.UUID, profile repositories.CandidateProfile) error {
	r.profile = &profile
	return nil
}

type stubScoring struct {
	result *models.ScoreResult
	err    error
	req    models.ScoreRequest
}

func (s *stubScoring) Score(ctx context.Context, req models.ScoreRequest) (*models.ScoreResult, error) {
	s.req = req
	return s.result, s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (p *recordingPublisher) PublishStatus(ctx context.Context, event StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) statuses() []models.EvaluationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.EvaluationStatus
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

type evaluatorFixture struct {
	evalID     uuid.UUID
	evals      *fakeEvalRepo
	candidates *fakeCandidateRepo
	scoring    *stubScoring
	index      *memoryVectorStore
	events     *recordingPublisher
	service    EvaluatorService
}

func newEvaluatorFixture(t *testing.T) *evaluatorFixture {
	t.Helper()

	storage, err := NewLocalStorageService(t.TempDir())
	require.NoError(t, err)
	key, err := storage.SaveFile(context.Background(), "cv.txt", []byte("Jane Smith. Go engineer."))
	require.NoError(t, err)

	candidate := &models.Candidate{
		ID:             uuid.New(),
		Filename:       "cv.txt",
		DocumentType:   "txt",
		DocumentKey:    key,
		JobDescription: "Senior Go engineer",
	}
	eval := models.Evaluation{
		ID:          uuid.New(),
		CandidateID: candidate.ID,
		Status:      models.StatusQueued,
		UseCache:    true,
		ManualURLs:  models.ProfileURLs{LinkedIn: strPtr("https://linkedin.com/in/jane")},
	}

	f := &evaluatorFixture{
		evalID:     eval.ID,
		evals:      newFakeEvalRepo(eval),
		candidates: &fakeCandidateRepo{candidates: map[uuid.UUID]*models.Candidate{candidate.ID: candidate}},
		scoring: &stubScoring{result: &models.ScoreResult{
			CandidateName: strPtr("Jane Smith"),
			TotalScore:    81,
			ResumeText:    "Jane Smith. Go engineer.",
		}},
		index:  &memoryVectorStore{},
		events: &recordingPublisher{},
	}
	f.service = NewEvaluatorService(
		f.evals, f.candidates, storage, f.scoring,
		NewCandidateIndex(f.index, &fixedEmbedder{}, nil, nil),
		f.events, nil,
	)
	return f
}

func TestEvaluateCandidateCompletes(t *testing.T) {
	f := newEvaluatorFixture(t)

	require.NoError(t, f.service.EvaluateCandidate(context.Background(), f.evalID))

	assert.Equal(t, []models.EvaluationStatus{models.StatusProcessing, models.StatusCompleted}, f.evals.statuses)
	assert.Equal(t, "Senior Go engineer", f.scoring.req.JobDescription)
	assert.Equal(t, models.DocumentTXT, f.scoring.req.Document.Type)
	assert.Equal(t, "Jane Smith. Go engineer.", string(f.scoring.req.Document.Content))
	assert.True(t, f.scoring.req.UseCache)
	require.NotNil(t, f.scoring.req.Manual.LinkedIn)

	require.NotNil(t, f.candidates.profile)
	assert.Equal(t, "Jane Smith", *f.candidates.profile.Name)
	assert.Len(t, f.index.chunks, 1)
	assert.Equal(t, []models.EvaluationStatus{models.StatusProcessing, models.StatusCompleted}, f.events.statuses())
}

func TestEvaluateCandidateFatalStage(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.scoring.result = nil
	f.scoring.err = &StageError{Stage: StageEvaluate, Fatal: true, Err: errors.New("model unavailable")}

	err := f.service.EvaluateCandidate(context.Background(), f.evalID)
	require.ErrorIs(t, err, ErrFatalInput)

	assert.Contains(t, f.evals.errMsg, "model unavailable")
	require.Len(t, f.evals.stages, 1)
	assert.Equal(t, models.OutcomeFatal, f.evals.stages[0].Outcome)
	assert.Empty(t, f.index.chunks)
	assert.Equal(t, []models.EvaluationStatus{models.StatusProcessing, models.StatusFailed}, f.events.statuses())
}

func TestEvaluateCandidateMissingDocument(t *testing.T) {
	f := newEvaluatorFixture(t)
	for _, c := range f.candidates.candidates {
		c.DocumentKey = "resume_missing.txt"
	}

	err := f.service.EvaluateCandidate(context.Background(), f.evalID)
	require.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Contains(t, f.evals.statuses, models.StatusFailed)
}

func TestEvaluateCandidateUnknownEvaluation(t *testing.T) {
	f := newEvaluatorFixture(t)

	err := f.service.EvaluateCandidate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestWorkerProcessesEnqueuedJob(t *testing.T) {
	f := newEvaluatorFixture(t)
	w := NewWorker(f.evals, f.service, WorkerOptions{Concurrency: 2, PollInterval: time.Hour}, nil)

	w.Start(context.Background())
	w.EnqueueJob(f.evalID)

	assert.Eventually(t, func() bool {
		e, err := f.evals.FindByID(f.evalID)
		return err == nil && e.Status == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	w.Stop()
	w.Stop()
}

func TestWorkerPollsPendingJobs(t *testing.T) {
	f := newEvaluatorFixture(t)
	w := NewWorker(f.evals, f.service, WorkerOptions{Concurrency: 1, PollInterval: 20 * time.Millisecond}, nil)

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		e, err := f.evals.FindByID(f.evalID)
		return err == nil && e.Status == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func sampleRequest() models.ScoreRequest {
	return models.ScoreRequest{
		Document: models.RawDocument{
			Filename: "jane.txt",
			Type:     models.DocumentTXT,
			Content:  []byte("Jane Smith. Go engineer."),
		},
		JobDescription: "Senior Go engineer",
		UseCache:       true,
	}
}

func TestSubmitQueuesEvaluation(t *testing.T) {
	f := newEvaluatorFixture(t)

	eval, err := f.service.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, eval.Status)

	candidate, err := f.candidates.FindByID(eval.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, "jane.txt", candidate.Filename)
	assert.NotEmpty(t, candidate.DocumentKey)
	assert.Equal(t, []models.EvaluationStatus{models.StatusQueued}, f.events.statuses())
}

func TestScoreNowPersistsResult(t *testing.T) {
	f := newEvaluatorFixture(t)

	result, eval, err := f.service.ScoreNow(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, 81.0, result.TotalScore)
	assert.Equal(t, models.StatusCompleted, eval.Status)
	assert.Same(t, result, f.evals.result)
	assert.Len(t, f.index.chunks, 1)
}

func TestScoreNowFatalErrorStoresNothing(t *testing.T) {
	f := newEvaluatorFixture(t)
	f.scoring.result = nil
	f.scoring.err = &StageError{Stage: StageExtractText, Fatal: true, Err: ErrEmptyDocument}
	candidatesBefore := len(f.candidates.candidates)

	result, eval, err := f.service.ScoreNow(context.Background(), sampleRequest())
	require.ErrorIs(t, err, ErrFatalInput)
	assert.Nil(t, result)
	assert.Nil(t, eval)

	assert.Len(t, f.candidates.candidates, candidatesBefore)
	assert.Len(t, f.evals.evals, 1)
	assert.Empty(t, f.events.statuses())
}
