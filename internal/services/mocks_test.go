package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
	"github.com/SAP-F-2025/form-builder-service/internal/cache"
	"github.com/SAP-F-2025/form-builder-service/internal/events"
	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"github.com/SAP-F-2025/form-builder-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ===== REPOSITORY MOCKS =====

type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, form *models.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	args := m.Called(ctx, id)
	if form, ok := args.Get(0).(*models.Form); ok {
		return form, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) Update(ctx context.Context, form *models.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFormRepository) List(ctx context.Context, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	args := m.Called(ctx, filters)
	forms, _ := args.Get(0).([]*models.Form)
	return forms, args.Get(1).(int64), args.Error(2)
}

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.FormResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, formID, id primitive.ObjectID) (*models.FormResponse, error) {
	args := m.Called(ctx, formID, id)
	if response, ok := args.Get(0).(*models.FormResponse); ok {
		return response, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResponseRepository) UpdateScore(ctx context.Context, response *models.FormResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) Delete(ctx context.Context, formID, id primitive.ObjectID) error {
	args := m.Called(ctx, formID, id)
	return args.Error(0)
}

func (m *MockResponseRepository) DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) ListByForm(ctx context.Context, formID primitive.ObjectID, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	args := m.Called(ctx, formID, filters)
	responses, _ := args.Get(0).([]*models.FormResponse)
	return responses, args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) ListAllByForm(ctx context.Context, formID primitive.ObjectID) ([]*models.FormResponse, error) {
	args := m.Called(ctx, formID)
	responses, _ := args.Get(0).([]*models.FormResponse)
	return responses, args.Error(1)
}

func (m *MockResponseRepository) ScoreSummaries(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error) {
	args := m.Called(ctx, formID)
	if load, ok := args.Get(0).(func() []models.FormResponse); ok {
		return load(), args.Error(1)
	}
	summaries, _ := args.Get(0).([]models.FormResponse)
	return summaries, args.Error(1)
}

type mockRepository struct {
	forms     *MockFormRepository
	responses *MockResponseRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		forms:     new(MockFormRepository),
		responses: new(MockResponseRepository),
	}
}

func (r *mockRepository) Forms() repositories.FormRepository         { return r.forms }
func (r *mockRepository) Responses() repositories.ResponseRepository { return r.responses }
func (r *mockRepository) EnsureSchema(context.Context) error         { return nil }
func (r *mockRepository) Ping(context.Context) error                 { return nil }
func (r *mockRepository) Close(context.Context) error                { return nil }

// ===== CACHE MOCK =====

type MockAnalyticsCache struct {
	mock.Mock
}

func (m *MockAnalyticsCache) Get(ctx context.Context, formID string) (*analytics.Analytics, int64, error) {
	args := m.Called(ctx, formID)
	summary, _ := args.Get(0).(*analytics.Analytics)
	return summary, args.Get(1).(int64), args.Error(2)
}

func (m *MockAnalyticsCache) Set(ctx context.Context, formID string, generation int64, summary analytics.Analytics) error {
	args := m.Called(ctx, formID, generation, summary)
	return args.Error(0)
}

func (m *MockAnalyticsCache) Invalidate(ctx context.Context, formID string) error {
	args := m.Called(ctx, formID)
	return args.Error(0)
}

// memoryCache is a CacheService over a map, for tests that need real
// cache semantics rather than scripted calls.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if data, ok := c.entries[key]; ok {
		if err := json.Unmarshal(data, &n); err != nil {
			return 0, err
		}
	}
	n++
	c.entries[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// ===== FIXTURES =====

type testEnv struct {
	repo      *mockRepository
	cache     *MockAnalyticsCache
	publisher *events.MockEventPublisher
	services  *ServiceManager
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		repo:      newMockRepository(),
		cache:     new(MockAnalyticsCache),
		publisher: events.NewMockEventPublisher(logger),
	}
	env.services = NewServiceManager(env.repo, env.cache, env.publisher, validator.New(), logger, true)
	return env
}

func (e *testEnv) publishedTypes() []events.EventType {
	var types []events.EventType
	for _, event := range e.publisher.GetPublishedEvents() {
		types = append(types, event.Type)
	}
	return types
}

// sampleForm has one question of each type and is worth 4 points.
func sampleForm() *models.Form {
	form := models.NewForm()
	form.ID = primitive.NewObjectID()
	form.Title = "Biology quiz"
	form.Questions = []models.Question{
		{
			ID: "q1", Type: models.QuestionCategorize, QuestionText: "Sort the animals",
			Categories: []models.Category{{ID: "c1", Name: "Mammal"}, {ID: "c2", Name: "Bird"}},
			Options: []models.CategorizeItem{
				{ID: "i1", Text: "Dog", CategoryID: "c1"},
				{ID: "i2", Text: "Eagle", CategoryID: "c2"},
			},
		},
		{
			ID: "q2", Type: models.QuestionCloze, QuestionText: "Fill the blank", Sentence: "Cells have a nucleus",
			SelectedWords: []models.ClozeBlank{{Word: "nucleus", Position: 3, Key: "k1"}},
			AnswerOptions: []models.ClozeOption{
				{ID: "o1", Text: "nucleus", IsCorrect: true, WordKey: "k1"},
				{ID: "o2", Text: "wall"},
			},
		},
		{
			ID: "q3", Type: models.QuestionComprehension, QuestionText: "Read", Passage: "Plants make food.",
			Questions: []models.SubQuestion{
				{ID: "s1", Type: models.SubQuestionMCQ, Text: "How?", Points: 2, Options: []models.Option{
					{ID: "a", Text: "Photosynthesis", IsCorrect: true},
					{ID: "b", Text: "Digestion"},
				}},
			},
		},
	}
	form.Normalize()
	return form
}

func perfectAnswers() []models.QuestionResponse {
	return []models.QuestionResponse{
		{QuestionID: "q1", Type: models.QuestionCategorize, Answers: []models.Answer{
			{ItemID: "i1", SelectedCategoryID: "c1"},
			{ItemID: "i2", SelectedCategoryID: "c2"},
		}},
		{QuestionID: "q2", Type: models.QuestionCloze, Answers: []models.Answer{
			{BlankID: "k1", SelectedAnswer: "nucleus"},
		}},
		{QuestionID: "q3", Type: models.QuestionComprehension, Answers: []models.Answer{
			{SubQuestionID: "s1", SelectedOptions: []string{"a"}},
		}},
	}
}
