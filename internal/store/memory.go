package store

import (
	"context"
	"sort"
	"sync"

	"github.com/aliya-health/aliyabot/internal/models"
)

// InMemoryStore is a map-backed Store used in tests and for local
// experimentation. Nothing survives a restart.
type InMemoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	assessments   []models.HealthAssessment
	healthData    []models.HealthData
	diagnoses     []models.SymptomDiagnosis
	fitnessPlans  map[string][]models.FitnessPlan
	mealPlans     map[string][]models.MealPlan
	cycles        map[string]models.MenstrualCycle
	medications   map[string][]models.MedicationReminder
	subscriptions map[string]models.Subscription
	receipts      []models.Receipt
	responses     []models.Response
	nextID        int64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:         make(map[string]models.User),
		fitnessPlans:  make(map[string][]models.FitnessPlan),
		mealPlans:     make(map[string][]models.MealPlan),
		cycles:        make(map[string]models.MenstrualCycle),
		medications:   make(map[string][]models.MedicationReminder),
		subscriptions: make(map[string]models.Subscription),
	}
}

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) allocID() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemoryStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *InMemoryStore) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = *u
	return nil
}

func (s *InMemoryStore) AddHealthAssessment(_ context.Context, a models.HealthAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.allocID()
	s.assessments = append(s.assessments, a)
	return nil
}

func (s *InMemoryStore) AddHealthData(_ context.Context, d models.HealthData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.allocID()
	s.healthData = append(s.healthData, d)
	return nil
}

func (s *InMemoryStore) AddSymptomDiagnosis(_ context.Context, d models.SymptomDiagnosis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.allocID()
	s.diagnoses = append(s.diagnoses, d)
	return nil
}

func (s *InMemoryStore) GetFitnessPlan(_ context.Context, userID string) (*models.FitnessPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plans := s.fitnessPlans[userID]
	if len(plans) == 0 {
		return nil, nil
	}
	latest := plans[0]
	for _, p := range plans[1:] {
		if p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return &latest, nil
}

func (s *InMemoryStore) SaveFitnessPlan(_ context.Context, p *models.FitnessPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocID()
	s.fitnessPlans[p.UserID] = append(s.fitnessPlans[p.UserID], *p)
	return nil
}

func (s *InMemoryStore) UpdateFitnessPlanBody(_ context.Context, userID, plan string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plans := s.fitnessPlans[userID]
	if len(plans) == 0 {
		return nil
	}
	latest := 0
	for i := 1; i < len(plans); i++ {
		if plans[i].CreatedAt.After(plans[latest].CreatedAt) {
			latest = i
		}
	}
	plans[latest].Plan = plan
	return nil
}

func (s *InMemoryStore) DeleteFitnessPlan(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fitnessPlans, userID)
	return nil
}

func (s *InMemoryStore) ListFitnessPlans(_ context.Context) ([]models.FitnessPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.FitnessPlan
	for _, plans := range s.fitnessPlans {
		out = append(out, plans...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) GetMealPlan(_ context.Context, userID string) (*models.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plans := s.mealPlans[userID]
	if len(plans) == 0 {
		return nil, nil
	}
	latest := plans[0]
	for _, p := range plans[1:] {
		if p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return &latest, nil
}

func (s *InMemoryStore) SaveMealPlan(_ context.Context, p *models.MealPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocID()
	s.mealPlans[p.UserID] = append(s.mealPlans[p.UserID], *p)
	return nil
}

func (s *InMemoryStore) UpdateMealPlanBody(_ context.Context, userID, plan string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plans := s.mealPlans[userID]
	if len(plans) == 0 {
		return nil
	}
	latest := 0
	for i := 1; i < len(plans); i++ {
		if plans[i].CreatedAt.After(plans[latest].CreatedAt) {
			latest = i
		}
	}
	plans[latest].Plan = plan
	return nil
}

func (s *InMemoryStore) DeleteMealPlan(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mealPlans, userID)
	return nil
}

func (s *InMemoryStore) ListMealPlans(_ context.Context) ([]models.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MealPlan
	for _, plans := range s.mealPlans {
		out = append(out, plans...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) GetMenstrualCycle(_ context.Context, userID string) (*models.MenstrualCycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cycles[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *InMemoryStore) SaveMenstrualCycle(_ context.Context, c *models.MenstrualCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cycles[c.UserID]; ok {
		c.ID = existing.ID
	} else {
		c.ID = s.allocID()
	}
	s.cycles[c.UserID] = *c
	return nil
}

func (s *InMemoryStore) AddMedicationReminder(_ context.Context, r models.MedicationReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.allocID()
	s.medications[r.UserID] = append(s.medications[r.UserID], r)
	return nil
}

func (s *InMemoryStore) ListMedicationReminders(_ context.Context, userID string) ([]models.MedicationReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MedicationReminder(nil), s.medications[userID]...), nil
}

func (s *InMemoryStore) ListAllMedicationReminders(_ context.Context) ([]models.MedicationReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MedicationReminder
	for _, rs := range s.medications {
		out = append(out, rs...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) DeleteMedicationReminders(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.medications, userID)
	return nil
}

func (s *InMemoryStore) GetSubscription(_ context.Context, userID string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *InMemoryStore) SaveSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.UserID] = *sub
	return nil
}

func (s *InMemoryStore) ListSubscriptions(_ context.Context) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Subscription
	for _, sub := range s.subscriptions {
		if sub.DailyTips {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *InMemoryStore) AddReceipt(_ context.Context, r models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

func (s *InMemoryStore) AddResponse(_ context.Context, r models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, r)
	return nil
}

// Receipts returns a copy of the recorded receipts (for tests).
func (s *InMemoryStore) Receipts() []models.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Receipt(nil), s.receipts...)
}

// Responses returns a copy of the recorded responses (for tests).
func (s *InMemoryStore) Responses() []models.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Response(nil), s.responses...)
}

// Assessments returns a copy of the recorded assessments (for tests).
func (s *InMemoryStore) Assessments() []models.HealthAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HealthAssessment(nil), s.assessments...)
}

// HealthRecords returns a copy of the recorded raw answers (for tests).
func (s *InMemoryStore) HealthRecords() []models.HealthData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.HealthData(nil), s.healthData...)
}

// Diagnoses returns a copy of the recorded symptom diagnoses (for tests).
func (s *InMemoryStore) Diagnoses() []models.SymptomDiagnosis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SymptomDiagnosis(nil), s.diagnoses...)
}
