package store

import (
	"context"

	"github.com/aliya-health/aliyabot/internal/models"
)

// Store is the persistence interface the flow engine and recovery depend
// on. Get methods return (nil, nil) when no record exists.
type Store interface {
	// Users.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error

	// Health assessments.
	AddHealthAssessment(ctx context.Context, a models.HealthAssessment) error
	AddHealthData(ctx context.Context, d models.HealthData) error

	// Symptom consultations.
	AddSymptomDiagnosis(ctx context.Context, d models.SymptomDiagnosis) error

	// Fitness plans. GetFitnessPlan returns the most recent plan.
	// UpdateFitnessPlanBody rewrites the most recent plan's text in place.
	GetFitnessPlan(ctx context.Context, userID string) (*models.FitnessPlan, error)
	SaveFitnessPlan(ctx context.Context, p *models.FitnessPlan) error
	UpdateFitnessPlanBody(ctx context.Context, userID, plan string) error
	DeleteFitnessPlan(ctx context.Context, userID string) error
	ListFitnessPlans(ctx context.Context) ([]models.FitnessPlan, error)

	// Meal plans. GetMealPlan returns the most recent plan.
	GetMealPlan(ctx context.Context, userID string) (*models.MealPlan, error)
	SaveMealPlan(ctx context.Context, p *models.MealPlan) error
	UpdateMealPlanBody(ctx context.Context, userID, plan string) error
	DeleteMealPlan(ctx context.Context, userID string) error
	ListMealPlans(ctx context.Context) ([]models.MealPlan, error)

	// Menstrual cycle tracking. One row per user, upserted.
	GetMenstrualCycle(ctx context.Context, userID string) (*models.MenstrualCycle, error)
	SaveMenstrualCycle(ctx context.Context, c *models.MenstrualCycle) error

	// Medication reminders. A user can have several.
	AddMedicationReminder(ctx context.Context, r models.MedicationReminder) error
	ListMedicationReminders(ctx context.Context, userID string) ([]models.MedicationReminder, error)
	ListAllMedicationReminders(ctx context.Context) ([]models.MedicationReminder, error)
	DeleteMedicationReminders(ctx context.Context, userID string) error

	// Daily-tips subscriptions. Save upserts; unsubscribing writes the
	// flag false rather than removing the row.
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	SaveSubscription(ctx context.Context, s *models.Subscription) error
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)

	// Message audit trail.
	AddReceipt(ctx context.Context, r models.Receipt) error
	AddResponse(ctx context.Context, r models.Response) error

	Close() error
}
