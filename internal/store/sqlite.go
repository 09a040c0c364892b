// SQLite-backed Store. This is the default backend; the DSN is a file
// path and the schema is applied on open.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/aliya-health/aliyabot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions for created database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at the
// DSN path and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("SQLite ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite store ready", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, name, age, sex, height, weight, location, menstrual, created_at FROM users WHERE user_id = ?`, userID)
	var u models.User
	err := row.Scan(&u.UserID, &u.Name, &u.Age, &u.Sex, &u.Height, &u.Weight, &u.Location, &u.Menstrual, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %s: %w", userID, err)
	}
	return &u, nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (user_id, name, age, sex, height, weight, location, menstrual, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET name=excluded.name, age=excluded.age, sex=excluded.sex,
			height=excluded.height, weight=excluded.weight, location=excluded.location, menstrual=excluded.menstrual`,
		u.UserID, u.Name, u.Age, u.Sex, u.Height, u.Weight, u.Location, u.Menstrual, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", u.UserID, err)
	}
	slog.Debug("SQLiteStore SaveUser succeeded", "userID", u.UserID)
	return nil
}

func (s *SQLiteStore) AddHealthAssessment(ctx context.Context, a models.HealthAssessment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO health_assessments (user_id, score, analysis, created_at) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Score, a.Analysis, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert health assessment for %s: %w", a.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) AddHealthData(ctx context.Context, d models.HealthData) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO health_data (user_id, overall_health, fruit_veggie, sugary_drinks, exercise_days,
		sitting_breaks, sleep_hours, wake_refreshed, stress_anxiety, relaxation_techniques, chronic_conditions, family_history,
		smoking_vaping, alcohol_drinks, headaches_body_aches, weight_changes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.UserID, d.OverallHealth, d.FruitVeggie, d.SugaryDrinks, d.ExerciseDays,
		d.SittingBreaks, d.SleepHours, d.WakeRefreshed, d.StressAnxiety, d.RelaxationTechniques, d.ChronicConditions, d.FamilyHistory,
		d.SmokingVaping, d.AlcoholDrinks, d.HeadachesBodyAches, d.WeightChanges, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert health data for %s: %w", d.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) AddSymptomDiagnosis(ctx context.Context, d models.SymptomDiagnosis) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO symptom_diagnoses (user_id, symptoms, severity, duration_days, analysis, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.UserID, d.Symptoms, d.Severity, d.DurationDays, d.Analysis, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert symptom diagnosis for %s: %w", d.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) GetFitnessPlan(ctx context.Context, userID string) (*models.FitnessPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, goal, type, duration_days, daily_time, reminder_time, plan, created_at
		FROM fitness_plans WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID)
	var p models.FitnessPlan
	err := row.Scan(&p.ID, &p.UserID, &p.Goal, &p.Type, &p.DurationDays, &p.DailyTime, &p.ReminderTime, &p.Plan, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fitness plan for %s: %w", userID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) SaveFitnessPlan(ctx context.Context, p *models.FitnessPlan) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO fitness_plans (user_id, goal, type, duration_days, daily_time, reminder_time, plan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Goal, p.Type, p.DurationDays, p.DailyTime, p.ReminderTime, p.Plan, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fitness plan for %s: %w", p.UserID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

func (s *SQLiteStore) UpdateFitnessPlanBody(ctx context.Context, userID, plan string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE fitness_plans SET plan = ?
		WHERE id = (SELECT id FROM fitness_plans WHERE user_id = ? ORDER BY created_at DESC LIMIT 1)`, plan, userID)
	if err != nil {
		return fmt.Errorf("failed to update fitness plan for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteFitnessPlan(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fitness_plans WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete fitness plans for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) ListFitnessPlans(ctx context.Context) ([]models.FitnessPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, goal, type, duration_days, daily_time, reminder_time, plan, created_at FROM fitness_plans`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fitness plans: %w", err)
	}
	defer rows.Close()

	var plans []models.FitnessPlan
	for rows.Next() {
		var p models.FitnessPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Goal, &p.Type, &p.DurationDays, &p.DailyTime, &p.ReminderTime, &p.Plan, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fitness plan row: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLiteStore) GetMealPlan(ctx context.Context, userID string) (*models.MealPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, preference, goal, duration_days, reminder_time, plan, created_at
		FROM meal_plans WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID)
	var p models.MealPlan
	err := row.Scan(&p.ID, &p.UserID, &p.Preference, &p.Goal, &p.DurationDays, &p.ReminderTime, &p.Plan, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query meal plan for %s: %w", userID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) SaveMealPlan(ctx context.Context, p *models.MealPlan) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO meal_plans (user_id, preference, goal, duration_days, reminder_time, plan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Preference, p.Goal, p.DurationDays, p.ReminderTime, p.Plan, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert meal plan for %s: %w", p.UserID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

func (s *SQLiteStore) UpdateMealPlanBody(ctx context.Context, userID, plan string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE meal_plans SET plan = ?
		WHERE id = (SELECT id FROM meal_plans WHERE user_id = ? ORDER BY created_at DESC LIMIT 1)`, plan, userID)
	if err != nil {
		return fmt.Errorf("failed to update meal plan for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteMealPlan(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete meal plans for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) ListMealPlans(ctx context.Context) ([]models.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, preference, goal, duration_days, reminder_time, plan, created_at FROM meal_plans`)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal plans: %w", err)
	}
	defer rows.Close()

	var plans []models.MealPlan
	for rows.Next() {
		var p models.MealPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Preference, &p.Goal, &p.DurationDays, &p.ReminderTime, &p.Plan, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan row: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLiteStore) GetMenstrualCycle(ctx context.Context, userID string) (*models.MenstrualCycle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, last_period, cycle_length, next_period, analysis, created_at
		FROM menstrual_cycles WHERE user_id = ?`, userID)
	var c models.MenstrualCycle
	err := row.Scan(&c.ID, &c.UserID, &c.LastPeriod, &c.CycleLength, &c.NextPeriod, &c.Analysis, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query menstrual cycle for %s: %w", userID, err)
	}
	return &c, nil
}

func (s *SQLiteStore) SaveMenstrualCycle(ctx context.Context, c *models.MenstrualCycle) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO menstrual_cycles (user_id, last_period, cycle_length, next_period, analysis, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET last_period=excluded.last_period, cycle_length=excluded.cycle_length,
			next_period=excluded.next_period, analysis=excluded.analysis`,
		c.UserID, c.LastPeriod, c.CycleLength, c.NextPeriod, c.Analysis, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save menstrual cycle for %s: %w", c.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) AddMedicationReminder(ctx context.Context, r models.MedicationReminder) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO medication_reminders (user_id, medication_name, reminder_time, created_at)
		VALUES (?, ?, ?, ?)`,
		r.UserID, r.MedicationName, r.ReminderTime, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert medication reminder for %s: %w", r.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) ListMedicationReminders(ctx context.Context, userID string) ([]models.MedicationReminder, error) {
	return s.queryMedicationReminders(ctx, `SELECT id, user_id, medication_name, reminder_time, created_at FROM medication_reminders WHERE user_id = ?`, userID)
}

func (s *SQLiteStore) ListAllMedicationReminders(ctx context.Context) ([]models.MedicationReminder, error) {
	return s.queryMedicationReminders(ctx, `SELECT id, user_id, medication_name, reminder_time, created_at FROM medication_reminders`)
}

func (s *SQLiteStore) queryMedicationReminders(ctx context.Context, query string, args ...any) ([]models.MedicationReminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query medication reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.MedicationReminder
	for rows.Next() {
		var r models.MedicationReminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.MedicationName, &r.ReminderTime, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan medication reminder row: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *SQLiteStore) DeleteMedicationReminders(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM medication_reminders WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete medication reminders for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, daily_tips, created_at FROM subscriptions WHERE user_id = ?`, userID)
	var sub models.Subscription
	err := row.Scan(&sub.UserID, &sub.DailyTips, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription for %s: %w", userID, err)
	}
	return &sub, nil
}

func (s *SQLiteStore) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO subscriptions (user_id, daily_tips, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET daily_tips=excluded.daily_tips`,
		sub.UserID, sub.DailyTips, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save subscription for %s: %w", sub.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, daily_tips, created_at FROM subscriptions WHERE daily_tips = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.UserID, &sub.DailyTips, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) AddReceipt(ctx context.Context, r models.Receipt) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO receipts (recipient, status, time) VALUES (?, ?, ?)`, r.To, r.Status, r.Time)
	if err != nil {
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

func (s *SQLiteStore) AddResponse(ctx context.Context, r models.Response) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO responses (sender, body, time) VALUES (?, ?, ?)`, r.From, r.Body, r.Time)
	if err != nil {
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	return nil
}
