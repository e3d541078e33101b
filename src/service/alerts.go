package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/rabbitmq"
	"breaktime-service/src/repository"
	"breaktime-service/src/schemas"

	"github.com/google/uuid"
)

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	AlertTypeOverdue = "overdue"

	// warningThreshold and criticalThreshold are minutes past the
	// break type limit.
	warningThreshold  = 5.0
	criticalThreshold = 15.0

	recentAlertsCap = 100
)

// ClassifySeverity maps minutes over the limit to a severity. Slightly
// late breaks are suppressed entirely.
func ClassifySeverity(overMinutes float64) (string, bool) {
	switch {
	case overMinutes >= criticalThreshold:
		return SeverityCritical, true
	case overMinutes >= warningThreshold:
		return SeverityWarning, true
	default:
		return "", false
	}
}

// AlertEvaluator polls open sessions and raises overdue alerts. Alert
// state is recomputed from scratch every poll; a session that stays
// overdue raises a fresh alert each cycle.
type AlertEvaluator struct {
	store     *repository.Store
	publisher rabbitmq.Publisher
	exchange  string
	interval  time.Duration
	location  *time.Location
	now       func() time.Time

	mu     sync.Mutex
	recent []models.ComplianceAlert
}

// NewAlertEvaluator creates a new evaluator. publisher may be nil when
// no broker is configured; alerts are still audited to the store.
func NewAlertEvaluator(store *repository.Store, publisher rabbitmq.Publisher, exchange string, interval time.Duration, location *time.Location) *AlertEvaluator {
	return &AlertEvaluator{
		store:     store,
		publisher: publisher,
		exchange:  exchange,
		interval:  interval,
		location:  location,
		now:       time.Now,
	}
}

// BuildOverdueAlerts turns the open sessions into alert instances at
// now. Pure; evaluation order follows session start order.
func BuildOverdueAlerts(sessions []models.ActiveSessionDetail, now time.Time) []models.ComplianceAlert {
	var alerts []models.ComplianceAlert
	for i := range sessions {
		s := &sessions[i]
		if s.TimeLimitMinutes == nil {
			continue
		}
		elapsed := s.ElapsedMinutes(now)
		over := models.Round1(elapsed - float64(*s.TimeLimitMinutes))
		severity, ok := ClassifySeverity(over)
		if !ok {
			continue
		}

		alerts = append(alerts, models.ComplianceAlert{
			ID:               uuid.New().String(),
			UserID:           s.UserID,
			FullName:         s.FullName,
			BreakTypeID:      s.BreakTypeID,
			BreakType:        s.BreakTypeName,
			AlertType:        AlertTypeOverdue,
			Severity:         severity,
			AlertTimestamp:   now,
			DurationAtAlert:  elapsed,
			OverLimitMinutes: over,
			Message: fmt.Sprintf("%s has been on %s for %.1f minutes, %.1f over the %d minute limit",
				s.FullName, s.BreakTypeName, elapsed, over, *s.TimeLimitMinutes),
		})
	}
	return alerts
}

// CurrentOverdue computes the alerts the open sessions would raise
// right now, without auditing or publishing anything.
func (a *AlertEvaluator) CurrentOverdue(ctx context.Context) ([]models.ComplianceAlert, error) {
	sessions, err := a.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}
	return BuildOverdueAlerts(sessions, a.now()), nil
}

// BuildAlertSummary combines the live overdue picture with the day's
// missing clock-backs. Pure.
func BuildAlertSummary(date string, generatedAt time.Time, overdue []models.ComplianceAlert, missing []schemas.MissingClockBack) schemas.AlertSummaryResponse {
	summary := schemas.AlertSummaryResponse{
		Date:              date,
		GeneratedAt:       generatedAt.Format(time.RFC3339),
		OverdueCount:      len(overdue),
		MissingClockBacks: missing,
	}
	for i := range overdue {
		switch overdue[i].Severity {
		case SeverityWarning:
			summary.WarningCount++
		case SeverityCritical:
			summary.CriticalCount++
		}
	}
	for i := range missing {
		summary.TotalMissing += missing[i].Missing
	}
	if summary.MissingClockBacks == nil {
		summary.MissingClockBacks = []schemas.MissingClockBack{}
	}
	return summary
}

// EvaluateOnce runs one poll: audit every raised alert and publish it.
func (a *AlertEvaluator) EvaluateOnce(ctx context.Context) ([]models.ComplianceAlert, error) {
	sessions, err := a.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}

	alerts := BuildOverdueAlerts(sessions, a.now())
	for i := range alerts {
		alert := &alerts[i]
		if err := a.store.InsertAlert(ctx, alert); err != nil {
			return alerts, err
		}
		a.publish(alert)
		a.remember(*alert)

		slog.Warn("Compliance alert raised",
			"user_id", alert.UserID,
			"break_type", alert.BreakType,
			"severity", alert.Severity,
			"over_limit_minutes", alert.OverLimitMinutes)
	}

	return alerts, nil
}

func (a *AlertEvaluator) publish(alert *models.ComplianceAlert) {
	if a.publisher == nil {
		return
	}
	body, err := json.Marshal(alert)
	if err != nil {
		slog.Error("Failed to marshal alert", "error", err)
		return
	}
	if err := a.publisher.Publish(a.exchange, body); err != nil {
		slog.Error("Failed to publish alert", "error", err, "exchange", a.exchange)
	}
}

func (a *AlertEvaluator) remember(alert models.ComplianceAlert) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, alert)
	if len(a.recent) > recentAlertsCap {
		a.recent = a.recent[len(a.recent)-recentAlertsCap:]
	}
}

// Recent returns the most recently raised alerts, newest first.
func (a *AlertEvaluator) Recent() []models.ComplianceAlert {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.ComplianceAlert, len(a.recent))
	for i := range a.recent {
		out[i] = a.recent[len(a.recent)-1-i]
	}
	return out
}

// Run polls on the configured interval until the context is cancelled.
func (a *AlertEvaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	slog.Info("Alert evaluator started", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Alert evaluator stopped")
			return
		case <-ticker.C:
			if _, err := a.EvaluateOnce(ctx); err != nil {
				slog.Error("Alert evaluation failed", "error", err)
			}
		}
	}
}
