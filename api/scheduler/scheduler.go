// Package scheduler runs the periodic background jobs: sweeping pending
// workflow requests left behind by adjourned hearings, and mailing hearing
// reminders. Jobs coordinate across instances with a mongo-backed lock.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// sweepGrace mirrors the resolve grace window: requests still pending this
// long after adjournment are unresolvable.
const sweepGrace = 5 * time.Minute

// Scheduler handles periodic background jobs for hearing sessions
type Scheduler struct {
	cron       *cron.Cron
	SDB        databases.HearingSessionDatabase
	WDB        databases.WorkflowRequestDatabase
	TDB        databases.TranscriptDatabase
	PDB        databases.ParticipantDatabase
	UDB        databases.UserDatabase
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	sDB databases.HearingSessionDatabase,
	wDB databases.WorkflowRequestDatabase,
	tDB databases.TranscriptDatabase,
	pDB databases.ParticipantDatabase,
	uDB databases.UserDatabase,
	lockDB databases.SchedulerLockDatabase,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		SDB:        sDB,
		WDB:        wDB,
		TDB:        tDB,
		PDB:        pDB,
		UDB:        uDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep ended hearings for leftover pending requests every minute
	_, err := s.cron.AddFunc("* * * * *", s.sweepEndedSessions)
	if err != nil {
		zap.S().Errorw("failed to register adjournment sweep job", "error", err)
	}

	// Send hearing reminders daily at 8 AM UTC
	_, err = s.cron.AddFunc("0 8 * * *", s.sendHearingReminders)
	if err != nil {
		zap.S().Errorw("failed to register hearing reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Hearing scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Hearing scheduler stopped")
}

// sweepEndedSessions marks still-pending workflow requests unresolvable once
// an adjourned or completed hearing is past the resolve grace window, and
// notes the sweep on the transcript so the record explains the dangling
// requests.
func (s *Scheduler) sweepEndedSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "adjournment_sweep_job", s.instanceID, 5*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for adjournment sweep job", "error", err)
		return
	}
	if !acquired {
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "adjournment_sweep_job", s.instanceID)

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-sweepGrace))
	filter := bson.M{
		"hearingSession.status":       bson.M{"$in": []string{models.SessionAdjourned, models.SessionCompleted}},
		"hearingSession.endedAt":      bson.M{"$lt": cutoff},
		"hearingSession.pendingSwept": bson.M{"$ne": true},
	}

	sessions, err := s.SDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find ended sessions to sweep", "error", err)
		return
	}

	for _, session := range sessions {
		s.sweepSession(ctx, session)
	}
}

func (s *Scheduler) sweepSession(ctx context.Context, session models.HearingSession) {
	sessionID := session.ID.Hex()

	res, err := s.WDB.UpdateMany(ctx,
		bson.M{
			"workflowRequest.sessionID": sessionID,
			"workflowRequest.status":    models.RequestPending,
		},
		bson.M{"$set": bson.M{
			"workflowRequest.status":     models.RequestUnresolvable,
			"workflowRequest.resolvedAt": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		zap.S().Errorw("failed to sweep pending requests", "sessionID", sessionID, "error", err)
		return
	}

	if res.ModifiedCount > 0 {
		message := fmt.Sprintf("%d pending request(s) could not be resolved before adjournment and were closed as unresolvable.", res.ModifiedCount)
		if err := s.appendSystemEntry(ctx, sessionID, message); err != nil {
			zap.S().Errorw("failed to record sweep on transcript", "sessionID", sessionID, "error", err)
			return
		}
	}

	if _, err := s.SDB.UpdateOne(ctx,
		bson.M{"_id": session.ID},
		bson.M{"$set": bson.M{"hearingSession.pendingSwept": true}},
	); err != nil {
		zap.S().Errorw("failed to flag session as swept", "sessionID", sessionID, "error", err)
		return
	}

	zap.S().Infow("Swept ended session",
		"sessionID", sessionID,
		"requestsClosed", res.ModifiedCount,
	)
}

// appendSystemEntry writes a system-authored transcript entry through the same
// sequence counter the request path uses, so sweep notes order correctly
// against live appends.
func (s *Scheduler) appendSystemEntry(ctx context.Context, sessionID, message string) error {
	seq, err := s.TDB.NextSeq(ctx, sessionID)
	if err != nil {
		return err
	}
	entry := models.TranscriptEntry{
		ID:        primitive.NewObjectID(),
		SessionID: sessionID,
		Seq:       seq,
		Message:   message,
		Kind:      models.EntryAction,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.TDB.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("transcript sequencing fault at seq %d: %w", seq, err)
	}
	return nil
}

// sendHearingReminders mails every registered participant of hearings that
// start within the next 24 hours
func (s *Scheduler) sendHearingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "hearing_reminder_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for hearing reminder job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Hearing reminder job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "hearing_reminder_job", s.instanceID)

	now := time.Now()
	filter := bson.M{
		"hearingSession.status": models.SessionScheduled,
		"hearingSession.scheduledStart": bson.M{
			"$gt": primitive.NewDateTimeFromTime(now),
			"$lt": primitive.NewDateTimeFromTime(now.Add(24 * time.Hour)),
		},
	}

	sessions, err := s.SDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find upcoming hearings", "error", err)
		return
	}

	remindersSent := 0
	for _, session := range sessions {
		remindersSent += s.remindParticipants(ctx, session)
	}

	zap.S().Infow("Hearing reminder job complete",
		"hearings", len(sessions),
		"remindersSent", remindersSent,
	)
}

func (s *Scheduler) remindParticipants(ctx context.Context, session models.HearingSession) int {
	sessionID := session.ID.Hex()

	participants, err := s.PDB.Find(ctx, bson.M{
		"participant.sessionID": sessionID,
		"participant.active":    true,
	})
	if err != nil {
		zap.S().Errorw("failed to find participants for reminder", "sessionID", sessionID, "error", err)
		return 0
	}

	sent := 0
	for _, participant := range participants {
		email := s.getUserEmail(ctx, participant.Details.UserID)
		if email == "" {
			continue
		}

		subject := fmt.Sprintf("Hearing Reminder - %s", session.Details.Title)
		when := session.Details.ScheduledStart.Time().Format("January 2, 2006 at 15:04 MST")
		plainText := fmt.Sprintf("Dear %s, this is a reminder that the hearing %q begins on %s. You are registered as %s.",
			participant.Details.Name, session.Details.Title, when, participant.Details.Role)
		htmlContent := fmt.Sprintf("<p>Dear %s,</p><p>This is a reminder that the hearing <strong>%s</strong> begins on %s.</p><p>You are registered as <strong>%s</strong>.</p>",
			participant.Details.Name, session.Details.Title, when, participant.Details.Role)

		if err := s.sendEmail(email, participant.Details.Name, subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send hearing reminder", "error", err, "to", email)
			continue
		}
		sent++
	}
	return sent
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("Court Hearing Service", "no-reply@court-hearing-api.com")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func (s *Scheduler) getUserEmail(ctx context.Context, userID string) string {
	users, err := s.UDB.Find(ctx, bson.M{"_id": userID})
	if err != nil || len(users) == 0 {
		return ""
	}
	return users[0].Details.Email
}
