package services

import (
	"context"
	"log"
	"time"

	"shortdiaryAPI/internal/post"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Mailer delivers the "one year ago" reminder for a post. Actual mail
// transport lives outside this service.
type Mailer interface {
	SendAnniversaryMail(ctx context.Context, p *post.Post) error
}

// AnniversaryStore is the slice of the post store the reminder sweep needs.
type AnniversaryStore interface {
	UnsentAnniversaryPosts(ctx context.Context, today time.Time) ([]*post.Post, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// ReminderService mails users what they wrote exactly one year ago. A daily
// cron job sweeps for unsent anniversary posts; each post is marked sent only
// after the mailer accepted it, so a failed delivery is retried on the next
// sweep.
type ReminderService struct {
	store  AnniversaryStore
	mailer Mailer
	cron   *cron.Cron
}

func NewReminderService(store AnniversaryStore) *ReminderService {
	return &ReminderService{
		store: store,
		cron:  cron.New(cron.WithLocation(time.UTC)),
	}
}

// SetMailer injects the mail provider from main.go. Without one the sweep
// only logs what it would send.
func (s *ReminderService) SetMailer(mailer Mailer) {
	s.mailer = mailer
}

func (s *ReminderService) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx, time.Now().UTC())
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *ReminderService) Stop() {
	s.cron.Stop()
}

// Sweep sends reminders for all posts dated one year before today that have
// not been mailed yet.
func (s *ReminderService) Sweep(ctx context.Context, today time.Time) {
	posts, err := s.store.UnsentAnniversaryPosts(ctx, today)
	if err != nil {
		log.Printf("Anniversary sweep failed: %v", err)
		return
	}

	for _, p := range posts {
		if s.mailer == nil {
			log.Printf("No mailer configured, skipping anniversary mail for post %s", p.ID)
			continue
		}

		if err := s.mailer.SendAnniversaryMail(ctx, p); err != nil {
			log.Printf("Failed to send anniversary mail for post %s: %v", p.ID, err)
			continue
		}

		if err := s.store.MarkSent(ctx, p.ID); err != nil {
			log.Printf("Failed to mark post %s as sent: %v", p.ID, err)
		}
	}
}
