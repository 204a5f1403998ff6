package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shortdiaryAPI/internal/post"

	"github.com/google/uuid"
)

type fakeAnniversaryStore struct {
	posts  []*post.Post
	sent   []uuid.UUID
	getErr error
}

func (f *fakeAnniversaryStore) UnsentAnniversaryPosts(ctx context.Context, today time.Time) ([]*post.Post, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var unsent []*post.Post
	for _, p := range f.posts {
		if !p.Sent && p.Date.Equal(today.AddDate(-1, 0, 0)) {
			unsent = append(unsent, p)
		}
	}
	return unsent, nil
}

func (f *fakeAnniversaryStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	f.sent = append(f.sent, id)
	for _, p := range f.posts {
		if p.ID == id {
			p.Sent = true
		}
	}
	return nil
}

type recordingMailer struct {
	sent    []uuid.UUID
	sendErr error
}

func (m *recordingMailer) SendAnniversaryMail(ctx context.Context, p *post.Post) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, p.ID)
	return nil
}

func TestReminderSweep(t *testing.T) {
	today := day("2024-03-15")
	anniversary := today.AddDate(-1, 0, 0)

	oldPost := &post.Post{ID: uuid.New(), Author: "lutoma", Date: anniversary}
	recent := &post.Post{ID: uuid.New(), Author: "lutoma", Date: today.AddDate(0, 0, -2)}
	alreadySent := &post.Post{ID: uuid.New(), Author: "mike", Date: anniversary, Sent: true}

	store := &fakeAnniversaryStore{posts: []*post.Post{oldPost, recent, alreadySent}}
	mailer := &recordingMailer{}

	s := NewReminderService(store)
	s.SetMailer(mailer)
	s.Sweep(context.Background(), today)

	if len(mailer.sent) != 1 || mailer.sent[0] != oldPost.ID {
		t.Errorf("mailed posts = %v, want exactly %s", mailer.sent, oldPost.ID)
	}
	if len(store.sent) != 1 || store.sent[0] != oldPost.ID {
		t.Errorf("marked sent = %v, want exactly %s", store.sent, oldPost.ID)
	}

	// A second sweep finds nothing left to send.
	s.Sweep(context.Background(), today)
	if len(mailer.sent) != 1 {
		t.Errorf("second sweep sent %d additional mails, want 0", len(mailer.sent)-1)
	}
}

func TestReminderSweepMailerFailure(t *testing.T) {
	today := day("2024-03-15")
	p := &post.Post{ID: uuid.New(), Author: "lutoma", Date: today.AddDate(-1, 0, 0)}

	store := &fakeAnniversaryStore{posts: []*post.Post{p}}
	mailer := &recordingMailer{sendErr: errors.New("smtp down")}

	s := NewReminderService(store)
	s.SetMailer(mailer)
	s.Sweep(context.Background(), today)

	// Delivery failed, so the post stays unsent and is retried next sweep.
	if len(store.sent) != 0 {
		t.Errorf("marked sent = %v, want none after mailer failure", store.sent)
	}

	mailer.sendErr = nil
	s.Sweep(context.Background(), today)
	if len(store.sent) != 1 || store.sent[0] != p.ID {
		t.Errorf("marked sent after retry = %v, want exactly %s", store.sent, p.ID)
	}
}

func TestReminderSweepWithoutMailer(t *testing.T) {
	today := day("2024-03-15")
	p := &post.Post{ID: uuid.New(), Author: "lutoma", Date: today.AddDate(-1, 0, 0)}

	store := &fakeAnniversaryStore{posts: []*post.Post{p}}

	s := NewReminderService(store)
	s.Sweep(context.Background(), today)

	if len(store.sent) != 0 {
		t.Errorf("marked sent = %v, want none without a mailer", store.sent)
	}
}
