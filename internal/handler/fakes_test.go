package handler_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookish/account-service/internal/email"
	"github.com/bookish/account-service/internal/model"
	"github.com/bookish/account-service/internal/queue"
	"github.com/bookish/account-service/internal/repository"
)

// memUsers is an in-memory UserStore double.
type memUsers struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{docs: map[primitive.ObjectID]*model.User{}}
}

func (m *memUsers) Create(_ context.Context, u *model.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, d := range m.docs {
		if d.Email == email {
			return primitive.NilObjectID, repository.ErrEmailExists
		}
	}
	cp := *u
	cp.ID = primitive.NewObjectID()
	cp.Email = email
	cp.Verified = false
	if cp.Tokens == nil {
		cp.Tokens = []string{}
	}
	if cp.Favorites == nil {
		cp.Favorites = []primitive.ObjectID{}
	}
	m.docs[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, addr string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr = strings.ToLower(strings.TrimSpace(addr))
	for _, d := range m.docs {
		if d.Email == addr {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, username, addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr = strings.ToLower(strings.TrimSpace(addr))
	for other, d := range m.docs {
		if other != id && d.Email == addr {
			return repository.ErrEmailExists
		}
	}
	d, ok := m.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Username = username
	d.Email = addr
	return nil
}

func (m *memUsers) SetActivationToken(_ context.Context, id primitive.ObjectID, token string) error {
	return m.mutate(id, func(d *model.User) { d.ActivationToken = token })
}

func (m *memUsers) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	return m.mutate(id, func(d *model.User) {
		d.Verified = true
		d.ActivationToken = ""
	})
}

func (m *memUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return m.mutate(id, func(d *model.User) { d.Password = hash })
}

func (m *memUsers) PushToken(_ context.Context, id primitive.ObjectID, token string) error {
	return m.mutate(id, func(d *model.User) { d.Tokens = append(d.Tokens, token) })
}

func (m *memUsers) PullToken(_ context.Context, id primitive.ObjectID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil // removing from an absent account is a no-op, like $pull
	}
	kept := d.Tokens[:0]
	for _, t := range d.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	d.Tokens = kept
	return nil
}

func (m *memUsers) ClearTokens(_ context.Context, id primitive.ObjectID) error {
	return m.mutate(id, func(d *model.User) { d.Tokens = []string{} })
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memUsers) mutate(id primitive.ObjectID, fn func(*model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(d)
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// memAuthors is an in-memory AuthorStore double.
type memAuthors struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*model.Author // keyed by owner
}

func newMemAuthors() *memAuthors {
	return &memAuthors{docs: map[primitive.ObjectID]*model.Author{}}
}

func (m *memAuthors) Create(_ context.Context, a *model.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[a.Owner]; ok {
		return errors.New("duplicate owner")
	}
	cp := *a
	cp.ID = primitive.NewObjectID()
	if cp.Category == "" {
		cp.Category = model.CategoryOthers
	}
	m.docs[cp.Owner] = &cp
	return nil
}

func (m *memAuthors) GetByOwner(_ context.Context, owner primitive.ObjectID) (*model.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[owner]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memAuthors) Update(_ context.Context, owner primitive.ObjectID, bio string, category model.AuthorCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[owner]
	if !ok {
		return repository.ErrNotFound
	}
	d.Bio = bio
	d.Category = category
	return nil
}

func (m *memAuthors) DeleteByOwner(_ context.Context, owner primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, owner)
	return nil
}

// memTokens is an in-memory TokenStore double.
type memTokens struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*model.OneTimeToken
}

func newMemTokens() *memTokens {
	return &memTokens{docs: map[primitive.ObjectID]*model.OneTimeToken{}}
}

func (m *memTokens) Replace(_ context.Context, owner primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[owner] = &model.OneTimeToken{ID: primitive.NewObjectID(), Owner: owner, Token: hash}
	return nil
}

func (m *memTokens) GetByOwner(_ context.Context, owner primitive.ObjectID) (*model.OneTimeToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[owner]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memTokens) DeleteByOwner(_ context.Context, owner primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, owner)
	return nil
}

func (m *memTokens) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// memMailer records outbound mail and can be told to fail.
type memMailer struct {
	mu   sync.Mutex
	fail bool
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *memMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: invalid mailbox")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *memMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

// memEvents records published account events.
type memEvents struct {
	mu     sync.Mutex
	events []queue.AccountEvent
}

func (m *memEvents) PublishAccountEvent(_ context.Context, ev queue.AccountEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

var _ repository.UserStore = (*memUsers)(nil)
var _ repository.AuthorStore = (*memAuthors)(nil)
var _ repository.TokenStore = (*memTokens)(nil)
var _ email.Sender = (*memMailer)(nil)
var _ queue.Publisher = (*memEvents)(nil)
