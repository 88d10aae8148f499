package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
)

// ---- fakes ----

// memUserRepo is an in-memory user store. Hooks, when set, replace the default behaviour.
type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int

	createErr error
	saveErr   error
	saves     int
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func (r *memUserRepo) FindByEmailOrPhoneOrCIN(_ context.Context, email, phone, cin string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.PhoneNumber == phone || u.CINNumber == cin {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	c := cloneUser(u)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.saves++
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Agents = append([]domain.Agent(nil), u.Agents...)
	if u.VerifiedAt != nil {
		t := *u.VerifiedAt
		c.VerifiedAt = &t
	}
	return &c
}

type fakeRoleRepo struct {
	findByName func(ctx context.Context, name string) (*domain.Role, error)
}

func (r *fakeRoleRepo) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	if r.findByName != nil {
		return r.findByName(ctx, name)
	}
	return &domain.Role{ID: "role-user", Name: name}, nil
}

// plainHasher "hashes" by prefixing, so tests can read stored values.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(p, h string) (bool, error) { return h == "hashed:"+p, nil }

type fixedOTP struct {
	code string
	err  error
}

func (g *fixedOTP) Generate() (string, error) { return g.code, g.err }

type sentMail struct {
	kind   string
	to     string
	name   string
	value  string // token or code
	device string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) record(m sentMail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, m)
	return nil
}

func (n *recordingNotifier) SendVerificationEmail(_ context.Context, to, name, token string) error {
	return n.record(sentMail{kind: "verify", to: to, name: name, value: token})
}

func (n *recordingNotifier) SendOTPEmail(_ context.Context, to, name, code, device string) error {
	return n.record(sentMail{kind: "otp", to: to, name: name, value: code, device: device})
}

func (n *recordingNotifier) SendResetPasswordEmail(_ context.Context, to, name, token string) error {
	return n.record(sentMail{kind: "reset", to: to, name: name, value: token})
}

func (n *recordingNotifier) last(kind string) (sentMail, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].kind == kind {
			return n.sent[i], true
		}
	}
	return sentMail{}, false
}

func (n *recordingNotifier) countKind(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.sent {
		if strings.EqualFold(m.kind, kind) {
			c++
		}
	}
	return c
}
