package service

import (
	"context"
	"sync"

	"github.com/aquario/identity-service/internal/core/domain"
)

const (
	centerCI    = "0b7d6a52-3f3e-4f0e-9a43-2f1f8c7d9e01"
	centerCCEN  = "5c2b1e77-8d4a-4b6f-a1c3-7e9f0d2b4a11"
	courseCC    = "a3e1c9d4-6b2f-4e8a-9c7d-1f0e2b3a4c21"
	courseMath  = "d4f2b8e6-1a3c-4d5e-8f7a-9b0c1d2e3f31"
	unknownUUID = "ffffffff-ffff-4fff-bfff-ffffffffffff"
)

type stubStore struct {
	mu       sync.Mutex
	byEmail  map[string]*domain.Identity
	findErr  error
	onFind   func()
	creates  int
	createFn func(*domain.Identity) error
}

func newStubStore() *stubStore {
	return &stubStore{byEmail: make(map[string]*domain.Identity)}
}

func cloneIdentity(u *domain.Identity) *domain.Identity {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (s *stubStore) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onFind != nil {
		s.onFind()
	}
	if s.findErr != nil {
		return nil, s.findErr
	}
	if u, ok := s.byEmail[email]; ok {
		return cloneIdentity(u), nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (s *stubStore) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return cloneIdentity(u), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

// Create enforces email uniqueness like the store's unique index does.
func (s *stubStore) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.createFn != nil {
		if err := s.createFn(identity); err != nil {
			return nil, err
		}
	}
	if _, exists := s.byEmail[identity.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	s.creates++
	s.byEmail[identity.Email] = cloneIdentity(identity)
	return cloneIdentity(identity), nil
}

func (s *stubStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}

type stubDirectory struct {
	centers map[string]domain.Center
	courses map[string]domain.Course
	err     error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		centers: map[string]domain.Center{
			centerCI:   {ID: centerCI, Name: "Centro de Informática", Acronym: "CI"},
			centerCCEN: {ID: centerCCEN, Name: "Centro de Ciências Exatas e da Natureza", Acronym: "CCEN"},
		},
		courses: map[string]domain.Course{
			courseCC:   {ID: courseCC, Name: "Ciência da Computação", CenterID: centerCI},
			courseMath: {ID: courseMath, Name: "Matemática", CenterID: centerCCEN},
		},
	}
}

func (d *stubDirectory) FindCenter(_ context.Context, id string) (*domain.Center, error) {
	if d.err != nil {
		return nil, d.err
	}
	c, ok := d.centers[id]
	if !ok {
		return nil, domain.ErrCenterNotFound
	}
	return &c, nil
}

func (d *stubDirectory) ListCenters(_ context.Context) ([]domain.Center, error) {
	out := make([]domain.Center, 0, len(d.centers))
	for _, c := range d.centers {
		out = append(out, c)
	}
	return out, nil
}

func (d *stubDirectory) FindCourse(_ context.Context, id string) (*domain.Course, error) {
	if d.err != nil {
		return nil, d.err
	}
	c, ok := d.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return &c, nil
}

func (d *stubDirectory) ListCoursesByCenter(_ context.Context, centerID string) ([]domain.Course, error) {
	var out []domain.Course
	for _, c := range d.courses {
		if c.CenterID == centerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// stubHasher is a fast stand-in for bcrypt.
type stubHasher struct {
	mu       sync.Mutex
	compares int
}

func (h *stubHasher) Hash(_ context.Context, password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *stubHasher) Compare(_ context.Context, hash, password string) error {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}
