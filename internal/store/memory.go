package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ayush/student-rating/internal/models"
)

type memUser struct {
	user models.User
	hash string
}

// MemoryStore is an in-process implementation of the store, used for local
// development and tests. All state is guarded by a single mutex.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[int64]*memUser
	emails       map[string]int64
	achievements []models.Achievement
	news         []models.News
	nextUserID   int64
	nextAchID    int64
	nextNewsID   int64
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[int64]*memUser),
		emails: make(map[string]int64),
		now:    time.Now,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, nu models.NewUser) (*models.User, error) {
	const op = "store.CreateUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(nu.Email)
	if _, ok := s.emails[email]; ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateEmail)
	}
	role := nu.Role
	if role == "" {
		role = models.RoleStudent
	}
	s.nextUserID++
	u := models.User{
		ID:        s.nextUserID,
		FullName:  nu.FullName,
		Phone:     nu.Phone,
		Group:     nu.Group,
		Email:     email,
		Rating:    nu.Rating,
		Role:      role,
		Active:    true,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = &memUser{user: u, hash: nu.PasswordHash}
	s.emails[email] = u.ID
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("store.GetUserByID: %w", models.ErrNotFound)
	}
	u := mu.user
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("store.GetUserByEmail: %w", models.ErrNotFound)
	}
	u := s.users[id].user
	return &u, nil
}

func (s *MemoryStore) GetCredentialsByEmail(_ context.Context, email string) (*models.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("store.GetCredentialsByEmail: %w", models.ErrNotFound)
	}
	mu := s.users[id]
	return &models.Credentials{User: mu.user, PasswordHash: mu.hash}, nil
}

func (s *MemoryStore) UpdateRating(_ context.Context, id int64, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return 0, fmt.Errorf("store.UpdateRating: %w", models.ErrNotFound)
	}
	mu.user.Rating += delta
	return mu.user.Rating, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id int64, p models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("store.UpdateProfile: %w", models.ErrNotFound)
	}
	mu.user.FullName = p.FullName
	mu.user.Phone = p.Phone
	mu.user.Group = p.Group
	u := mu.user
	return &u, nil
}

func (s *MemoryStore) SetActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return fmt.Errorf("store.SetActive: %w", models.ErrNotFound)
	}
	mu.user.Active = active
	return nil
}

func (s *MemoryStore) DeleteStudent(_ context.Context, id int64) error {
	const op = "store.DeleteStudent"
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if !mu.user.IsStudent() {
		return fmt.Errorf("%s: %w", op, models.ErrRoleViolation)
	}
	delete(s.users, id)
	delete(s.emails, mu.user.Email)

	kept := s.achievements[:0]
	for _, a := range s.achievements {
		if a.StudentID != id {
			kept = append(kept, a)
		}
	}
	s.achievements = kept

	keptNews := s.news[:0]
	for _, n := range s.news {
		if n.AuthorID != id {
			keptNews = append(keptNews, n)
		}
	}
	s.news = keptNews
	return nil
}

func (s *MemoryStore) ApplyAward(_ context.Context, a *models.Achievement) (int, error) {
	const op = "store.ApplyAward"
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[a.StudentID]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if !mu.user.IsStudent() {
		return 0, fmt.Errorf("%s: %w", op, models.ErrNotAStudent)
	}
	mu.user.Rating += a.Points
	s.nextAchID++
	a.ID = s.nextAchID
	a.CreatedAt = s.now()
	s.achievements = append(s.achievements, *a)
	return mu.user.Rating, nil
}

func (s *MemoryStore) ListAchievements(_ context.Context, studentID int64) ([]models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []models.Achievement{}
	for i := len(s.achievements) - 1; i >= 0; i-- {
		if s.achievements[i].StudentID == studentID {
			list = append(list, s.achievements[i])
		}
	}
	return list, nil
}

// sortedStudents must be called with mu held.
func (s *MemoryStore) sortedStudents() []models.User {
	list := make([]models.User, 0, len(s.users))
	for _, mu := range s.users {
		if mu.user.IsStudent() {
			list = append(list, mu.user)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Rating != list[j].Rating {
			return list[i].Rating > list[j].Rating
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *MemoryStore) ListStudents(_ context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.sortedStudents()
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) StudentRank(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.sortedStudents() {
		if u.ID == id {
			return i + 1, nil
		}
	}
	return models.NoRank, nil
}

func (s *MemoryStore) CreateNews(_ context.Context, n *models.News) (*models.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[n.AuthorID]; !ok {
		return nil, fmt.Errorf("store.CreateNews: %w", models.ErrNotFound)
	}
	s.nextNewsID++
	created := *n
	created.ID = s.nextNewsID
	created.CreatedAt = s.now()
	s.news = append(s.news, created)
	return &created, nil
}

func (s *MemoryStore) GetNews(_ context.Context, id int64) (*models.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.news {
		if n.ID == id {
			found := n
			return &found, nil
		}
	}
	return nil, fmt.Errorf("store.GetNews: %w", models.ErrNotFound)
}

func (s *MemoryStore) DeleteNews(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.news {
		if n.ID == id {
			s.news = append(s.news[:i], s.news[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("store.DeleteNews: %w", models.ErrNotFound)
}

func (s *MemoryStore) ListNews(_ context.Context, excludeID int64, limit int) ([]models.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []models.News{}
	for i := len(s.news) - 1; i >= 0; i-- {
		if s.news[i].ID == excludeID {
			continue
		}
		list = append(list, s.news[i])
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}
