// Package memstore keeps every collection in process memory. It backs the
// development STORE_DRIVER=memory mode and the service and controller tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store"
)

// Store bundles one repository per collection.
type Store struct {
	Users       *Users
	OTPs        *OTPs
	Colleges    *Colleges
	Experiences *Experiences
	Plans       *Plans
}

// New returns an empty store. now is used to stamp and prune records; nil
// means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		Users:       &Users{byID: map[primitive.ObjectID]models.User{}, now: now},
		OTPs:        &OTPs{now: now},
		Colleges:    &Colleges{byID: map[primitive.ObjectID]models.College{}, now: now},
		Experiences: &Experiences{byID: map[primitive.ObjectID]models.Experience{}, now: now},
		Plans:       &Plans{byID: map[primitive.ObjectID]models.LearningPlan{}, now: now},
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func paginate[T any](items []T, p models.Page) []T {
	p = p.Normalize()
	start := p.Skip()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Users is the in-memory credential store.
type Users struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.User
	now  func() time.Time
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.byID[u.ID] = cloneUser(*u)
	return nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *Users) Update(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(&u)
	u.UpdatedAt = s.now().UTC()
	s.byID[id] = cloneUser(u)
	out := cloneUser(u)
	return &out, nil
}

// All returns a snapshot of every stored user.
func (s *Users) All() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, cloneUser(u))
	}
	return out
}

func cloneUser(u models.User) models.User {
	u.TechnicalSkills = append([]string(nil), u.TechnicalSkills...)
	u.InterestedRoles = append([]string(nil), u.InterestedRoles...)
	if u.YearsExperience != nil {
		y := *u.YearsExperience
		u.YearsExperience = &y
	}
	return u
}

// OTPs is the in-memory passcode store. Records past their expiry are
// pruned whenever a new record is inserted.
type OTPs struct {
	mu      sync.Mutex
	records []models.OTPRecord
	now     func() time.Time
}

func (s *OTPs) DeleteFor(_ context.Context, email string, purpose models.OTPPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.Email == email && r.Purpose == purpose {
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return nil
}

func (s *OTPs) Insert(_ context.Context, rec *models.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	kept := s.records[:0]
	for _, r := range s.records {
		if !r.Expired(now) {
			kept = append(kept, r)
		}
	}
	s.records = kept
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
	s.records = append(s.records, *rec)
	return nil
}

func (s *OTPs) Latest(_ context.Context, email string, purpose models.OTPPurpose) (*models.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.OTPRecord
	for i := range s.records {
		r := s.records[i]
		if r.Email != email || r.Purpose != purpose || r.Verified {
			continue
		}
		if latest == nil || !r.CreatedAt.Before(latest.CreatedAt) {
			latest = &r
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest, nil
}

func (s *OTPs) ReserveAttempt(_ context.Context, id primitive.ObjectID, limit int) (*models.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		r := &s.records[i]
		if r.ID == id && !r.Verified && r.Attempts < limit {
			r.Attempts++
			out := *r
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *OTPs) ReleaseAttempt(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id && s.records[i].Attempts > 0 {
			s.records[i].Attempts--
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *OTPs) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id && !s.records[i].Verified {
			s.records[i].Verified = true
			return nil
		}
	}
	return store.ErrNotFound
}

// All returns a snapshot of every stored record.
func (s *OTPs) All() []models.OTPRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OTPRecord(nil), s.records...)
}

// Colleges is the in-memory college directory.
type Colleges struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.College
	now  func() time.Time
}

func (s *Colleges) List(_ context.Context, f models.CollegeFilter) ([]models.College, int64, error) {
	s.mu.RLock()
	var matched []models.College
	for _, c := range s.byID {
		if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(c.City, f.Search) {
			continue
		}
		if f.State != "" && !strings.EqualFold(c.State, f.State) {
			continue
		}
		if f.Type != "" && !strings.EqualFold(c.Type, f.Type) {
			continue
		}
		matched = append(matched, c)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Ranking != matched[j].Ranking {
			return matched[i].Ranking < matched[j].Ranking
		}
		return matched[i].Name < matched[j].Name
	})
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (s *Colleges) FindByID(_ context.Context, id primitive.ObjectID) (*models.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Colleges) Create(_ context.Context, c *models.College) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *Colleges) Update(_ context.Context, id primitive.ObjectID, patch models.CollegePatch) (*models.College, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(&c)
	c.UpdatedAt = s.now().UTC()
	s.byID[id] = c
	return &c, nil
}

func (s *Colleges) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Experiences is the in-memory interview-experience board.
type Experiences struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Experience
	now  func() time.Time
}

func (s *Experiences) List(_ context.Context, f models.ExperienceFilter) ([]models.Experience, int64, error) {
	s.mu.RLock()
	var matched []models.Experience
	for _, e := range s.byID {
		if !f.UserID.IsZero() && e.UserID != f.UserID {
			continue
		}
		if f.Company != "" && !containsFold(e.Company, f.Company) {
			continue
		}
		if f.Role != "" && !containsFold(e.Role, f.Role) {
			continue
		}
		if f.Difficulty != "" && e.Difficulty != f.Difficulty {
			continue
		}
		if f.Outcome != "" && e.Outcome != f.Outcome {
			continue
		}
		if f.Search != "" && !containsFold(e.Company, f.Search) && !containsFold(e.Role, f.Search) &&
			!containsFold(e.Content, f.Search) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if f.OldestFirst {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (s *Experiences) FindByID(_ context.Context, id primitive.ObjectID) (*models.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (s *Experiences) Create(_ context.Context, e *models.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	s.byID[e.ID] = *e
	return nil
}

func (s *Experiences) Update(_ context.Context, id primitive.ObjectID, patch models.ExperiencePatch) (*models.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(&e)
	e.UpdatedAt = s.now().UTC()
	s.byID[id] = e
	return &e, nil
}

func (s *Experiences) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Plans is the in-memory learning-plan store.
type Plans struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.LearningPlan
	now  func() time.Time
}

func (s *Plans) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.LearningPlan, error) {
	s.mu.RLock()
	out := []models.LearningPlan{}
	for _, p := range s.byID {
		if p.UserID == userID {
			out = append(out, clonePlan(p))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Plans) FindByID(_ context.Context, id primitive.ObjectID) (*models.LearningPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := clonePlan(p)
	return &out, nil
}

func (s *Plans) Create(_ context.Context, p *models.LearningPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	s.byID[p.ID] = clonePlan(*p)
	return nil
}

func (s *Plans) Replace(_ context.Context, p *models.LearningPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = s.now().UTC()
	s.byID[p.ID] = clonePlan(*p)
	return nil
}

func (s *Plans) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func clonePlan(p models.LearningPlan) models.LearningPlan {
	p.Skills = append([]string(nil), p.Skills...)
	weeks := make([]models.PlanWeek, len(p.Weeks))
	copy(weeks, p.Weeks)
	p.Weeks = weeks
	return p
}
