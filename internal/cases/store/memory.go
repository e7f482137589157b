package store

import (
	"context"
	"slices"
	"sync"

	"kycdsl/internal/cases/models"
)

// InMemoryStore keeps case versions in process. Safe for concurrent use.
type InMemoryStore struct {
	mu         sync.RWMutex
	versions   map[string][]*models.CaseVersion
	amendments map[string][]*models.Amendment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		versions:   make(map[string][]*models.CaseVersion),
		amendments: make(map[string][]*models.Amendment),
	}
}

// CreateCase stores the first version of a new case.
func (s *InMemoryStore) CreateCase(_ context.Context, v *models.CaseVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.versions[v.CaseName]; exists {
		return ErrConflict
	}
	cp := *v
	s.versions[v.CaseName] = []*models.CaseVersion{&cp}
	return nil
}

func (s *InMemoryStore) Latest(_ context.Context, caseName string) (*models.CaseVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.versions[caseName]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	cp := *versions[len(versions)-1]
	return &cp, nil
}

func (s *InMemoryStore) ListVersions(_ context.Context, caseName string) ([]*models.CaseVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.versions[caseName]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]*models.CaseVersion, len(versions))
	for i, v := range versions {
		cp := *v
		out[i] = &cp
	}
	return out, nil
}

// AppendAmendment stores v and its amendment record together. v.Version must
// directly follow the latest stored version.
func (s *InMemoryStore) AppendAmendment(_ context.Context, v *models.CaseVersion, a *models.Amendment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.versions[v.CaseName]
	if len(versions) == 0 {
		return ErrNotFound
	}
	if versions[len(versions)-1].Version+1 != v.Version {
		return ErrConflict
	}
	vc, ac := *v, *a
	s.versions[v.CaseName] = append(versions, &vc)
	s.amendments[v.CaseName] = append(s.amendments[v.CaseName], &ac)
	return nil
}

// DeleteCase removes every version and amendment of a case and reports how
// many versions were removed.
func (s *InMemoryStore) DeleteCase(_ context.Context, caseName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions, ok := s.versions[caseName]
	if !ok {
		return 0, ErrNotFound
	}
	delete(s.versions, caseName)
	delete(s.amendments, caseName)
	return len(versions), nil
}

func (s *InMemoryStore) ListAmendments(_ context.Context, caseName string) ([]*models.Amendment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.versions[caseName]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*models.Amendment, 0, len(s.amendments[caseName]))
	for _, a := range s.amendments[caseName] {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// ListCases returns the latest version of each case, ordered by name. A
// non-empty names restricts the result to those cases.
func (s *InMemoryStore) ListCases(_ context.Context, names []string) ([]*models.CaseVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CaseVersion
	for name, versions := range s.versions {
		if len(names) > 0 && !slices.Contains(names, name) {
			continue
		}
		cp := *versions[len(versions)-1]
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.CaseVersion) int {
		switch {
		case a.CaseName < b.CaseName:
			return -1
		case a.CaseName > b.CaseName:
			return 1
		}
		return 0
	})
	return out, nil
}
