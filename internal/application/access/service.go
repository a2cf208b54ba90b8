package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName           = "name"
	fieldAccessCodeHash = "access_code_hash"
)

type Service interface {
	ListScopes(ctx context.Context) ([]domain.Scope, error)
	GetScope(ctx context.Context, scopeID string) (*domain.Scope, error)
	CreateScope(ctx context.Context, req domain.CreateScopeRequest) (*domain.Scope, error)
	UpdateScope(ctx context.Context, scopeID string, req domain.UpdateScopeRequest) (*domain.Scope, error)
	Unlock(ctx context.Context, userID, scopeID, code string) (*domain.DigitalKey, error)
	HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error)
	ListKeys(ctx context.Context, userID string) ([]domain.DigitalKey, error)
}

type scopeStore interface {
	Put(ctx context.Context, s *domain.Scope) error
	Get(ctx context.Context, scopeID string) (*domain.Scope, error)
	GetGlobal(ctx context.Context) (*domain.Scope, error)
	Scan(ctx context.Context) ([]domain.Scope, error)
	Update(ctx context.Context, scopeID string, updates map[string]interface{}) error
}

type keyStore interface {
	PutIfAbsent(ctx context.Context, k *domain.DigitalKey) error
	Get(ctx context.Context, userID, scopeID string) (*domain.DigitalKey, error)
	ListByUser(ctx context.Context, userID string) ([]domain.DigitalKey, error)
}

type service struct {
	scopeRepo scopeStore
	keyRepo   keyStore
}

func NewService(scopeRepo scopeStore, keyRepo keyStore) Service {
	return &service{scopeRepo: scopeRepo, keyRepo: keyRepo}
}

func (s *service) ListScopes(ctx context.Context) ([]domain.Scope, error) {
	return s.scopeRepo.Scan(ctx)
}

func (s *service) GetScope(ctx context.Context, scopeID string) (*domain.Scope, error) {
	return s.scopeRepo.Get(ctx, scopeID)
}

func (s *service) CreateScope(ctx context.Context, req domain.CreateScopeRequest) (*domain.Scope, error) {
	switch req.Type {
	case domain.ScopeGlobal:
		if _, err := s.scopeRepo.GetGlobal(ctx); err == nil {
			return nil, fmt.Errorf("global scope already exists: %w", domain.ErrConflict)
		}
	case domain.ScopeGrade:
		if req.GradeNumber == nil {
			return nil, fmt.Errorf("grade_number required for grade scopes: %w", domain.ErrBadRequest)
		}
		existing, err := s.scopeRepo.Scan(ctx)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.Type == domain.ScopeGrade && other.GradeNumber != nil && *other.GradeNumber == *req.GradeNumber {
				return nil, fmt.Errorf("grade %d already has a scope: %w", *req.GradeNumber, domain.ErrConflict)
			}
		}
	case domain.ScopeSection:
		if req.SectionName == nil || *req.SectionName == "" {
			return nil, fmt.Errorf("section_name required for section scopes: %w", domain.ErrBadRequest)
		}
		existing, err := s.scopeRepo.Scan(ctx)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.Type == domain.ScopeSection && other.SectionName != nil && *other.SectionName == *req.SectionName {
				return nil, fmt.Errorf("section %q already has a scope: %w", *req.SectionName, domain.ErrConflict)
			}
		}
	}
	var codeHash string
	if req.Type != domain.ScopeGlobal {
		if req.AccessCode == "" {
			return nil, fmt.Errorf("access_code required for locked scopes: %w", domain.ErrBadRequest)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.AccessCode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		codeHash = string(hash)
	}
	scopeID := id.New()
	if req.Type == domain.ScopeGlobal {
		scopeID = domain.GlobalScopeID
	}
	now := time.Now().UTC()
	sc := &domain.Scope{
		ScopeID:        scopeID,
		Name:           req.Name,
		Type:           req.Type,
		GradeNumber:    req.GradeNumber,
		SectionName:    req.SectionName,
		AccessCodeHash: codeHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.scopeRepo.Put(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *service) UpdateScope(ctx context.Context, scopeID string, req domain.UpdateScopeRequest) (*domain.Scope, error) {
	sc, err := s.scopeRepo.Get(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.AccessCode != nil {
		if sc.Type == domain.ScopeGlobal {
			return nil, fmt.Errorf("global scope cannot have an access code: %w", domain.ErrBadRequest)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.AccessCode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates[fieldAccessCodeHash] = string(hash)
	}
	if len(updates) == 0 {
		return sc, nil
	}
	if err := s.scopeRepo.Update(ctx, scopeID, updates); err != nil {
		return nil, err
	}
	return s.scopeRepo.Get(ctx, scopeID)
}

// Unlock checks the access code against the scope and mints a digital key.
// Unlocking an already-unlocked scope returns the existing key unchanged.
func (s *service) Unlock(ctx context.Context, userID, scopeID, code string) (*domain.DigitalKey, error) {
	sc, err := s.scopeRepo.Get(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	if sc.Type == domain.ScopeGlobal {
		return nil, fmt.Errorf("global scope needs no key: %w", domain.ErrBadRequest)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sc.AccessCodeHash), []byte(code)); err != nil {
		return nil, fmt.Errorf("invalid access code: %w", domain.ErrUnauthorized)
	}
	key := &domain.DigitalKey{
		UserID:     userID,
		ScopeID:    scopeID,
		UnlockedAt: time.Now().UTC(),
	}
	if err := s.keyRepo.PutIfAbsent(ctx, key); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.keyRepo.Get(ctx, userID, scopeID)
		}
		return nil, err
	}
	return key, nil
}

// HasAccess decides whether a user may read content in the given scope.
// The empty scope and the global scope are open to everyone; admins bypass
// keys entirely; everyone else needs a digital key for the scope.
func (s *service) HasAccess(ctx context.Context, userID, role, scopeID string) (bool, error) {
	if scopeID == "" {
		return true, nil
	}
	sc, err := s.scopeRepo.Get(ctx, scopeID)
	if err != nil {
		return false, err
	}
	if sc.Type == domain.ScopeGlobal {
		return true, nil
	}
	if role == domain.RoleAdmin {
		return true, nil
	}
	if _, err := s.keyRepo.Get(ctx, userID, scopeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) ListKeys(ctx context.Context, userID string) ([]domain.DigitalKey, error) {
	return s.keyRepo.ListByUser(ctx, userID)
}
