package mappers

import (
	"fmt"

	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
)

// AccountMapper handles the conversion between domain entities and persistence models
type AccountMapper interface {
	ToEntity(model *models.AccountModel) (*account.Account, error)
	ToModel(entity *account.Account) (*models.AccountModel, error)
	ToEntities(models []*models.AccountModel) ([]*account.Account, error)
}

type accountMapper struct{}

// NewAccountMapper creates a new account mapper
func NewAccountMapper() AccountMapper {
	return &accountMapper{}
}

func (m *accountMapper) ToEntity(model *models.AccountModel) (*account.Account, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := account.Reconstruct(
		model.ID,
		model.SID,
		model.Email,
		model.DisplayName,
		model.Role,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct account entity: %w", err)
	}

	return entity, nil
}

func (m *accountMapper) ToModel(entity *account.Account) (*models.AccountModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.AccountModel{
		ID:          entity.ID(),
		SID:         entity.SID(),
		Email:       entity.Email(),
		DisplayName: entity.DisplayName(),
		Role:        entity.Role(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}, nil
}

func (m *accountMapper) ToEntities(accountModels []*models.AccountModel) ([]*account.Account, error) {
	entities := make([]*account.Account, 0, len(accountModels))

	for i, model := range accountModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map model at index %d (ID %d): %w", i, model.ID, err)
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}
