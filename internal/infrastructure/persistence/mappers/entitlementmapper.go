package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
)

// EntitlementMapper handles the conversion between domain entities and persistence models
type EntitlementMapper interface {
	ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error)
	ToModel(entity *entitlement.Entitlement) (*models.EntitlementModel, error)
	ToEntities(models []*models.EntitlementModel) ([]*entitlement.Entitlement, error)
}

type entitlementMapper struct{}

// NewEntitlementMapper creates a new entitlement mapper
func NewEntitlementMapper() EntitlementMapper {
	return &entitlementMapper{}
}

func (m *entitlementMapper) ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error) {
	if model == nil {
		return nil, nil
	}

	var metadata map[string]any
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to deserialize entitlement metadata: %w", err)
		}
	}

	entity, err := entitlement.Reconstruct(
		model.ID,
		model.SID,
		model.AccountID,
		model.ProductID,
		model.OrderRef,
		entitlement.Source(model.Source),
		entitlement.Status(model.Status),
		model.GrantedAt,
		metadata,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct entitlement entity: %w", err)
	}

	return entity, nil
}

func (m *entitlementMapper) ToModel(entity *entitlement.Entitlement) (*models.EntitlementModel, error) {
	if entity == nil {
		return nil, nil
	}

	var metadataJSON datatypes.JSON
	if len(entity.Metadata()) > 0 {
		jsonBytes, err := json.Marshal(entity.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to serialize entitlement metadata: %w", err)
		}
		metadataJSON = jsonBytes
	}

	return &models.EntitlementModel{
		ID:        entity.ID(),
		SID:       entity.SID(),
		AccountID: entity.AccountID(),
		ProductID: entity.ProductID(),
		OrderRef:  entity.OrderRef(),
		Source:    string(entity.Source()),
		Status:    string(entity.Status()),
		GrantedAt: entity.GrantedAt(),
		Metadata:  metadataJSON,
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}, nil
}

func (m *entitlementMapper) ToEntities(entitlementModels []*models.EntitlementModel) ([]*entitlement.Entitlement, error) {
	entities := make([]*entitlement.Entitlement, 0, len(entitlementModels))

	for i, model := range entitlementModels {
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
