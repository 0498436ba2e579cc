package repository

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/weird/internal/domain"
	"github.com/totegamma/weird/internal/infra/database/models"
	"github.com/totegamma/weird/leaf"
)

var tracer = otel.Tracer("repository")

// ComponentRepository is a leaf.Store backed by a relational table of
// encoded components.
type ComponentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

func (r *ComponentRepository) GetComponents(ctx context.Context, link leaf.Link, types []leaf.ComponentType) (*leaf.Entity, error) {
	ctx, span := tracer.Start(ctx, "Component.Repository.GetComponents")
	defer span.End()

	key := link.String()

	var exists int64
	err := r.db.WithContext(ctx).Model(&models.Component{}).Where("link = ?", key).Limit(1).Count(&exists).Error
	if err != nil {
		span.RecordError(err)
		return nil, domain.StoreError{Op: "get_components", Err: err}
	}
	if exists == 0 {
		return nil, nil
	}

	entity := leaf.NewEntity(link)
	if len(types) == 0 {
		return entity, nil
	}

	var rows []models.Component
	err = r.db.WithContext(ctx).
		Where("link = ? AND name IN ?", key, leaf.Names(types)).
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, domain.StoreError{Op: "get_components", Err: err}
	}

	byName := make(map[string][]byte, len(rows))
	for _, row := range rows {
		byName[row.Name] = row.Data
	}
	for _, t := range types {
		data, ok := byName[t.Name]
		if !ok {
			continue
		}
		c, err := t.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s component: %v", t.Name, err)
		}
		entity.Set(c)
	}

	return entity, nil
}

func (r *ComponentRepository) AddComponents(ctx context.Context, link leaf.Link, components []leaf.Component) error {
	ctx, span := tracer.Start(ctx, "Component.Repository.AddComponents")
	defer span.End()

	if len(components) == 0 {
		return nil
	}

	key := link.String()
	rows := make([]models.Component, 0, len(components))
	for _, c := range components {
		data, err := c.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode %s component: %v", c.ComponentName(), err)
		}
		rows = append(rows, models.Component{Link: key, Name: c.ComponentName(), Data: data})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "link"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "m_date"}),
		}).Create(&rows).Error
	})
	if err != nil {
		span.RecordError(err)
		return domain.StoreError{Op: "add_components", Err: err}
	}

	return nil
}

func (r *ComponentRepository) DelComponents(ctx context.Context, link leaf.Link, types []leaf.ComponentType) error {
	ctx, span := tracer.Start(ctx, "Component.Repository.DelComponents")
	defer span.End()

	if len(types) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Where("link = ? AND name IN ?", link.String(), leaf.Names(types)).
		Delete(&models.Component{}).Error
	if err != nil {
		span.RecordError(err)
		return domain.StoreError{Op: "del_components", Err: err}
	}

	return nil
}

func (r *ComponentRepository) ListEntities(ctx context.Context, collection leaf.Link) ([]leaf.Link, error) {
	ctx, span := tracer.Start(ctx, "Component.Repository.ListEntities")
	defer span.End()

	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Distinct("link").
		Where("link LIKE ?", escapeLike(collection.String()+"/")+"%").
		Pluck("link", &keys).Error
	if err != nil {
		span.RecordError(err)
		return nil, domain.StoreError{Op: "list_entities", Err: err}
	}

	links := make([]leaf.Link, 0, len(keys))
	for _, key := range keys {
		link, err := leaf.ParseLink(key)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ leaf.Store = (*ComponentRepository)(nil)
