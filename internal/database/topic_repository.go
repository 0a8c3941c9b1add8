package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// CatalogRepository handles the read-mostly topic and level catalogs
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new repository instance
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListTopics returns all topics
func (r *CatalogRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.SelectContext(ctx, &topics, "SELECT id, name_ru, name_en, name_uz FROM topics ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	return topics, nil
}

// GetTopic returns a topic by ID
func (r *CatalogRepository) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	var topic models.Topic
	query := r.db.Rebind("SELECT id, name_ru, name_en, name_uz FROM topics WHERE id = ?")
	err := r.db.GetContext(ctx, &topic, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("topic %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

// CreateTopic inserts a topic and returns its ID
func (r *CatalogRepository) CreateTopic(ctx context.Context, name models.LocalizedName) (int64, error) {
	return r.insertNamed(ctx, "topics", name)
}

// ListLevels returns all levels
func (r *CatalogRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := r.db.SelectContext(ctx, &levels, "SELECT id, name_ru, name_en, name_uz FROM levels ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get levels: %w", err)
	}
	return levels, nil
}

// GetLevel returns a level by ID
func (r *CatalogRepository) GetLevel(ctx context.Context, id int64) (*models.Level, error) {
	var level models.Level
	query := r.db.Rebind("SELECT id, name_ru, name_en, name_uz FROM levels WHERE id = ?")
	err := r.db.GetContext(ctx, &level, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("level %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	return &level, nil
}

// CreateLevel inserts a level and returns its ID
func (r *CatalogRepository) CreateLevel(ctx context.Context, name models.LocalizedName) (int64, error) {
	return r.insertNamed(ctx, "levels", name)
}

func (r *CatalogRepository) insertNamed(ctx context.Context, table string, name models.LocalizedName) (int64, error) {
	query := r.db.Rebind("INSERT INTO " + table + " (name_ru, name_en, name_uz) VALUES (?, ?, ?) RETURNING id")

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, name.NameRU, name.NameEN, name.NameUZ).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s entry: %w", table, err)
	}
	return id, nil
}
