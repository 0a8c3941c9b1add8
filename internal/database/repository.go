package database

import "github.com/jmoiron/sqlx"

// Repository bundles every table repository behind a single value that
// satisfies the engine, dispatcher and front-end store contracts
type Repository struct {
	*UserRepository
	*CatalogRepository
	*PhraseRepository
	*ScoreRepository
	*ProgressRepository
}

// NewRepository creates repositories sharing one connection pool
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		UserRepository:     NewUserRepository(db),
		CatalogRepository:  NewCatalogRepository(db),
		PhraseRepository:   NewPhraseRepository(db),
		ScoreRepository:    NewScoreRepository(db),
		ProgressRepository: NewProgressRepository(db),
	}
}
