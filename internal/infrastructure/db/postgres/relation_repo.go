package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type RelationRepo struct {
	db *sql.DB
}

func NewRelationRepo(db *sql.DB) *RelationRepo { return &RelationRepo{db: db} }

func (r *RelationRepo) ListByUser(ctx context.Context, userID string) ([]domain.SaveRelation, error) {
	rows, err := r.db.QueryContext(ctx, listRelationsByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SaveRelation
	for rows.Next() {
		var rel domain.SaveRelation
		if err := rows.Scan(&rel.UserID, &rel.EventID, &rel.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func (r *RelationRepo) Exists(ctx context.Context, key domain.RelationKey) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, existsRelationSQL, key.UserID, key.EventID).Scan(&ok)
	return ok, err
}

func (r *RelationRepo) Upsert(ctx context.Context, rel domain.SaveRelation) error {
	_, err := r.db.ExecContext(ctx, upsertRelationSQL, rel.UserID, rel.EventID, rel.CreatedAt)
	return err
}

func (r *RelationRepo) Delete(ctx context.Context, key domain.RelationKey) error {
	_, err := r.db.ExecContext(ctx, deleteRelationSQL, key.UserID, key.EventID)
	return err
}

func (r *RelationRepo) DanglingRelations(ctx context.Context) ([]domain.RelationKey, error) {
	rows, err := r.db.QueryContext(ctx, danglingRelationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RelationKey
	for rows.Next() {
		var k domain.RelationKey
		if err := rows.Scan(&k.UserID, &k.EventID); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
