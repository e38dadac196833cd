package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresIdentityRepo はidentitiesテーブルへのアクセスを提供する。
// identitiesはIdPのユーザーIDとアプリ内ユーザーの紐付けを保持する。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindByProviderAndProviderUserID はIdPのクレームに対応する紐付けを検索する。
// 未登録の場合はnilを返す。
func (r *PostgresIdentityRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	const query = `
		SELECT id, user_id, provider, provider_user_id, created_at
		FROM identities
		WHERE provider = $1 AND provider_user_id = $2`

	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx, query, provider, providerUserID).
		Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderUserID, &identity.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	return identity, nil
}

var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
