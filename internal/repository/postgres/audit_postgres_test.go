package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAuditPostgres_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)
	ctx := context.Background()

	t.Run("with asset reference", func(t *testing.T) {
		assetID := "asset-1"
		mock.ExpectExec("INSERT INTO audit_log").
			WithArgs(sqlmock.AnyArg(), "title: Pump A → Pump B", "user-1", "asset-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Append(ctx, "title: Pump A → Pump B", "user-1", &assetID)

		assert.NoError(t, err)
	})

	t.Run("detached entry", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO audit_log").
			WithArgs(sqlmock.AnyArg(), "purged asset Pump A", "admin-1", nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Append(ctx, "purged asset Pump A", "admin-1", nil)

		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPostgres_ListByAsset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "action", "actor_id", "asset_id", "created_at"}).
		AddRow("e-2", "version: 1.0 → 2.0", "user-1", "asset-1", now).
		AddRow("e-1", "created asset Pump A", "user-1", "asset-1", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, action, actor_id, asset_id, created_at FROM audit_log").
		WithArgs("asset-1").
		WillReturnRows(rows)

	entries, err := repo.ListByAsset(ctx, "asset-1")

	assert.NoError(t, err)
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "version: 1.0 → 2.0", entries[0].Action)
		if assert.NotNil(t, entries[0].AssetID) {
			assert.Equal(t, "asset-1", *entries[0].AssetID)
		}
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPostgres_DetachAsset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE audit_log SET asset_id = NULL").
		WithArgs("asset-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = repo.DetachAsset(ctx, "asset-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
