package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"assetcat/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assetCols = []string{
	"id", "title", "description", "author_id", "archive_path", "archive_version",
	"screenshots", "marked_for_deletion", "marked_by", "marked_at", "deletion_comment",
	"created_at", "updated_at",
}

func TestAssetPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAssetPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows(assetCols).AddRow(
			"asset-1", "Pump A", "a pump", "user-1", "models/Pump_A/v1.0/model.zip", "1.0",
			[]byte(`["models/Pump_A/v1.0/screenshots/a.png"]`), false, nil, nil, nil,
			now, now,
		)
		mock.ExpectQuery("SELECT (.+) FROM assets WHERE id = ?").
			WithArgs("asset-1").
			WillReturnRows(rows)
		mock.ExpectQuery("SELECT sphere_id FROM asset_spheres").
			WithArgs("asset-1").
			WillReturnRows(sqlmock.NewRows([]string{"sphere_id"}).AddRow("sphere-1"))
		mock.ExpectQuery("SELECT project_id FROM asset_projects").
			WithArgs("asset-1").
			WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow("project-1"))

		a, err := repo.FindByID(ctx, "asset-1")

		require.NoError(t, err)
		assert.Equal(t, "Pump A", a.Title)
		require.NotNil(t, a.AuthorID)
		assert.Equal(t, "user-1", *a.AuthorID)
		assert.Equal(t, []string{"models/Pump_A/v1.0/screenshots/a.png"}, a.Screenshots)
		assert.Equal(t, []string{"sphere-1"}, a.SphereIDs)
		assert.Equal(t, []string{"project-1"}, a.ProjectIDs)
		assert.False(t, a.DeletionMark.Marked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletion mark round-trips", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows(assetCols).AddRow(
			"asset-2", "Pump B", "", nil, "models/Pump_B/v1.0/model.zip", "1.0",
			[]byte(`[]`), true, "user-9", now, "obsolete",
			now, now,
		)
		mock.ExpectQuery("SELECT (.+) FROM assets WHERE id = ?").
			WithArgs("asset-2").
			WillReturnRows(rows)
		mock.ExpectQuery("SELECT sphere_id FROM asset_spheres").
			WithArgs("asset-2").
			WillReturnRows(sqlmock.NewRows([]string{"sphere_id"}))
		mock.ExpectQuery("SELECT project_id FROM asset_projects").
			WithArgs("asset-2").
			WillReturnRows(sqlmock.NewRows([]string{"project_id"}))

		a, err := repo.FindByID(ctx, "asset-2")

		require.NoError(t, err)
		assert.Nil(t, a.AuthorID)
		assert.True(t, a.DeletionMark.Marked)
		assert.Equal(t, "user-9", a.DeletionMark.MarkedBy)
		require.NotNil(t, a.DeletionMark.MarkedAt)
		assert.Equal(t, "obsolete", a.DeletionMark.Comment)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM assets WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		a, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, a)
	})
}

func TestAssetPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAssetPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	a := &model.Asset{
		ID:             "asset-1",
		Title:          "Pump B",
		ArchivePath:    "models/Pump_B/v1.0/model.zip",
		ArchiveVersion: "1.0",
		Screenshots:    []string{"models/Pump_B/v1.0/screenshots/a.png"},
		SphereIDs:      []string{"sphere-1"},
		ProjectIDs:     []string{"project-1", "project-2"},
		UpdatedAt:      now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE assets").
		WithArgs(a.ID, a.Title, a.Description, nil, a.ArchivePath, a.ArchiveVersion,
			[]byte(`["models/Pump_B/v1.0/screenshots/a.png"]`), false, nil, nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM asset_spheres").
		WithArgs(a.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM asset_projects").
		WithArgs(a.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO asset_spheres").
		WithArgs(a.ID, "sphere-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO asset_projects").
		WithArgs(a.ID, "project-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO asset_projects").
		WithArgs(a.ID, "project-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Update(ctx, a)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAssetPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	a := &model.Asset{
		ID:             "asset-1",
		Title:          "Pump A",
		AuthorID:       strPtr("user-1"),
		ArchivePath:    "models/Pump_A/v1.0/model.zip",
		ArchiveVersion: "1.0",
		SphereIDs:      []string{"sphere-1"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assets").
		WithArgs(a.ID, a.Title, a.Description, "user-1", a.ArchivePath, a.ArchiveVersion,
			[]byte(`[]`), false, nil, nil, nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO asset_spheres").
		WithArgs(a.ID, "sphere-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Create(ctx, a)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAssetPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM assets WHERE id = ?").
		WithArgs("asset-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "asset-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
