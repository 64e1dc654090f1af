package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"contentbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRepo_CreateBackup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBackupRepo(db)
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	data := []byte(`{"GLOBAL_DATA":{}}`)

	mock.ExpectQuery("INSERT INTO content_backups").
		WithArgs("content_backup_x.json", string(data), len(data)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

	b, err := repo.CreateBackup(context.Background(), "content_backup_x.json", data)

	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, created, b.CreatedAt)
	assert.Equal(t, len(data), b.Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackupRepo_ListBackups(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBackupRepo(db)
	newer := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery("SELECT id, filename, size, created_at FROM content_backups").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "size", "created_at"}).
			AddRow(2, "b.json", 20, newer).
			AddRow(1, "a.json", 10, older))

	backups, err := repo.ListBackups(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "b.json", backups[0].Filename)
	assert.Equal(t, "a.json", backups[1].Filename)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackupRepo_LoadBackup(t *testing.T) {
	tests := []struct {
		name        string
		version     int
		setup       func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name:    "newest",
			version: 1,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, filename, data, size, created_at FROM content_backups").
					WithArgs(0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "data", "size", "created_at"}).
						AddRow(3, "c.json", `{"a":1}`, 7, time.Now()))
			},
		},
		{
			name:    "exhausted index",
			version: 5,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, filename, data, size, created_at FROM content_backups").
					WithArgs(4).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: domain.ErrBackupNotFound,
		},
		{
			name:        "invalid version",
			version:     0,
			setup:       func(mock sqlmock.Sqlmock) {},
			expectedErr: domain.ErrInvalidVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)
			repo := NewBackupRepo(db)

			b, err := repo.LoadBackup(context.Background(), tt.version)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, b)
			} else {
				require.NoError(t, err)
				assert.Equal(t, []byte(`{"a":1}`), b.Data)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBackupRepo_GetBackup(t *testing.T) {
	tests := []struct {
		name        string
		id          int64
		setup       func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "found",
			id:   3,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, filename, data, size, created_at FROM content_backups WHERE id").
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "data", "size", "created_at"}).
						AddRow(3, "c.json", `{"a":1}`, 7, time.Now()))
			},
		},
		{
			name: "missing",
			id:   9,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, filename, data, size, created_at FROM content_backups WHERE id").
					WithArgs(int64(9)).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: domain.ErrBackupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			b, err := NewBackupRepo(db).GetBackup(context.Background(), tt.id)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, b)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(3), b.ID)
				assert.Equal(t, []byte(`{"a":1}`), b.Data)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBackupRepo_CountBackups(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := NewBackupRepo(db).CountBackups(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
