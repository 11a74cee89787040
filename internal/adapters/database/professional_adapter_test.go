package database_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/carematch-backend/internal/adapters/database"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
)

func TestProfessionalAdapter_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewProfessionalAdapter(postgres.NewClientWithDB(db))

	mock.ExpectQuery("SELECT id, display_name, active, years_experience(.|\n)+FROM professionals").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "active", "years_experience"}).
			AddRow("pro-1", "Dana Morel", true, 8.5).
			AddRow("pro-2", "Sam Leduc", true, nil))

	mock.ExpectQuery("FROM professional_professions").
		WillReturnRows(sqlmock.NewRows([]string{"professional_id", "title_key", "category_key", "is_primary"}).
			AddRow("pro-1", "psychologist", "clinical", true).
			AddRow("pro-2", "coach", "wellness", true).
			AddRow("pro-2", "naturopath", "wellness", false))

	mock.ExpectQuery("FROM professional_specialties").
		WillReturnRows(sqlmock.NewRows([]string{"professional_id", "code", "category", "proficiency"}).
			AddRow("pro-1", "adults", "clientele", "primary").
			AddRow("pro-1", "anxiety", "clinical", "secondary"))

	mock.ExpectQuery("FROM professional_motifs").
		WillReturnRows(sqlmock.NewRows([]string{"professional_id", "motif_key"}).
			AddRow("pro-1", "anxiety").
			AddRow("pro-1", "stress"))

	pool, err := adapter.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, pool, 2)

	first := pool[0]
	assert.Equal(t, "pro-1", first.ID)
	require.NotNil(t, first.YearsExperience)
	assert.InDelta(t, 8.5, *first.YearsExperience, 0.001)
	require.Len(t, first.Professions, 1)
	assert.True(t, first.Professions[0].IsPrimary)
	require.Len(t, first.Specialties, 2)
	assert.Equal(t, "adults", first.Specialties[0].Code)
	assert.Equal(t, []string{"anxiety", "stress"}, first.MotifKeys)

	second := pool[1]
	assert.Nil(t, second.YearsExperience)
	assert.Len(t, second.Professions, 2)
	assert.Empty(t, second.Specialties)
	assert.Empty(t, second.MotifKeys)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessionalAdapter_ListActive_EmptyPool(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewProfessionalAdapter(postgres.NewClientWithDB(db))

	mock.ExpectQuery("FROM professionals").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "active", "years_experience"}))

	pool, err := adapter.ListActive(context.Background())

	require.NoError(t, err)
	assert.Empty(t, pool)
	assert.NoError(t, mock.ExpectationsWereMet())
}
