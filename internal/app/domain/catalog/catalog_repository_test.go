package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func repoFixture(t *testing.T) (*PostgresCatalogRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewCatalogRepository(mock, zap.NewNop()), mock
}

func TestFirstNOrdersByTitle(t *testing.T) {
	repo, mock := repoFixture(t)
	cityID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM activity_catalog ORDER BY title LIMIT`).
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "category", "avg_cost", "duration_minutes", "city_id"}).
			AddRow(uuid.New(), "Alfama Walking Tour", "culture", 1500, (*int)(nil), &cityID).
			AddRow(uuid.New(), "Tram 28 Ride", "sightseeing", 300, (*int)(nil), &cityID))

	entries, err := repo.FirstN(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alfama Walking Tour", entries[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Cities created on the fly for user stops must not surface here; only
// cities backing at least one catalog activity feed the default route.
func TestDistinctCitiesJoinsThroughCatalog(t *testing.T) {
	repo, mock := repoFixture(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT DISTINCT .+ FROM cities c\s+JOIN activity_catalog ac ON ac\.city_id = c\.id\s+ORDER BY c\.name LIMIT`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "country", "region", "cost_index", "popularity"}).
			AddRow(id, "Lisbon", "Portugal", "", (*int)(nil), (*int)(nil)))

	cities, err := repo.DistinctCities(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "Lisbon", cities[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
