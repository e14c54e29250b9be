package repository

import (
	"context"
	"regexp"
	"testing"

	"vesti/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_ListTrending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	// id 2 outranks id 1 on the blended weighting even with fewer likes,
	// because comments weigh 1.5 each.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand", "name", "like_count", "comment_count", "view_count"}).
			AddRow(1, "atelier9", "boxy blazer", 4, 0, 10).
			AddRow(2, "atelier9", "wrap skirt", 2, 5, 0).
			AddRow(3, "loft.wear", "linen set", 0, 0, 5))

	products, err := repo.ListTrending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, uint(2), products[0].ID)
	assert.Equal(t, uint(1), products[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_IncrementEngagement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.IncrementEngagement(ctx, 1, "like_count")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Counter", func(t *testing.T) {
		err := repo.IncrementEngagement(ctx, 1, "price_cents")
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Missing Product", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.IncrementEngagement(ctx, 99, "view_count")
		assert.True(t, models.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
