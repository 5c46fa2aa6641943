package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"craftopia/internal/model"
)

const adjustCountSQL = "UPDATE `categories` SET `decor_count`=GREATEST(decor_count + ?, 0) WHERE id = ?"

func newDecor(categoryID uuid.UUID) *model.Decor {
	return &model.Decor{
		ID:          uuid.New(),
		Name:        "Jute Rug",
		Slug:        "jute-rug",
		Description: "Braided jute rug, 120cm round",
		CategoryID:  categoryID,
		Price:       decimal.RequireFromString("89.00"),
		Stock:       2,
		Status:      model.DecorStatusActive,
		Materials:   []string{"jute"},
	}
}

func TestDecorRepository_CreateBumpsCategoryCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	decor := newDecor(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(exact("INSERT INTO `decors`")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(exact(adjustCountSQL)).WithArgs(1, decor.CategoryID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), decor))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_CreateRollsBackOnMissingCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(exact("INSERT INTO `decors`")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1452, Message: "foreign key constraint fails"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newDecor(uuid.New()))
	assert.True(t, errors.Is(err, gorm.ErrForeignKeyViolated), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_UpdateMovesCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	previous := uuid.New()
	decor := newDecor(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(exact("UPDATE `decors` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(exact(adjustCountSQL)).WithArgs(-1, previous).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(exact(adjustCountSQL)).WithArgs(1, decor.CategoryID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), decor, previous))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_UpdateSameCategoryLeavesCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	decor := newDecor(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(exact("UPDATE `decors` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), decor, decor.CategoryID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_UpdateRollsBackWhenCountFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	previous := uuid.New()
	decor := newDecor(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(exact("UPDATE `decors` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(exact(adjustCountSQL)).WithArgs(-1, previous).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	assert.Error(t, repo.Update(context.Background(), decor, previous))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_DeleteDecrementsCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	decor := newDecor(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(exact("DELETE FROM `decors` WHERE id = ?")).WithArgs(decor.ID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(exact(adjustCountSQL)).WithArgs(-1, decor.CategoryID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), decor))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_DeleteMissingRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	decor := newDecor(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(exact("DELETE FROM `decors` WHERE id = ?")).WithArgs(decor.ID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), decor)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_FindByIDPreloadsCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	id, categoryID := uuid.New(), uuid.New()

	mock.ExpectQuery(exact("SELECT * FROM `decors` WHERE id = ? ORDER BY `decors`.`id` LIMIT ?")).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_id", "price", "status"}).
			AddRow(id.String(), "Jute Rug", categoryID.String(), "89.00", "active"))
	mock.ExpectQuery(exact("SELECT * FROM `categories` WHERE `categories`.`id` = ?")).
		WithArgs(categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(categoryID.String(), "Textiles", "textiles"))

	decor, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "89", decor.Price.String())
	require.NotNil(t, decor.Category)
	assert.Equal(t, "Textiles", decor.Category.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_ListAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	categoryID := uuid.New()
	minPrice := decimal.NewFromInt(10)

	where := `WHERE .*name LIKE \? OR description LIKE \? OR slug LIKE \?.*` +
		`category_id = \?.*status IN \(\?\).*price >= \?.*stock > 0.*` +
		"JSON_CONTAINS\\(`materials`,JSON_ARRAY\\(\\?\\)\\).*" +
		"JSON_CONTAINS\\(`tags`,JSON_ARRAY\\(\\?\\)\\) OR JSON_CONTAINS\\(`tags`,JSON_ARRAY\\(\\?\\)\\)"
	pattern := `%50\%%`

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `decors` " + where).
		WithArgs(pattern, pattern, pattern, categoryID, "active", minPrice, "rattan", "boho", "jute").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))
	mock.ExpectQuery("SELECT \\* FROM `decors` " + where + ".*ORDER BY `price` LIMIT \\? OFFSET \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_id"}).
			AddRow(uuid.NewString(), "Boho Rattan Mat", categoryID.String()))
	mock.ExpectQuery(exact("SELECT * FROM `categories` WHERE `categories`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(categoryID.String(), "Textiles"))

	decors, total, err := repo.List(context.Background(), DecorFilter{
		Query:      "50%",
		CategoryID: &categoryID,
		Statuses:   []model.DecorStatus{model.DecorStatusActive},
		MinPrice:   &minPrice,
		InStock:    true,
		Materials:  []string{"rattan"},
		Tags:       []string{"boho", " ", "jute"},
		Sort:       Sort{Column: "price"},
		Page:       Page{Offset: 12, Limit: 12},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(13), total)
	require.Len(t, decors, 1)
	assert.Equal(t, "Textiles", decors[0].Category.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_UpdateStockMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE `decors` SET `status`=\\?,`stock`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs("out_of_stock", 0, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStock(context.Background(), id, 0, model.DecorStatusOutOfStock)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_IncrementViews(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)
	id := uuid.New()

	mock.ExpectExec(exact("UPDATE `decors` SET `view_count`=view_count + ? WHERE id = ?")).
		WithArgs(1, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementViews(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecorRepository_Stats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDecorRepository(db)

	mock.ExpectQuery(exact("SELECT status, COUNT(*) AS count FROM `decors` GROUP BY `status`")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("active", 3).
			AddRow("out_of_stock", 1))
	mock.ExpectQuery(exact("SELECT count(*) FROM `decors` WHERE is_featured = ?")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(exact("SELECT count(*) FROM `decors` WHERE stock > 0 AND stock <= ?")).
		WithArgs(LowStockThreshold).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(exact("SELECT SUM(price * stock) AS inventory_value, AVG(price) AS average_price FROM `decors`")).
		WillReturnRows(sqlmock.NewRows([]string{"inventory_value", "average_price"}).AddRow("1234.567", "45.678"))
	mock.ExpectQuery(exact("SELECT * FROM `decors` ORDER BY view_count DESC LIMIT ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "view_count"}).AddRow(uuid.NewString(), "Jute Rug", 40))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(3), stats.ByStatus[model.DecorStatusActive])
	assert.Equal(t, int64(2), stats.Featured)
	assert.Equal(t, int64(1), stats.LowStock)
	assert.Equal(t, "1234.57", stats.InventoryValue.String())
	assert.Equal(t, "45.68", stats.AveragePrice.String())
	require.Len(t, stats.TopViewed, 1)
	assert.Equal(t, 40, stats.TopViewed[0].ViewCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
