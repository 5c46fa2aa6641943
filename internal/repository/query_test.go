package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"craftopia/internal/model"
)

// newMockDB opens gorm over a sqlmock connection with the MySQL dialect.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func exact(s string) string {
	return regexp.QuoteMeta(s)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%lamp%`, containsPattern("lamp"))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestPaginate_EmptyResultSkipsSelect(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(exact("SELECT count(*) FROM `categories`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	var categories []model.Category
	total, err := paginate(db.Model(&model.Category{}), Sort{Column: "name"}, Page{Limit: 10}, &categories)
	require.NoError(t, err)

	assert.Zero(t, total)
	assert.Empty(t, categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}
