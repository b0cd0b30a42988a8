package warehouse

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "viewdeploy/pkg/errors"
)

var ordersRef = ViewRef{Project: "ANALYTICS", Dataset: "SALES", Name: "daily_orders"}

func newMockSnowflake(t *testing.T) (*Snowflake, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSnowflake(db), mock
}

func TestSnowflakeDeleteView(t *testing.T) {
	sf, mock := newMockSnowflake(t)

	mock.ExpectExec(regexp.QuoteMeta("DROP VIEW ANALYTICS.SALES.daily_orders")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, sf.DeleteView(context.Background(), ordersRef))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnowflakeDeleteMissingView(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "snowflake error number",
			err:  &gosnowflake.SnowflakeError{Number: objectDoesNotExist, Message: "Object not found"},
		},
		{
			name: "message match",
			err:  errors.New("SQL compilation error: View 'DAILY_ORDERS' does not exist or not authorized."),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf, mock := newMockSnowflake(t)
			mock.ExpectExec("DROP VIEW").WillReturnError(tt.err)

			err := sf.DeleteView(context.Background(), ordersRef)
			assert.ErrorIs(t, err, ErrViewNotFound)
		})
	}
}

func TestSnowflakeDeleteOtherError(t *testing.T) {
	sf, mock := newMockSnowflake(t)
	mock.ExpectExec("DROP VIEW").WillReturnError(errors.New("insufficient privileges"))

	err := sf.DeleteView(context.Background(), ordersRef)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrViewNotFound)
	assert.Equal(t, apperrors.ErrCodeSQLExecution, apperrors.GetErrorCode(err))
}

func TestSnowflakeCreateView(t *testing.T) {
	sf, mock := newMockSnowflake(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE VIEW ANALYTICS.SALES.daily_orders COMMENT = 'Orders per day, it\\'s daily' AS\nSELECT 1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := sf.CreateView(context.Background(), ordersRef, ViewSpec{
		Query:       "SELECT 1",
		Description: "Orders per day, it's daily",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnowflakeCreateViewFailure(t *testing.T) {
	sf, mock := newMockSnowflake(t)
	mock.ExpectExec("CREATE VIEW").WillReturnError(errors.New("syntax error line 1"))

	err := sf.CreateView(context.Background(), ordersRef, ViewSpec{Query: "SELEC 1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSQLExecution, apperrors.GetErrorCode(err))
}

func TestSnowflakeUpdateSchema(t *testing.T) {
	sf, mock := newMockSnowflake(t)

	mock.ExpectExec(regexp.QuoteMeta("ALTER VIEW ANALYTICS.SALES.daily_orders MODIFY COLUMN order_id COMMENT 'Order identifier'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER VIEW ANALYTICS.SALES.daily_orders MODIFY COLUMN amount COMMENT 'Order amount'")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := sf.UpdateSchema(context.Background(), ordersRef, []Field{
		{Name: "order_id", Type: "STRING", Mode: ModeRequired, Description: "Order identifier"},
		{Name: "amount", Type: "NUMERIC", Mode: ModeNullable, Description: "Order amount"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnowflakeUpdateSchemaFailure(t *testing.T) {
	sf, mock := newMockSnowflake(t)
	mock.ExpectExec("ALTER VIEW").WillReturnError(errors.New("invalid identifier 'ORDER_ID'"))

	err := sf.UpdateSchema(context.Background(), ordersRef, []Field{{Name: "order_id"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSchemaUpdate, apperrors.GetErrorCode(err))
}

func TestSnowflakeRejectsInvalidIdentifiers(t *testing.T) {
	sf, mock := newMockSnowflake(t)
	ctx := context.Background()

	bad := ViewRef{Project: "ANALYTICS", Dataset: "SALES; DROP TABLE x", Name: "v"}
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetErrorCode(sf.DeleteView(ctx, bad)))
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetErrorCode(sf.CreateView(ctx, bad, ViewSpec{})))

	err := sf.UpdateSchema(ctx, ordersRef, []Field{{Name: "amount desc"}})
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetErrorCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `it\'s`, quote("it's"))
	assert.Equal(t, `a\\b`, quote(`a\b`))
}
