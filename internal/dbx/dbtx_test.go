package dbx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// exercise exercises the full DBTX surface through the interface.
func exercise(ctx context.Context, t *testing.T, h DBTX) {
	t.Helper()

	_, err := h.ExecContext(ctx, `UPDATE t SET v = 'ok'`)
	require.NoError(t, err)

	var v string
	require.NoError(t, h.QueryRowContext(ctx, `SELECT v FROM t`).Scan(&v))
	require.Equal(t, "ok", v)
}

func TestDBTX_SatisfiedByDBAndTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	rows := func() *sqlmock.Rows { return sqlmock.NewRows([]string{"v"}).AddRow("ok") }

	mock.ExpectExec(`UPDATE t`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT v FROM t`).WillReturnRows(rows())
	exercise(ctx, t, db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE t`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT v FROM t`).WillReturnRows(rows())
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	require.NoError(t, err)
	exercise(ctx, t, tx)
	require.NoError(t, tx.Commit())

	require.NoError(t, mock.ExpectationsWereMet())
}
