package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PostgresBackend_ReadRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM permit_store WHERE key = \$1`).
		WithArgs("visit-permit-requests").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":"1"}]`)))

	backend := &PostgresBackend{DB: db, Table: "permit_store", Key: "visit-permit-requests", Logger: logrus.New()}
	data, err := backend.Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PostgresBackend_ReadNoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM permit_store`).
		WithArgs("visit-permit-requests").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	backend := &PostgresBackend{DB: db, Table: "permit_store", Key: "visit-permit-requests", Logger: logrus.New()}
	data, err := backend.Read(context.Background())

	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PostgresBackend_WriteUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO permit_store .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("visit-permit-requests", `[{"id":"1"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	backend := &PostgresBackend{DB: db, Table: "permit_store", Key: "visit-permit-requests", Logger: logrus.New()}
	err = backend.Write(context.Background(), []byte(`[{"id":"1"}]`))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PostgresBackend_WriteFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO permit_store`).WillReturnError(errors.New("connection reset"))

	backend := &PostgresBackend{DB: db, Table: "permit_store", Key: "visit-permit-requests", Logger: logrus.New()}
	err = backend.Write(context.Background(), []byte(`[]`))

	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PostgresBackend_Check(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("no route to host"))

	backend := &PostgresBackend{DB: db, Table: "permit_store", Key: "visit-permit-requests", Logger: logrus.New()}

	assert.NoError(t, backend.Check(context.Background()))
	assert.ErrorIs(t, backend.Check(context.Background()), ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.ErrorIs(t, (&PostgresBackend{}).Check(context.Background()), ErrUnavailable)
}
