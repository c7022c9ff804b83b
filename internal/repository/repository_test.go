package repository

import (
	"context"
	"testing"
	"time"

	"clinic-management/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, _ := newMockDB(t)
	return db.Session(&gorm.Session{DryRun: true})
}

func TestApplyDateRange(t *testing.T) {
	db := newDryRunDB(t)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	stmt := applyDateRange(db.Model(&entity.Payment{}), "date", entity.DateRange{From: from, To: to}).
		Find(&[]entity.Payment{}).Statement

	assert.Contains(t, stmt.SQL.String(), "date >= $1")
	assert.Contains(t, stmt.SQL.String(), "date < $2")
	require.Len(t, stmt.Vars, 2)
	assert.Equal(t, from, stmt.Vars[0])
	assert.Equal(t, to.AddDate(0, 0, 1), stmt.Vars[1], "the end day is included")

	open := applyDateRange(db.Model(&entity.Payment{}), "date", entity.DateRange{}).
		Find(&[]entity.Payment{}).Statement
	assert.NotContains(t, open.SQL.String(), "WHERE")
}

func TestAppointmentFindByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "serial_number", "total_amount", "paid_amount", "balance", "payments"}).
			AddRow(id.String(), "APT-MGUK6BK01", "1000.00", "400.00", "600.00", `[{"payment_id":"`+uuid.NewString()+`","amount":"400"}]`))

	appointment, err := repo.FindByIDForUpdate(context.Background(), db, id)
	require.NoError(t, err)
	require.NotNil(t, appointment)
	assert.Equal(t, "APT-MGUK6BK01", appointment.SerialNumber)
	assert.Equal(t, "600", appointment.Balance.String())
	assert.Len(t, appointment.Payments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentFindByIDMissingReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	appointment, err := repo.FindByID(context.Background(), db, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, appointment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateStatusTouchesOnlyStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	id := uuid.New()

	mock.ExpectExec(`UPDATE "appointments" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(entity.AppointmentStatusCompleted, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateStatus(context.Background(), db, id, entity.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentDetachAppointment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository()
	appointmentID := uuid.New()

	mock.ExpectExec(`UPDATE "payments" SET .*"appointment_id"=\$1.* WHERE appointment_id = \$`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	rows, err := repo.DetachAppointment(context.Background(), db, appointmentID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentDeleteReportsRowsAffected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository()

	mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.Delete(context.Background(), db, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserTouchLastLoginSkipsUpdatedAt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository()
	id := uuid.New()
	at := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "users" SET "last_login_at"=\$1 WHERE id = \$2`).
		WithArgs(at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastLogin(context.Background(), db, id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleFindAllOrdersByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleRepository()

	mock.ExpectQuery(`SELECT \* FROM "roles" ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_name", "description"}).
			AddRow(1, "admin", "Full access").
			AddRow(2, "doctor", ""))

	roles, err := repo.FindAll(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].RoleName)
	assert.Equal(t, "doctor", roles[1].RoleName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
