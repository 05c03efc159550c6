package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iMallco/iMall/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS users (
		id               VARCHAR(36)  NOT NULL PRIMARY KEY,
		name             VARCHAR(255) NOT NULL,
		email            VARCHAR(320) NOT NULL,
		email_normalized VARCHAR(320) NOT NULL,
		password_hash    VARCHAR(255) NOT NULL,
		user_type        VARCHAR(16)  NULL,
		created_at       DATETIME(6)  NOT NULL,
		updated_at       DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_email_normalized (email_normalized)
	)`

const selectUserColumns = `SELECT id, name, email, password_hash, user_type, created_at, updated_at FROM users`

// UserRepository is a MySQL-backed UserStore.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// EnsureSchema creates the users table if it does not exist yet.
func (r *UserRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaQuery)
	return err
}

// Create inserts a new user. The unique index on email_normalized makes this
// an atomic insert-if-absent.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, email_normalized, password_hash, user_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id := newUserID()
	now := r.now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		id, user.Name, user.Email, normalizeEmail(user.Email), user.PasswordHash,
		nullableUserType(user.UserType), now, now,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// FindByEmail retrieves a user by email address, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.queryOne(ctx, selectUserColumns+` WHERE email_normalized = ?`, normalizeEmail(email))
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.queryOne(ctx, selectUserColumns+` WHERE id = ?`, id)
}

// Update changes the non-nil fields of upd and bumps updated_at.
func (r *UserRepository) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	query := `UPDATE users SET name = COALESCE(?, name), user_type = COALESCE(?, user_type), updated_at = ? WHERE id = ?`

	var name, userType sql.NullString
	if upd.Name != nil {
		name = sql.NullString{String: *upd.Name, Valid: true}
	}
	if upd.UserType != nil {
		userType = nullableUserType(*upd.UserType)
	}

	result, err := r.db.ExecContext(ctx, query, name, userType, r.now().UTC(), id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepository) queryOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	var userType sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &userType, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.UserType = model.UserType(userType.String)
	return user, nil
}

func nullableUserType(t model.UserType) sql.NullString {
	return sql.NullString{String: string(t), Valid: t != ""}
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
