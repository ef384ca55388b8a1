package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/pkg/domain"
	"github.com/ochen1/immich/pkg/sentinel"
)

// PostgresStore persists users in PostgreSQL.
//
// Uniqueness of email and of the admin flag is enforced by constraints
// (a unique index on lower(email) and a partial unique index on is_admin
// where is_admin), so concurrent admin creation resolves in the database
// rather than in the service's check-then-create.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, first_name, last_name, is_admin, oauth_id, should_change_password, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, fmt.Errorf("user is required")
	}

	id := uuid.UUID(user.ID)
	if user.ID.IsNil() {
		id = uuid.New()
	}
	now := time.Now()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_admin, oauth_id, should_change_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING `+userColumns,
		id, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.IsAdmin, user.OAuthID, user.ShouldChangePassword, now,
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID domain.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string, withPassword bool) (*models.User, error) {
	if withPassword {
		row := s.db.QueryRowContext(ctx,
			`SELECT `+userColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`, email)
		user, err := scanUserWithPassword(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
			}
			return nil, fmt.Errorf("find user by email: %w", err)
		}
		return user, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindByOAuthID(ctx context.Context, oauthID string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE oauth_id = $1 AND oauth_id <> ''`, oauthID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by oauth id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindAdmin(ctx context.Context) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_admin LIMIT 1`)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, fmt.Errorf("user is required")
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			email = COALESCE(NULLIF($2, ''), email),
			password_hash = COALESCE(NULLIF($3, ''), password_hash),
			first_name = COALESCE(NULLIF($4, ''), first_name),
			last_name = COALESCE(NULLIF($5, ''), last_name),
			oauth_id = $6,
			should_change_password = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		uuid.UUID(user.ID), user.Email, user.PasswordHash, user.FirstName,
		user.LastName, user.OAuthID, user.ShouldChangePassword,
	)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		id   uuid.UUID
		user models.User
	)
	err := row.Scan(&id, &user.Email, &user.FirstName, &user.LastName,
		&user.IsAdmin, &user.OAuthID, &user.ShouldChangePassword,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.ID = domain.UserID(id)
	return &user, nil
}

func scanUserWithPassword(row rowScanner) (*models.User, error) {
	var (
		id   uuid.UUID
		user models.User
	)
	err := row.Scan(&id, &user.Email, &user.FirstName, &user.LastName,
		&user.IsAdmin, &user.OAuthID, &user.ShouldChangePassword,
		&user.CreatedAt, &user.UpdatedAt, &user.PasswordHash)
	if err != nil {
		return nil, err
	}
	user.ID = domain.UserID(id)
	return &user, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
