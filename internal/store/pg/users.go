package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	migrations "github.com/dropDatabas3/aestheticops/migrations/postgres"
)

const userColumns = `id, email, name, phone, password, password_scheme, role, clinic_name, subscription, created_at`

// UserStore implementa repository.UserRepository sobre Postgres.
type UserStore struct{ pool *pgxpool.Pool }

type Options struct {
	MaxConns int
}

// New abre el pool, verifica la conexión y asegura la tabla app_user.
func New(ctx context.Context, dsn string, opts Options) (*UserStore, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = int32(opts.MaxConns)
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}
	pcfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &UserStore{pool: pool}, nil
}

// ensureSchema aplica el DDL embebido. Cada archivo es idempotente.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := migrations.Files()
	if err != nil {
		return fmt.Errorf("pg: list schema files: %w", err)
	}
	for _, name := range names {
		ddl, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("pg: read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("pg: apply %s: %w", name, err)
		}
	}
	return nil
}

// Stats devuelve un snapshot del pool (para /readyz).
func (s *UserStore) Stats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE lower(email) = $1`,
		repository.NormalizeEmail(email))
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*repository.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) Create(ctx context.Context, u *repository.User) error {
	if u == nil || u.ID == "" {
		return repository.ErrInvalidInput
	}
	sub, err := json.Marshal(u.Subscription)
	if err != nil {
		return err
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO app_user (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, repository.NormalizeEmail(u.Email), u.Name, u.Phone,
		u.Password.Value, string(u.Password.Scheme), u.Role, u.ClinicName, sub, created)
	return mapErr(err)
}

func (s *UserStore) Save(ctx context.Context, u *repository.User) error {
	if u == nil {
		return repository.ErrInvalidInput
	}
	sub, err := json.Marshal(u.Subscription)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE app_user
		   SET email = $2, name = $3, phone = $4, password = $5, password_scheme = $6,
		       role = $7, clinic_name = $8, subscription = $9
		 WHERE id = $1`,
		u.ID, repository.NormalizeEmail(u.Email), u.Name, u.Phone,
		u.Password.Value, string(u.Password.Scheme), u.Role, u.ClinicName, sub)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateProfile usa COALESCE para que los campos nil conserven su valor; el
// credential no aparece en el UPDATE.
func (s *UserStore) UpdateProfile(ctx context.Context, id string, p repository.ProfilePatch) (*repository.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE app_user
		   SET name = COALESCE($2, name),
		       phone = COALESCE($3, phone),
		       clinic_name = COALESCE($4, clinic_name)
		 WHERE id = $1
		RETURNING `+userColumns,
		id, p.Name, p.Phone, p.ClinicName)
	return scanUser(row)
}

func (s *UserStore) List(ctx context.Context) ([]repository.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM app_user ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *UserStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *UserStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var (
		u          repository.User
		pw, scheme string
		subRaw     []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &pw, &scheme,
		&u.Role, &u.ClinicName, &subRaw, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Password = password.Decode(scheme, pw)
	if len(subRaw) > 0 {
		if err := json.Unmarshal(subRaw, &u.Subscription); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", repository.ErrCorrupt, err)
		}
	}
	return &u, nil
}

// mapErr traduce unique_violation a ErrConflict.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrConflict
	}
	return err
}
