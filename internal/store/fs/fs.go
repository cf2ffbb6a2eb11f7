// Package fs implementa repository.UserRepository sobre un archivo JSON
// (db.json) con forma {"users":[...]} .
//
// El archivo se relee en cada operación, así que ediciones externas se ven sin
// reiniciar. Las escrituras hacen read-modify-write bajo un mutex del proceso
// y se publican con atomicwrite. Otras colecciones del documento y campos
// desconocidos de cada usuario se conservan tal cual.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/security/password"
	"github.com/dropDatabas3/aestheticops/internal/util/atomicwrite"
)

const usersKey = "users"

type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("fs store: %w: empty path", repository.ErrInvalidInput)
	}
	return &Store{path: path}, nil
}

// Path devuelve la ruta del archivo respaldado.
func (s *Store) Path() string { return s.path }

// ─── documento ───

type document struct {
	rest  map[string]json.RawMessage
	users []record
}

type record struct {
	user  repository.User
	extra map[string]json.RawMessage
}

// Campos conocidos de un usuario en el archivo.
var knownFields = []string{
	"id", "name", "email", "password", "passwordScheme",
	"role", "clinicName", "phone", "createdAt", "subscription",
}

func (s *Store) load() (*document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{rest: map[string]json.RawMessage{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fs store: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &document{rest: map[string]json.RawMessage{}}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("fs store: %w: %v", repository.ErrCorrupt, err)
	}
	doc := &document{rest: top}
	usersRaw, ok := top[usersKey]
	delete(top, usersKey)
	if !ok || string(usersRaw) == "null" {
		return doc, nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(usersRaw, &items); err != nil {
		return nil, fmt.Errorf("fs store: %w: users: %v", repository.ErrCorrupt, err)
	}
	doc.users = make([]record, 0, len(items))
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("fs store: %w: users[%d]: %v", repository.ErrCorrupt, i, err)
		}
		doc.users = append(doc.users, rec)
	}
	return doc, nil
}

func (s *Store) flush(doc *document) error {
	out := make(map[string]any, len(doc.rest)+1)
	for k, v := range doc.rest {
		out[k] = v
	}
	users := make([]map[string]json.RawMessage, 0, len(doc.users))
	for _, rec := range doc.users {
		m, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		users = append(users, m)
	}
	out[usersKey] = users

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("fs store: encode: %w", err)
	}
	if err := atomicwrite.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("fs store: %w", err)
	}
	return nil
}

func decodeRecord(item map[string]json.RawMessage) (record, error) {
	var (
		u   repository.User
		err error
	)
	if u.ID, err = decodeID(item["id"]); err != nil {
		return record{}, err
	}
	str := func(key string) (string, error) {
		v, ok := item[key]
		if !ok || string(v) == "null" {
			return "", nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("%s: %v", key, err)
		}
		return s, nil
	}

	var email, pw, scheme, created string
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"email", &email}, {"name", &u.Name}, {"phone", &u.Phone},
		{"password", &pw}, {"passwordScheme", &scheme},
		{"role", &u.Role}, {"clinicName", &u.ClinicName}, {"createdAt", &created},
	} {
		if *f.dst, err = str(f.key); err != nil {
			return record{}, err
		}
	}
	u.Email = repository.NormalizeEmail(email)
	u.Password = password.Decode(scheme, pw)
	if created != "" {
		if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			u.CreatedAt = t
		}
	}
	if v, ok := item["subscription"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &u.Subscription); err != nil {
			return record{}, fmt.Errorf("subscription: %v", err)
		}
	}

	extra := make(map[string]json.RawMessage)
	for k, v := range item {
		extra[k] = v
	}
	for _, k := range knownFields {
		delete(extra, k)
	}
	return record{user: u, extra: extra}, nil
}

func encodeRecord(rec record) (map[string]json.RawMessage, error) {
	u := rec.user
	m := make(map[string]json.RawMessage, len(rec.extra)+len(knownFields))
	for k, v := range rec.extra {
		m[k] = v
	}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("fs store: encode %s: %w", key, err)
		}
		m[key] = b
		return nil
	}

	fields := []struct {
		key string
		val any
	}{
		{"id", encodeID(u.ID)},
		{"name", u.Name},
		{"email", u.Email},
		{"password", u.Password.Value},
		{"passwordScheme", string(u.Password.Scheme)},
		{"role", u.Role},
		{"clinicName", u.ClinicName},
		{"phone", u.Phone},
		{"subscription", u.Subscription},
	}
	if !u.CreatedAt.IsZero() {
		fields = append(fields, struct {
			key string
			val any
		}{"createdAt", u.CreatedAt.UTC().Format(time.RFC3339Nano)})
	}
	for _, f := range fields {
		if err := put(f.key, f.val); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// decodeID acepta ids numéricos (registros legacy) o string.
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing id")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id: %v", err)
	}
	return n.String(), nil
}

// encodeID escribe como número los ids que eran numéricos para no cambiar el
// tipo del campo en archivos existentes.
func encodeID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return json.Number(id)
	}
	return id
}

func (d *document) indexByEmail(email string) int {
	for i := range d.users {
		if d.users[i].user.Email == email {
			return i
		}
	}
	return -1
}

func (d *document) indexByID(id string) int {
	for i := range d.users {
		if d.users[i].user.ID == id {
			return i
		}
	}
	return -1
}

// ─── UserRepository ───

func (s *Store) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	i := doc.indexByEmail(repository.NormalizeEmail(email))
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	return doc.users[i].user.Clone(), nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	i := doc.indexByID(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	return doc.users[i].user.Clone(), nil
}

func (s *Store) Create(ctx context.Context, u *repository.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u == nil || u.ID == "" {
		return repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	c := u.Clone()
	c.Email = repository.NormalizeEmail(c.Email)
	if doc.indexByEmail(c.Email) >= 0 || doc.indexByID(c.ID) >= 0 {
		return repository.ErrConflict
	}
	doc.users = append(doc.users, record{user: *c})
	return s.flush(doc)
}

func (s *Store) Save(ctx context.Context, u *repository.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u == nil {
		return repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	i := doc.indexByID(u.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	c := u.Clone()
	c.Email = repository.NormalizeEmail(c.Email)
	if j := doc.indexByEmail(c.Email); j >= 0 && j != i {
		return repository.ErrConflict
	}
	doc.users[i].user = *c
	return s.flush(doc)
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p repository.ProfilePatch) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	i := doc.indexByID(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	p.Apply(&doc.users[i].user)
	if err := s.flush(doc); err != nil {
		return nil, err
	}
	return doc.users[i].user.Clone(), nil
}

func (s *Store) List(ctx context.Context) ([]repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]repository.User, 0, len(doc.users))
	for _, rec := range doc.users {
		out = append(out, *rec.user.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Ping valida que el archivo exista y sea legible (o que aún no exista).
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

func (s *Store) Close() error { return nil }
