package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/query"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// fakeBuilder records clause calls and serves rows from memory.
type fakeBuilder[T any] struct {
	ops  []string
	rows []T
}

func (b *fakeBuilder[T]) record(op string, args ...any) {
	b.ops = append(b.ops, fmt.Sprint(append([]any{op}, args...)...))
}

func (b *fakeBuilder[T]) Where(f string, v any) { b.record("where ", f, "=", v) }
func (b *fakeBuilder[T]) WhereNull(f string) { b.record("whereNull ", f) }
func (b *fakeBuilder[T]) WhereNotIn(f string, v []string) { b.record("whereNotIn ", f, v) }
func (b *fakeBuilder[T]) WhereBetween(f string, v []string) { b.record("whereBetween ", f, v) }
func (b *fakeBuilder[T]) WhereLike(f, p string) { b.record("like ", f, " ", p) }
func (b *fakeBuilder[T]) WhereILike(f, p string) { b.record("ilike ", f, " ", p) }
func (b *fakeBuilder[T]) WhereHas(r string, _ func(query.Clauses)) { b.record("whereHas ", r) }
func (b *fakeBuilder[T]) Select(f []string) { b.record("select ", f) }
func (b *fakeBuilder[T]) OrderBy(f, d string) { b.record("order ", f, " ", d) }
func (b *fakeBuilder[T]) Preload(r string, _ func(query.Clauses)) { b.record("preload ", r) }

func (b *fakeBuilder[T]) Paginate(_ context.Context, page, limit int) (*query.Page[T], error) {
	return query.NewPage(b.rows, int64(len(b.rows)), page, limit), nil
}

func (b *fakeBuilder[T]) First(context.Context) (*T, error) {
	if len(b.rows) == 0 {
		return nil, query.ErrNotFound
	}
	return &b.rows[0], nil
}

func (b *fakeBuilder[T]) All(context.Context) ([]T, error) { return b.rows, nil }

// userResources is an in-memory ResourceStore for users.
type userResources struct {
	mu      sync.Mutex
	rows    map[int64]*model.User
	next    int64
	builder *fakeBuilder[model.User]
}

func newUserResources() *userResources {
	return &userResources{rows: map[int64]*model.User{}}
}

func (s *userResources) Query(context.Context) (query.Builder[model.User], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &fakeBuilder[model.User]{}
	for i := int64(1); i <= s.next; i++ {
		if u, ok := s.rows[i]; ok {
			b.rows = append(b.rows, *u)
		}
	}
	s.builder = b
	return b, nil
}

func (s *userResources) Create(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := u.BeforeSave(nil); err != nil {
		return nil, err
	}
	s.next++
	u.ID = s.next
	cp := *u
	s.rows[u.ID] = &cp
	return u, nil
}

func (s *userResources) Find(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("table:users:%w", query.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *userResources) Save(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := u.BeforeSave(nil); err != nil {
		return nil, err
	}
	cp := *u
	s.rows[u.ID] = &cp
	return u, nil
}

func (s *userResources) Delete(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("table:users:%w", query.ErrNotFound)
	}
	delete(s.rows, id)
	return u, nil
}

// users adapts userResources to UserStore.
type users struct{ *userResources }

func (s users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("table:users:%w", pgx.ErrNoRows)
}

func (s users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("table:users:%w", pgx.ErrNoRows)
	}
	return u, nil
}

func (s users) UpdatePassword(_ context.Context, id int64, hash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("table:users:%w", pgx.ErrNoRows)
	}
	u.Password = hash
	cp := *u
	return &cp, nil
}

type tokenStore struct {
	mu   sync.Mutex
	rows map[string]*model.AccessToken
	hits int
}

func newTokenStore() *tokenStore {
	return &tokenStore{rows: map[string]*model.AccessToken{}}
}

func (s *tokenStore) Create(_ context.Context, t *model.AccessToken) (*model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.rows) + 1)
	s.rows[t.Token] = t
	return t, nil
}

func (s *tokenStore) GetByToken(_ context.Context, token string) (*model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	t, ok := s.rows[token]
	if !ok {
		return nil, fmt.Errorf("table:api_tokens:%w", pgx.ErrNoRows)
	}
	return t, nil
}

func (s *tokenStore) DeleteByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, token)
	return nil
}

type memCache struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

type resetStore struct {
	mu   sync.Mutex
	rows map[string]*model.PasswordReset
	next int64
}

func newResetStore() *resetStore {
	return &resetStore{rows: map[string]*model.PasswordReset{}}
}

func (s *resetStore) Replace(_ context.Context, email, token string) (*model.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.rows {
		if r.Email == email {
			delete(s.rows, k)
		}
	}
	s.next++
	r := &model.PasswordReset{ID: s.next, Email: email, Token: token, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.rows[token] = r
	return r, nil
}

func (s *resetStore) GetByToken(_ context.Context, token string) (*model.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[token]
	if !ok {
		return nil, fmt.Errorf("table:password_resets:%w", pgx.ErrNoRows)
	}
	return r, nil
}

func (s *resetStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.rows {
		if r.ID == id {
			delete(s.rows, k)
		}
	}
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) Enqueue(_ context.Context, t *asynq.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, t)
	return nil
}
