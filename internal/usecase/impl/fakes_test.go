package impl

import (
	"context"
	"strconv"
	"sync"
	"time"

	"sharp/internal/domain/entity"
	domainerrors "sharp/internal/domain/errors"
	"sharp/internal/domain/repository"
)

// memStore is a transactional in-memory stand-in for the SQL store. Writes
// inside Execute land in a staging area that is merged on success and
// discarded on error, mirroring real rollback behavior.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*entity.User    // keyed by email
	sessions map[string]*entity.Session // keyed by token
	nextID   int64

	findUserErr       error
	findSessionErr    error
	createSessionErrs []error // popped per Create call, nil means success
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*entity.User),
		sessions: make(map[string]*entity.Session),
		nextID:   1,
	}
}

func (s *memStore) allocID() int64 {
	id := s.nextID
	s.nextID++

	return id
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.users)
}

func (s *memStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *memStore) seedUser(email, passwordHash string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &entity.User{
		ID:           s.allocID(),
		Email:        entity.NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.Email] = user

	return user
}

func (s *memStore) seedSession(userID int64, token string, createdAt time.Time) *entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &entity.Session{ID: s.allocID(), UserID: userID, Token: token, CreatedAt: createdAt}
	s.sessions[token] = session

	return session
}

// --- direct (non-transactional) repositories ---

type memUserRepo struct {
	store   *memStore
	staging map[string]*entity.User // nil outside a transaction
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	email := entity.NormalizeEmail(user.Email)
	if _, ok := r.store.users[email]; ok {
		return domainerrors.ErrEmailTaken
	}
	if r.staging != nil {
		if _, ok := r.staging[email]; ok {
			return domainerrors.ErrEmailTaken
		}
	}

	user.ID = r.store.allocID()
	user.Email = email
	user.CreatedAt = time.Now()

	stored := *user
	if r.staging != nil {
		r.staging[email] = &stored
	} else {
		r.store.users[email] = &stored
	}

	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.findUserErr != nil {
		return nil, r.store.findUserErr
	}

	user, ok := r.store.users[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	found := *user

	return &found, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.ID == id {
			found := *user

			return &found, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

type memSessionRepo struct {
	store   *memStore
	staging map[string]*entity.Session
}

func (r *memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if len(r.store.createSessionErrs) > 0 {
		err := r.store.createSessionErrs[0]
		r.store.createSessionErrs = r.store.createSessionErrs[1:]
		if err != nil {
			return err
		}
	}

	if _, ok := r.store.sessions[session.Token]; ok {
		return repository.ErrTokenConflict
	}
	if r.staging != nil {
		if _, ok := r.staging[session.Token]; ok {
			return repository.ErrTokenConflict
		}
	}

	session.ID = r.store.allocID()
	session.CreatedAt = time.Now()

	stored := *session
	if r.staging != nil {
		r.staging[session.Token] = &stored
	} else {
		r.store.sessions[session.Token] = &stored
	}

	return nil
}

func (r *memSessionRepo) FindByToken(_ context.Context, token string) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.findSessionErr != nil {
		return nil, r.store.findSessionErr
	}

	session, ok := r.store.sessions[token]
	if !ok || session.ExpiredAt(time.Now()) {
		return nil, repository.ErrSessionNotFound
	}
	found := *session

	return &found, nil
}

func (r *memSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, token)

	return nil
}

// --- transaction manager ---

type memTxManager struct {
	store *memStore
}

type memRepoFactory struct {
	userRepo    *memUserRepo
	sessionRepo *memSessionRepo
}

func (f *memRepoFactory) UserRepo() repository.UserRepository       { return f.userRepo }
func (f *memRepoFactory) SessionRepo() repository.SessionRepository { return f.sessionRepo }

func (tm *memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	factory := &memRepoFactory{
		userRepo:    &memUserRepo{store: tm.store, staging: make(map[string]*entity.User)},
		sessionRepo: &memSessionRepo{store: tm.store, staging: make(map[string]*entity.Session)},
	}

	if err := fn(factory); err != nil {
		return err
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()
	for email, user := range factory.userRepo.staging {
		tm.store.users[email] = user
	}
	for token, session := range factory.sessionRepo.staging {
		tm.store.sessions[token] = session
	}

	return nil
}

// --- hasher and token source fakes ---

// fakeHasher is a transparent hasher so tests can assert on stored values
// without paying argon2 cost. DummyCheck calls are counted to verify the
// unknown-email path equalizes work.
type fakeHasher struct {
	mu          sync.Mutex
	hashErr     error
	checkErr    error
	dummyChecks int
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, encodedHash string) (bool, error) {
	if h.checkErr != nil {
		return false, h.checkErr
	}

	return encodedHash == "hashed:"+password, nil
}

func (h *fakeHasher) DummyCheck(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dummyChecks++
}

func (h *fakeHasher) dummyCheckCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.dummyChecks
}

// fakeTokenSource hands out deterministic sequential tokens.
type fakeTokenSource struct {
	mu     sync.Mutex
	nextN  int
	tokens []string // when set, popped in order before falling back to sequence
	err    error
}

func (ts *fakeTokenSource) NewToken() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.err != nil {
		return "", ts.err
	}
	if len(ts.tokens) > 0 {
		token := ts.tokens[0]
		ts.tokens = ts.tokens[1:]

		return token, nil
	}

	ts.nextN++

	return "token-" + strconv.Itoa(ts.nextN), nil
}
