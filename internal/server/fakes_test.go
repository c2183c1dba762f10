package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/config"
	"github.com/jonathan/cv-importer/internal/db"
	"github.com/jonathan/cv-importer/internal/importer"
	"github.com/stretchr/testify/require"
)

const profileText = `Jan Kowalski
Senior Software Engineer at Acme
Warsaw, Poland

Experience
Senior Software Engineer · Acme · Mar 2021 - Present · 3 yrs
Building payment services in Go.
Developer · Beta · Jan 2018 - Feb 2021
Backend work.

Education
Warsaw University of Technology · MSc Computer Science · 2012 - 2017

Skills
Python, Leadership, English
`

// fakeUserDB is an in-memory DBClient
type fakeUserDB struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*db.User
	getErr error
}

func newFakeUserDB() *fakeUserDB {
	return &fakeUserDB{users: make(map[uuid.UUID]*db.User)}
}

func (f *fakeUserDB) CreateUser(_ context.Context, name, email, phone, passwordHash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return uuid.Nil, fmt.Errorf("user %s: %w", email, db.ErrEmailTaken)
		}
	}
	now := time.Now()
	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		PasswordSet:  passwordHash != "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUserDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeUserDB) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

// fakeStore is an in-memory importer.Store
type fakeStore struct {
	mu      sync.Mutex
	imports map[uuid.UUID]*db.Import
	cvErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{imports: make(map[uuid.UUID]*db.Import)}
}

func (f *fakeStore) CreateImport(_ context.Context, in *db.CreateImportInput) (*db.Import, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	imp := &db.Import{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Source:      in.Source,
		ContentHash: in.ContentHash,
		Result:      in.Result,
		Status:      db.ImportStatusPending,
		CreatedAt:   time.Now(),
	}
	f.imports[imp.ID] = imp
	return imp, nil
}

func (f *fakeStore) GetImport(_ context.Context, id uuid.UUID) (*db.Import, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.imports[id], nil
}

func (f *fakeStore) ListImportsByUser(_ context.Context, userID uuid.UUID, _ int) ([]db.ImportSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.ImportSummary{}
	for _, imp := range f.imports {
		if imp.UserID == userID {
			out = append(out, db.ImportSummary{
				ID:              imp.ID,
				Status:          imp.Status,
				FullName:        imp.Result.Personal.FullName,
				ExperienceCount: len(imp.Result.Experience),
			})
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteImport(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.imports[id]; !ok {
		return fmt.Errorf("import %s: %w", id, db.ErrNotFound)
	}
	delete(f.imports, id)
	return nil
}

func (f *fakeStore) ApplyImport(_ context.Context, in *db.ApplyImportInput) (*db.ApplyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	imp := f.imports[in.ImportID]
	if imp.Status == db.ImportStatusApplied {
		return nil, db.ErrAlreadyApplied
	}
	imp.Status = db.ImportStatusApplied
	res := &db.ApplyResult{ProfileUpdated: in.Personal}
	if in.Experience {
		res.JobsCreated = len(in.Result.Experience)
	}
	if in.Education {
		res.EducationCreated = len(in.Result.Education)
	}
	if in.Skills {
		res.SkillsLinked = len(in.Result.Skills)
	}
	return res, nil
}

func (f *fakeStore) GetCV(_ context.Context, userID uuid.UUID) (*db.CV, error) {
	if f.cvErr != nil {
		return nil, f.cvErr
	}
	return &db.CV{
		Profile:   &db.Profile{UserID: userID, FullName: "Jan Kowalski"},
		Jobs:      []db.Job{},
		Education: []db.Education{},
		Skills:    []db.UserSkill{},
	}, nil
}

// testEnv is a Server wired to in-memory fakes
type testEnv struct {
	server  *Server
	handler http.Handler
	users   *fakeUserDB
	store   *fakeStore
	jwt     *JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	return newTestEnvWithConfig(t, Config{})
}

func newTestEnvWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	users := newFakeUserDB()
	store := newFakeStore()
	jwtService := NewJWTService(&config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: 24,
		Issuer:          config.DefaultJWTIssuer,
	})
	passwords := &config.PasswordConfig{BcryptCost: 4, MinLength: 8}

	s := NewWithDeps(cfg, Deps{
		Importer: importer.NewService(importer.Options{Store: store}),
		Users:    NewUserService(users, passwords),
		JWT:      jwtService,
	})
	t.Cleanup(s.Close)

	return &testEnv{server: s, handler: s.Handler(), users: users, store: store, jwt: jwtService}
}

// do sends a JSON request; token may be empty
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its id and token
func (e *testEnv) register(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Jan Kowalski",
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User  struct{ ID uuid.UUID } `json:"user"`
		Token string                 `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return strings.ToLower(decodeBody[map[string]string](t, w)["error"])
}
