package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/db"
)

// fakeStore is an in-memory Store
type fakeStore struct {
	mu       sync.Mutex
	imports  map[uuid.UUID]*db.Import
	applied  []*db.ApplyImportInput
	applyErr error
	failAll  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{imports: make(map[uuid.UUID]*db.Import)}
}

func (f *fakeStore) CreateImport(_ context.Context, in *db.CreateImportInput) (*db.Import, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
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
	if f.failAll != nil {
		return nil, f.failAll
	}
	return f.imports[id], nil
}

func (f *fakeStore) ListImportsByUser(_ context.Context, userID uuid.UUID, _ int) ([]db.ImportSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.ImportSummary{}
	for _, imp := range f.imports {
		if imp.UserID == userID {
			out = append(out, db.ImportSummary{ID: imp.ID, Status: imp.Status, FullName: imp.Result.Personal.FullName})
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
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = append(f.applied, in)
	imp := f.imports[in.ImportID]
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
	return &db.CV{Profile: &db.Profile{UserID: userID, FullName: "Jan Kowalski"}, Jobs: []db.Job{}, Education: []db.Education{}, Skills: []db.UserSkill{}}, nil
}
