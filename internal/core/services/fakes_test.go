package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
)

// In-memory repository fakes. They honor the same contracts as the MySQL
// implementations: Mutate is atomic per document, history is append-only.

func testDepartment(id uint, name, code string, active bool) *models.Department {
	return &models.Department{ID: id, Name: name, Code: code, IsActive: active}
}

func testUser(id uint, email, fullName string, role domain.Role, departmentID uint, active bool) *models.User {
	return &models.User{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		Role:         string(role),
		DepartmentID: departmentID,
		IsActive:     active,
	}
}

type fakeSequenceRepo struct {
	mu     sync.Mutex
	values map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{values: make(map[string]int64)}
}

func (f *fakeSequenceRepo) Next(_ context.Context, departmentID uint, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%d-%d", departmentID, year)
	f.values[key]++
	return f.values[key], nil
}

type fakeDeptRepo struct {
	mu    sync.Mutex
	depts map[uint]*models.Department
}

func newFakeDeptRepo(depts ...*models.Department) *fakeDeptRepo {
	f := &fakeDeptRepo{depts: make(map[uint]*models.Department)}
	for _, d := range depts {
		f.depts[d.ID] = d
	}
	return f
}

func (f *fakeDeptRepo) Create(_ context.Context, dept *models.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dept.ID == 0 {
		dept.ID = uint(len(f.depts) + 1)
	}
	f.depts[dept.ID] = dept
	return nil
}

func (f *fakeDeptRepo) GetByID(_ context.Context, id uint) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dept, ok := f.depts[id]
	if !ok {
		return nil, domain.ErrDepartmentNotFound
	}
	return dept, nil
}

func (f *fakeDeptRepo) GetByCode(_ context.Context, code string) (*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dept := range f.depts {
		if dept.Code == code {
			return dept, nil
		}
	}
	return nil, domain.ErrDepartmentNotFound
}

func (f *fakeDeptRepo) List(_ context.Context, activeOnly bool) ([]*models.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Department
	for _, dept := range f.depts {
		if !activeOnly || dept.IsActive {
			out = append(out, dept)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDeptRepo) Update(_ context.Context, dept *models.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depts[dept.ID] = dept
	return nil
}

func (f *fakeDeptRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dept := range f.depts {
		if dept.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDeptRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dept := range f.depts {
		if dept.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = uint(len(f.users) + 1)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		user.IsActive = false
	}
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, user := range f.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ListActiveByDepartment(_ context.Context, departmentID uint) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, user := range f.users {
		if user.DepartmentID == departmentID && user.IsActive {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*models.DocumentHistory
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry *models.DocumentHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistoryRepo) Timeline(_ context.Context, documentID string, filter repositories.TimelineFilter) ([]*models.DocumentHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DocumentHistory
	for _, entry := range f.entries {
		if entry.DocumentID != documentID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.From != nil && entry.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.Timestamp.After(*filter.To) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeHistoryRepo) RecentActivity(_ context.Context, _ *uint, limit int) ([]*models.DocumentHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[len(f.entries)-limit:], nil
}

func (f *fakeHistoryRepo) CountByUser(_ context.Context, userID uint, action string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, entry := range f.entries {
		if entry.PerformedBy == userID && (action == "" || entry.Action == action) {
			count++
		}
	}
	return count, nil
}

func (f *fakeHistoryRepo) byDocument(documentID string) []*models.DocumentHistory {
	out, _ := f.Timeline(context.Background(), documentID, repositories.TimelineFilter{})
	return out
}

// fakeDocStore implements DocumentStore over a map. Mutate holds the store
// lock for the whole callback, mirroring the row lock the MySQL store takes.
type fakeDocStore struct {
	mu      sync.Mutex
	docs    map[string]*models.Document
	history *fakeHistoryRepo
}

func newFakeDocStore(history *fakeHistoryRepo) *fakeDocStore {
	return &fakeDocStore{
		docs:    make(map[string]*models.Document),
		history: history,
	}
}

func copyDoc(doc *models.Document) *models.Document {
	clone := *doc
	clone.Files = append([]models.DocumentFile(nil), doc.Files...)
	clone.Tags = append([]string(nil), doc.Tags...)
	return &clone
}

func (f *fakeDocStore) Create(ctx context.Context, doc *models.Document, entry *models.DocumentHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.docs {
		if existing.DocumentNumber == doc.DocumentNumber {
			return domain.ErrDuplicateResource
		}
	}
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	f.docs[doc.ID] = copyDoc(doc)
	if entry != nil {
		_ = f.history.Append(ctx, entry)
	}
	return nil
}

func (f *fakeDocStore) Mutate(ctx context.Context, id string, fn func(doc *models.Document) (*models.DocumentHistory, error)) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	working := copyDoc(doc)
	entry, err := fn(working)
	if err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	f.docs[id] = working
	if entry != nil {
		_ = f.history.Append(ctx, entry)
	}
	return copyDoc(working), nil
}

func (f *fakeDocStore) GetByID(_ context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return copyDoc(doc), nil
}

func (f *fakeDocStore) GetByNumber(_ context.Context, documentNumber string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.DocumentNumber == documentNumber {
			return copyDoc(doc), nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (f *fakeDocStore) List(_ context.Context, filter repositories.DocumentFilter) ([]*models.Document, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, doc := range f.docs {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.DepartmentID != nil &&
			doc.CreatorDepartmentID != *filter.DepartmentID &&
			doc.CurrentHolderDepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.CreatorID != nil && doc.CreatorID != *filter.CreatorID {
			continue
		}
		out = append(out, copyDoc(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentNumber < out[j].DocumentNumber })
	return out, int64(len(out)), nil
}

func (f *fakeDocStore) CountByStatus(_ context.Context, departmentID *uint) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, doc := range f.docs {
		if departmentID != nil &&
			doc.CreatorDepartmentID != *departmentID &&
			doc.CurrentHolderDepartmentID != *departmentID {
			continue
		}
		counts[doc.Status]++
	}
	return counts, nil
}

func (f *fakeDocStore) CountByPriority(_ context.Context, departmentID *uint) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, doc := range f.docs {
		counts[doc.Priority]++
	}
	return counts, nil
}

func (f *fakeDocStore) CountOverdue(_ context.Context, departmentID *uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	var count int64
	for _, doc := range f.docs {
		if doc.Deadline == nil || !doc.Deadline.Before(now) {
			continue
		}
		if doc.Status == string(domain.StatusCompleted) || doc.Status == string(domain.StatusArchived) {
			continue
		}
		if departmentID != nil &&
			doc.CreatorDepartmentID != *departmentID &&
			doc.CurrentHolderDepartmentID != *departmentID {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeDocStore) ListDeadlineApproaching(_ context.Context, before time.Time) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, doc := range f.docs {
		if doc.Deadline == nil || doc.Deadline.After(before) {
			continue
		}
		if doc.Status == string(domain.StatusCompleted) || doc.Status == string(domain.StatusArchived) {
			continue
		}
		out = append(out, copyDoc(doc))
	}
	return out, nil
}

type fakeNotifRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	failCreate    bool
}

func (f *fakeNotifRepo) Create(_ context.Context, notif *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("storage down")
	}
	f.notifications = append(f.notifications, notif)
	return nil
}

func (f *fakeNotifRepo) ListByUser(_ context.Context, userID uint, isRead *bool, offset, limit int) ([]*models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifRepo) MarkRead(_ context.Context, id string, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotifRepo) MarkAllRead(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifRepo) byUser(userID uint) []*models.Notification {
	out, _, _ := f.ListByUser(context.Background(), userID, nil, 0, 100)
	return out
}

type fakeBlobRepo struct {
	mu    sync.Mutex
	blobs map[string]*models.FileBlob
}

func newFakeBlobRepo() *fakeBlobRepo {
	return &fakeBlobRepo{blobs: make(map[string]*models.FileBlob)}
}

func (f *fakeBlobRepo) Put(_ context.Context, blob *models.FileBlob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[blob.ID] = blob
	return nil
}

func (f *fakeBlobRepo) Get(_ context.Context, id string) (*models.FileBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return blob, nil
}

func (f *fakeBlobRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, id)
	return nil
}
