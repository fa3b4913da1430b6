package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
)

var errBackend = errors.New("backend unavailable")

// memRepo is an in-memory Manageable over entities addressed by id and name.
type memRepo[E any] struct {
	items   []E
	nextID  int
	idOf    func(E) int
	setID   func(*E, int)
	nameOf  func(E) string
	inserts []E
	deleted []E
}

func (r *memRepo[E]) GetAll(_ context.Context, cond condition.Condition) ([]E, error) {
	out := []E{}
	name, hasName := cond.Get("name")
	for _, it := range r.items {
		if hasName && !strings.Contains(r.nameOf(it), name.(string)) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *memRepo[E]) GetOne(ctx context.Context, cond condition.Condition) (*E, error) {
	items, _ := r.GetAll(ctx, cond)
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *memRepo[E]) Get(_ context.Context, id int) (*E, error) {
	for _, it := range r.items {
		if r.idOf(it) == id {
			return &it, nil
		}
	}
	return nil, nil
}

func (r *memRepo[E]) Insert(_ context.Context, e E) (E, error) {
	r.nextID++
	r.setID(&e, r.nextID)
	r.items = append(r.items, e)
	r.inserts = append(r.inserts, e)
	return e, nil
}

func (r *memRepo[E]) Update(_ context.Context, e E) (E, error) {
	for i, it := range r.items {
		if r.idOf(it) == r.idOf(e) {
			r.items[i] = e
			return e, nil
		}
	}
	return e, &backend.APIError{StatusCode: 404, Body: "not found"}
}

func (r *memRepo[E]) Delete(_ context.Context, id int) error {
	for i, it := range r.items {
		if r.idOf(it) == id {
			r.deleted = append(r.deleted, it)
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return &backend.APIError{StatusCode: 404, Body: "not found"}
}

func (r *memRepo[E]) BulkDelete(ctx context.Context, items []E) (bool, error) {
	for _, it := range items {
		if err := r.Delete(ctx, r.idOf(it)); err != nil {
			return false, err
		}
	}
	return true, nil
}

func newProjects(items ...domain.Project) *memRepo[domain.Project] {
	return &memRepo[domain.Project]{
		items:  items,
		nextID: 100,
		idOf:   func(p domain.Project) int { return p.ID },
		setID:  func(p *domain.Project, id int) { p.ID = id },
		nameOf: func(p domain.Project) string { return p.Name },
	}
}

func newFolders(items ...domain.Folder) *memRepo[domain.Folder] {
	return &memRepo[domain.Folder]{
		items:  items,
		nextID: 100,
		idOf:   func(f domain.Folder) int { return f.ID },
		setID:  func(f *domain.Folder, id int) { f.ID = id },
		nameOf: func(f domain.Folder) string { return f.Name },
	}
}

type fakeClasses struct {
	*memRepo[domain.AnnotationClass]
}

func newClasses(items ...domain.AnnotationClass) *fakeClasses {
	return &fakeClasses{&memRepo[domain.AnnotationClass]{
		items:  items,
		nextID: 500,
		idOf:   func(c domain.AnnotationClass) int { return c.ID },
		setID:  func(c *domain.AnnotationClass, id int) { c.ID = id },
		nameOf: func(c domain.AnnotationClass) string { return c.Name },
	}}
}

func (c *fakeClasses) InsertMany(ctx context.Context, classes []domain.AnnotationClass) ([]domain.AnnotationClass, error) {
	out := []domain.AnnotationClass{}
	for _, in := range classes {
		// the backend assigns fresh attribute ids
		in.AttributeGroups = append([]domain.AttributeGroup(nil), in.AttributeGroups...)
		for g := range in.AttributeGroups {
			c.nextID++
			in.AttributeGroups[g].ID = c.nextID
			attrs := append([]domain.Attribute(nil), in.AttributeGroups[g].Attributes...)
			for a := range attrs {
				c.nextID++
				attrs[a].ID = c.nextID
			}
			in.AttributeGroups[g].Attributes = attrs
		}
		created, _ := c.Insert(ctx, in)
		out = append(out, created)
	}
	return out, nil
}

type fakeSettings struct {
	saved []domain.ProjectSetting
}

func (s *fakeSettings) GetAll(context.Context, condition.Condition) ([]domain.ProjectSetting, error) {
	return append([]domain.ProjectSetting{}, s.saved...), nil
}

func (s *fakeSettings) GetOne(context.Context, condition.Condition) (*domain.ProjectSetting, error) {
	return nil, nil
}

func (s *fakeSettings) Save(_ context.Context, settings []domain.ProjectSetting) ([]domain.ProjectSetting, error) {
	s.saved = append(s.saved, settings...)
	return settings, nil
}

type fakeWorkflows struct {
	saved []domain.Workflow
}

func (w *fakeWorkflows) GetAll(context.Context, condition.Condition) ([]domain.Workflow, error) {
	return append([]domain.Workflow{}, w.saved...), nil
}

func (w *fakeWorkflows) GetOne(context.Context, condition.Condition) (*domain.Workflow, error) {
	return nil, nil
}

func (w *fakeWorkflows) Save(_ context.Context, steps []domain.Workflow) ([]domain.Workflow, error) {
	w.saved = append(w.saved, steps...)
	return steps, nil
}

type fakeContributors struct {
	users  []domain.User
	shared []domain.ProjectContributor
}

func (c *fakeContributors) GetAll(context.Context, condition.Condition) ([]domain.User, error) {
	return append([]domain.User{}, c.users...), nil
}

func (c *fakeContributors) GetOne(context.Context, condition.Condition) (*domain.User, error) {
	return nil, nil
}

func (c *fakeContributors) Share(_ context.Context, pc domain.ProjectContributor) error {
	c.shared = append(c.shared, pc)
	return nil
}

type fakeResources struct {
	settings     *fakeSettings
	classes      *fakeClasses
	workflows    *fakeWorkflows
	contributors *fakeContributors
}

func newResources() *fakeResources {
	return &fakeResources{
		settings:     &fakeSettings{},
		classes:      newClasses(),
		workflows:    &fakeWorkflows{},
		contributors: &fakeContributors{},
	}
}

func (f *fakeResources) factory(domain.Project) ProjectResources {
	return ProjectResources{Settings: f.settings, Classes: f.classes, Workflows: f.workflows, Contributors: f.contributors}
}

// fakeImages models one folder's images plus the attach endpoint.
type fakeImages struct {
	*memRepo[domain.Image]
	limit       int
	skip        map[string]bool
	failAttach  map[int]bool
	attachCalls [][]domain.ImageUpload
	authCalls   int
	bulkCalls   int
}

func newImages(items ...domain.Image) *fakeImages {
	return &fakeImages{
		memRepo: &memRepo[domain.Image]{
			items:  items,
			nextID: 1000,
			idOf:   func(i domain.Image) int { return i.ID },
			setID:  func(i *domain.Image, id int) { i.ID = id },
			nameOf: func(i domain.Image) string { return i.Name },
		},
		limit:      50000,
		skip:       map[string]bool{},
		failAttach: map[int]bool{},
	}
}

func (f *fakeImages) GetBulk(_ context.Context, folderID int, names []string) ([]domain.Image, error) {
	f.bulkCalls++
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	out := []domain.Image{}
	for _, img := range f.items {
		if img.FolderID == folderID && want[img.Name] {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImages) Duplicates(ctx context.Context, folderID int, names []string) ([]string, error) {
	found, _ := f.GetBulk(ctx, folderID, names)
	f.bulkCalls--
	out := []string{}
	for _, img := range found {
		out = append(out, img.Name)
	}
	return out, nil
}

func (f *fakeImages) Attach(_ context.Context, folderID int, state domain.UploadState, files []domain.ImageUpload) (backend.AttachFilesResponse, error) {
	call := len(f.attachCalls)
	f.attachCalls = append(f.attachCalls, files)
	if f.failAttach[call] {
		return backend.AttachFilesResponse{}, errBackend
	}
	res := backend.AttachFilesResponse{Attached: []string{}, Skipped: []string{}}
	for _, file := range files {
		if f.skip[file.Name] {
			res.Skipped = append(res.Skipped, file.Name)
			continue
		}
		f.nextID++
		f.items = append(f.items, domain.Image{ID: f.nextID, FolderID: folderID, Name: file.Name, Path: file.Path, UploadState: state})
		res.Attached = append(res.Attached, file.Name)
	}
	return res, nil
}

func (f *fakeImages) UploadAuth(_ context.Context, folderID int) (domain.UploadAuth, error) {
	f.authCalls++
	n := 0
	for _, img := range f.items {
		if img.FolderID == folderID {
			n++
		}
	}
	return domain.UploadAuth{Bucket: "bucket", AvailableImageCount: f.limit - n}, nil
}

func (f *fakeImages) DownloadURL(_ context.Context, imageID int, variant domain.ImageVariant) (backend.DownloadURLResponse, error) {
	return backend.DownloadURLResponse{URL: "https://files.test/" + string(variant) + "/img", Headers: map[string]string{"X-Image": "1"}}, nil
}

// fakeObjects is safe for the concurrent puts UploadImages issues.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut map[string]bool
}

func newObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, failPut: map[string]bool{}}
}

func (o *fakeObjects) Key(folder domain.Folder, name string) string {
	return domain.FolderPath(folder) + "/" + name
}

func (o *fakeObjects) Put(_ context.Context, key string, data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failPut[key] {
		return errBackend
	}
	o.objects[key] = data
	return nil
}

func (o *fakeObjects) Get(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

type fakeDownloader struct {
	gotURL     string
	gotHeaders map[string]string
}

func (d *fakeDownloader) Download(_ context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	d.gotURL, d.gotHeaders = rawURL, headers
	return []byte("pixels"), nil
}

type fakeTeams struct {
	team    domain.Team
	invited []domain.Invitation
	removed []domain.Invitation
}

func (t *fakeTeams) GetOne(context.Context, condition.Condition) (*domain.Team, error) {
	team := t.team
	return &team, nil
}

func (t *fakeTeams) Invite(_ context.Context, email string, role domain.UserRole) (domain.Invitation, error) {
	inv := domain.Invitation{Email: email, Token: "tok-" + email, Role: role}
	t.invited = append(t.invited, inv)
	return inv, nil
}

func (t *fakeTeams) DeleteInvitation(_ context.Context, inv domain.Invitation) error {
	t.removed = append(t.removed, inv)
	return nil
}

type fakeExports struct {
	got domain.Export
}

func (e *fakeExports) Insert(_ context.Context, exp domain.Export) (domain.Export, error) {
	e.got = exp
	exp.ID = 7
	exp.Name = "export-7"
	return exp, nil
}
