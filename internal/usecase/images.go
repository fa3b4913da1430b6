package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"

	"golang.org/x/sync/errgroup"

	"annoctl/internal/backend"
	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/repository"
	"annoctl/internal/response"
)

// ImageFilter narrows SearchImages. Zero fields are ignored.
type ImageFilter struct {
	NamePrefix string
	Status     domain.AnnotationStatus
}

type SearchImages struct {
	images repository.ReadOnly[domain.Image]
	folder domain.Folder
	filter ImageFilter
	resp   *response.Response[[]domain.Image]
}

func NewSearchImages(images repository.ReadOnly[domain.Image], folder domain.Folder, filter ImageFilter, resp *response.Response[[]domain.Image]) *SearchImages {
	return &SearchImages{images: images, folder: folder, filter: filter, resp: resp}
}

func (u *SearchImages) Execute(ctx context.Context) {
	cond := condition.Eq("folder_id", u.folder.ID)
	if u.filter.NamePrefix != "" {
		cond = cond.And(condition.Eq("name_prefix", u.filter.NamePrefix))
	}
	if u.filter.Status != 0 {
		cond = cond.And(condition.Eq("annotation_status", u.filter.Status))
	}
	items, err := u.images.GetAll(ctx, cond)
	if err != nil {
		u.resp.Report(fmt.Errorf("search images: %w", err))
		return
	}
	u.resp.SetData(items)
}

type GetImage struct {
	images repository.ReadOnly[domain.Image]
	folder domain.Folder
	name   string
	resp   *response.Response[domain.Image]
}

func NewGetImage(images repository.ReadOnly[domain.Image], folder domain.Folder, name string, resp *response.Response[domain.Image]) *GetImage {
	return &GetImage{images: images, folder: folder, name: name, resp: resp}
}

func (u *GetImage) Execute(ctx context.Context) {
	items, err := u.images.GetAll(ctx, condition.Eq("folder_id", u.folder.ID).And(condition.Eq("name", u.name)))
	if err != nil {
		u.resp.Report(fmt.Errorf("get image %q: %w", u.name, err))
		return
	}
	matches := exactName(items, u.name, func(i domain.Image) string { return i.Name })
	switch len(matches) {
	case 0:
		u.resp.Report(&domain.NotFoundError{Kind: "image", Name: u.name})
	case 1:
		u.resp.SetData(matches[0])
	default:
		u.resp.Report(&domain.DuplicateNameError{Kind: "image", Name: u.name, Count: len(matches)})
	}
}

type UpdateImage struct {
	images repository.Manageable[domain.Image]
	image  domain.Image
	patch  domain.ImagePatch
	resp   *response.Response[domain.Image]
}

func NewUpdateImage(images repository.Manageable[domain.Image], image domain.Image, patch domain.ImagePatch, resp *response.Response[domain.Image]) *UpdateImage {
	return &UpdateImage{images: images, image: image, patch: patch, resp: resp}
}

func (u *UpdateImage) Execute(ctx context.Context) {
	if u.patch.IsEmpty() {
		u.resp.SetData(u.image)
		return
	}
	updated := u.image
	u.patch.Apply(&updated)
	saved, err := u.images.Update(ctx, updated)
	if err != nil {
		u.resp.Report(fmt.Errorf("update image %q: %w", u.image.Name, err))
		return
	}
	u.resp.SetData(saved)
}

type UploadImageToS3 struct {
	store  ObjectStore
	folder domain.Folder
	source domain.ImageSource
	resp   *response.Response[domain.ImageUpload]
}

// NewUploadImageToS3 puts one image into storage without registering it.
func NewUploadImageToS3(store ObjectStore, folder domain.Folder, source domain.ImageSource, resp *response.Response[domain.ImageUpload]) *UploadImageToS3 {
	return &UploadImageToS3{store: store, folder: folder, source: source, resp: resp}
}

func (u *UploadImageToS3) Execute(ctx context.Context) {
	if u.source.Name == "" {
		u.resp.Report(&domain.ValidationError{Message: "image name is required"})
		return
	}
	key := u.store.Key(u.folder, u.source.Name)
	if err := u.store.Put(ctx, key, u.source.Data); err != nil {
		u.resp.Report(fmt.Errorf("upload %q: %w", u.source.Name, err))
		return
	}
	u.resp.SetData(domain.ImageUpload{Name: u.source.Name, Path: key, Meta: u.source.Meta})
}

type UploadImages struct {
	images      ImageStore
	settings    SettingsStore
	store       ObjectStore
	folder      domain.Folder
	sources     []domain.ImageSource
	opts        domain.UploadOptions
	concurrency int
	log         *slog.Logger
	resp        *response.Response[domain.AttachResult]
}

// NewUploadImages uploads sources into folder and registers them in AttachChunkSize
// batches. Within a batch, puts run concurrently up to concurrency.
func NewUploadImages(images ImageStore, settings SettingsStore, store ObjectStore, folder domain.Folder, sources []domain.ImageSource, opts domain.UploadOptions, concurrency int, log *slog.Logger, resp *response.Response[domain.AttachResult]) *UploadImages {
	if concurrency <= 0 {
		concurrency = DefaultUploadConcurrency
	}
	return &UploadImages{images: images, settings: settings, store: store, folder: folder, sources: sources, opts: opts, concurrency: concurrency, log: log, resp: resp}
}

func (u *UploadImages) Execute(ctx context.Context) {
	if err := u.opts.Validate(); err != nil {
		u.resp.Report(err)
		return
	}
	if u.opts.ImageQuality != "" {
		setting := domain.ProjectSetting{Attribute: domain.ImageQualitySetting, Value: string(u.opts.ImageQuality)}
		if _, err := u.settings.Save(ctx, []domain.ProjectSetting{setting}); err != nil {
			u.resp.Report(fmt.Errorf("set image quality: %w", err))
			return
		}
	}

	names := make([]string, len(u.sources))
	for i, s := range u.sources {
		names[i] = s.Name
	}
	items, pending := screenNames(names, func(i int) error {
		if u.sources[i].Name == "" {
			return &domain.ValidationError{Message: "image name is required"}
		}
		return nil
	})

	for n, batch := range chunks(pending, AttachChunkSize) {
		fresh, ok := admitBatch(ctx, u.images, u.folder, u.log, u.resp, items, names, batch, n)
		if !ok || len(fresh) == 0 {
			continue
		}
		uploaded, keys := u.put(ctx, items, names, fresh)
		if len(uploaded) == 0 {
			continue
		}
		files := make([]domain.ImageUpload, 0, len(uploaded))
		for _, i := range uploaded {
			files = append(files, domain.ImageUpload{Name: names[i], Path: keys[i], Meta: u.sources[i].Meta, AnnotationStatus: u.opts.AnnotationStatus})
		}
		res, err := u.images.Attach(ctx, u.folder.ID, domain.UploadStateBasic, files)
		if err != nil {
			u.resp.Report(fmt.Errorf("batch %d: register %d images: %w", n+1, len(uploaded), err))
			markAll(items, names, uploaded, domain.OutcomeFailed, domain.ReasonBackend)
			continue
		}
		markAttached(items, names, uploaded, res)
	}
	finishAttach(u.resp, items)
}

// put stores the fresh items of one batch and returns those that landed with their keys.
func (u *UploadImages) put(ctx context.Context, items []domain.AttachOutcome, names []string, fresh []int) ([]int, map[int]string) {
	keys := make(map[int]string, len(fresh))
	for _, i := range fresh {
		keys[i] = u.store.Key(u.folder, names[i])
	}
	putErrs := make([]error, len(fresh))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for j, i := range fresh {
		key := keys[i]
		g.Go(func() error {
			// a failed put only fails its own item
			putErrs[j] = u.store.Put(gctx, key, u.sources[i].Data)
			return nil
		})
	}
	_ = g.Wait()

	uploaded := make([]int, 0, len(fresh))
	for j, i := range fresh {
		if putErrs[j] != nil {
			u.log.Warn("image upload failed", "name", names[i], "error", putErrs[j])
			u.resp.Report(fmt.Errorf("upload %q: %w", names[i], putErrs[j]))
			items[i] = domain.AttachOutcome{Name: names[i], Outcome: domain.OutcomeFailed, Reason: domain.ReasonBackend}
			continue
		}
		uploaded = append(uploaded, i)
	}
	return uploaded, keys
}

type AttachURLs struct {
	images      ImageStore
	folder      domain.Folder
	attachments []domain.Attachment
	state       domain.UploadState
	opts        domain.UploadOptions
	log         *slog.Logger
	resp        *response.Response[domain.AttachResult]
}

// NewAttachURLs registers externally hosted files as images of folder.
// Only opts.AnnotationStatus applies to attachments.
func NewAttachURLs(images ImageStore, folder domain.Folder, attachments []domain.Attachment, opts domain.UploadOptions, log *slog.Logger, resp *response.Response[domain.AttachResult]) *AttachURLs {
	return &AttachURLs{images: images, folder: folder, attachments: attachments, state: domain.UploadStateExternal, opts: opts, log: log, resp: resp}
}

// Execute walks each item through pending, submitted and then uploaded, duplicate
// or failed. Every batch is checked against the folder's current image limit and
// against names already in the folder; a failed batch does not stop the next one.
func (u *AttachURLs) Execute(ctx context.Context) {
	if err := u.opts.Validate(); err != nil {
		u.resp.Report(err)
		return
	}
	names := make([]string, len(u.attachments))
	for i, a := range u.attachments {
		names[i] = a.Name
	}
	items, pending := screenNames(names, func(i int) error { return u.attachments[i].Validate() })

	for n, batch := range chunks(pending, AttachChunkSize) {
		fresh, ok := admitBatch(ctx, u.images, u.folder, u.log, u.resp, items, names, batch, n)
		if !ok || len(fresh) == 0 {
			continue
		}
		files := make([]domain.ImageUpload, 0, len(fresh))
		for _, i := range fresh {
			files = append(files, domain.ImageUpload{Name: names[i], Path: u.attachments[i].URL, AnnotationStatus: u.opts.AnnotationStatus})
		}
		res, err := u.images.Attach(ctx, u.folder.ID, u.state, files)
		if err != nil {
			u.resp.Report(fmt.Errorf("batch %d: attach %d files: %w", n+1, len(fresh), err))
			markAll(items, names, fresh, domain.OutcomeFailed, domain.ReasonBackend)
			continue
		}
		markAttached(items, names, fresh, res)
		u.log.Debug("attached batch", "batch", n+1, "submitted", len(fresh), "attached", len(res.Attached))
	}
	finishAttach(u.resp, items)
}

// admitBatch drops names already in the folder and items past the folder's
// current image limit, marking them in items. It returns the indexes left to
// submit; false means the batch failed and every item in it was marked failed.
func admitBatch(ctx context.Context, images ImageStore, folder domain.Folder, log *slog.Logger, resp *response.Response[domain.AttachResult], items []domain.AttachOutcome, names []string, batch []int, n int) ([]int, bool) {
	auth, err := images.UploadAuth(ctx, folder.ID)
	if err != nil {
		resp.Report(fmt.Errorf("batch %d: get upload limit: %w", n+1, err))
		markAll(items, names, batch, domain.OutcomeFailed, domain.ReasonBackend)
		return nil, false
	}
	dups, err := images.Duplicates(ctx, folder.ID, namesAt(names, batch))
	if err != nil {
		resp.Report(fmt.Errorf("batch %d: check duplicates: %w", n+1, err))
		markAll(items, names, batch, domain.OutcomeFailed, domain.ReasonBackend)
		return nil, false
	}
	fresh := splitDuplicates(items, names, batch, dups)

	limit := max(auth.AvailableImageCount, 0)
	if len(fresh) > limit {
		log.Warn("folder image limit reached; skipping the rest of the batch",
			"folder", folder.Name, "available", limit, "skipped", len(fresh)-limit)
		markAll(items, names, fresh[limit:], domain.OutcomeFailed, domain.ReasonLimitExceeded)
		fresh = fresh[:limit]
	}
	return fresh, true
}

// finishAttach publishes the per-item outcomes. Failed items also leave one
// IncompleteError in the response; duplicates do not.
func finishAttach(resp *response.Response[domain.AttachResult], items []domain.AttachOutcome) {
	res := domain.AttachResult{Items: items}
	if failed := len(res.Failed()); failed > 0 {
		resp.Report(&domain.IncompleteError{Failed: failed, Total: len(items)})
	}
	resp.SetData(res)
}

// screenNames gives every input an outcome slot and returns the indexes still pending.
// Invalid items fail; repeats of an earlier name in the same input are duplicates.
func screenNames(names []string, validate func(i int) error) ([]domain.AttachOutcome, []int) {
	items := make([]domain.AttachOutcome, len(names))
	seen := make(map[string]bool, len(names))
	pending := make([]int, 0, len(names))
	for i, name := range names {
		if err := validate(i); err != nil {
			items[i] = domain.AttachOutcome{Name: name, Outcome: domain.OutcomeFailed, Reason: domain.ReasonInvalid}
			continue
		}
		if seen[name] {
			items[i] = domain.AttachOutcome{Name: name, Outcome: domain.OutcomeDuplicate, Reason: domain.ReasonDuplicate}
			continue
		}
		seen[name] = true
		pending = append(pending, i)
	}
	return items, pending
}

// splitDuplicates marks batch items named in dups and returns the rest.
func splitDuplicates(items []domain.AttachOutcome, names []string, batch []int, dups []string) []int {
	dupSet := make(map[string]bool, len(dups))
	for _, d := range dups {
		dupSet[d] = true
	}
	fresh := make([]int, 0, len(batch))
	for _, i := range batch {
		if dupSet[names[i]] {
			items[i] = domain.AttachOutcome{Name: names[i], Outcome: domain.OutcomeDuplicate, Reason: domain.ReasonDuplicate}
			continue
		}
		fresh = append(fresh, i)
	}
	return fresh
}

func markAttached(items []domain.AttachOutcome, names []string, batch []int, res backend.AttachFilesResponse) {
	attached := make(map[string]bool, len(res.Attached))
	for _, n := range res.Attached {
		attached[n] = true
	}
	for _, i := range batch {
		if attached[names[i]] {
			items[i] = domain.AttachOutcome{Name: names[i], Outcome: domain.OutcomeUploaded}
		} else {
			items[i] = domain.AttachOutcome{Name: names[i], Outcome: domain.OutcomeFailed, Reason: domain.ReasonBackend}
		}
	}
}

func markAll(items []domain.AttachOutcome, names []string, idx []int, outcome domain.Outcome, reason domain.Reason) {
	for _, i := range idx {
		items[i] = domain.AttachOutcome{Name: names[i], Outcome: outcome, Reason: reason}
	}
}

func namesAt(names []string, idx []int) []string {
	out := make([]string, len(idx))
	for j, i := range idx {
		out[j] = names[i]
	}
	return out
}

type DownloadImage struct {
	images     ImageStore
	downloader backend.Downloader
	image      domain.Image
	variant    domain.ImageVariant
	resp       *response.Response[domain.DownloadedImage]
}

func NewDownloadImage(images ImageStore, downloader backend.Downloader, image domain.Image, variant domain.ImageVariant, resp *response.Response[domain.DownloadedImage]) *DownloadImage {
	return &DownloadImage{images: images, downloader: downloader, image: image, variant: variant, resp: resp}
}

func (u *DownloadImage) Execute(ctx context.Context) {
	variant := u.variant
	if variant == "" {
		variant = domain.VariantOriginal
	}
	if variant != domain.VariantOriginal && variant != domain.VariantLores {
		u.resp.Report(&domain.ValidationError{Message: fmt.Sprintf("unknown image variant %q", variant)})
		return
	}
	link, err := u.images.DownloadURL(ctx, u.image.ID, variant)
	if err != nil {
		u.resp.Report(fmt.Errorf("get download url for %q: %w", u.image.Name, err))
		return
	}
	data, err := u.downloader.Download(ctx, link.URL, link.Headers)
	if err != nil {
		u.resp.Report(fmt.Errorf("download %q: %w", u.image.Name, err))
		return
	}
	name := u.image.Name
	if variant == domain.VariantLores {
		name += "___lores.jpg"
	}
	u.resp.SetData(domain.DownloadedImage{Name: name, Variant: variant, Data: data})
}

type DownloadImageFromPublicURL struct {
	downloader backend.Downloader
	rawURL     string
	name       string
	resp       *response.Response[domain.DownloadedImage]
}

// NewDownloadImageFromPublicURL fetches an image from any URL. An empty name is taken from the URL path.
func NewDownloadImageFromPublicURL(downloader backend.Downloader, rawURL, name string, resp *response.Response[domain.DownloadedImage]) *DownloadImageFromPublicURL {
	return &DownloadImageFromPublicURL{downloader: downloader, rawURL: rawURL, name: name, resp: resp}
}

func (u *DownloadImageFromPublicURL) Execute(ctx context.Context) {
	parsed, err := url.ParseRequestURI(u.rawURL)
	if err != nil || parsed.Host == "" {
		u.resp.Report(&domain.ValidationError{Message: fmt.Sprintf("invalid image url %q", u.rawURL)})
		return
	}
	name := u.name
	if name == "" {
		name = path.Base(parsed.Path)
	}
	data, err := u.downloader.Download(ctx, u.rawURL, nil)
	if err != nil {
		u.resp.Report(fmt.Errorf("download %s: %w", u.rawURL, err))
		return
	}
	u.resp.SetData(domain.DownloadedImage{Name: name, Variant: domain.VariantOriginal, Data: data})
}
