package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"annoctl/internal/condition"
	"annoctl/internal/domain"
	"annoctl/internal/response"
)

type CreateAnnotationClasses struct {
	classes ClassStore
	input   []domain.AnnotationClass
	log     *slog.Logger
	resp    *response.Response[[]domain.AnnotationClass]
}

// NewCreateAnnotationClasses creates the classes whose names the project does not have yet.
func NewCreateAnnotationClasses(classes ClassStore, input []domain.AnnotationClass, log *slog.Logger, resp *response.Response[[]domain.AnnotationClass]) *CreateAnnotationClasses {
	return &CreateAnnotationClasses{classes: classes, input: input, log: log, resp: resp}
}

func (u *CreateAnnotationClasses) Execute(ctx context.Context) {
	existing, err := u.classes.GetAll(ctx, condition.Condition{})
	if err != nil {
		u.resp.Report(fmt.Errorf("list annotation classes: %w", err))
		return
	}
	have := map[string]bool{}
	for _, c := range existing {
		have[c.Name] = true
	}
	var toCreate []domain.AnnotationClass
	for _, c := range u.input {
		if c.Name == "" {
			u.resp.Report(&domain.ValidationError{Message: "annotation class name is required"})
			continue
		}
		if have[c.Name] {
			u.log.Warn("annotation class already exists; skipping", "name", c.Name)
			continue
		}
		have[c.Name] = true
		toCreate = append(toCreate, c)
	}
	created, err := u.classes.InsertMany(ctx, toCreate)
	if err != nil {
		u.resp.Report(fmt.Errorf("create annotation classes: %w", err))
		return
	}
	u.resp.SetData(created)
}

type SearchAnnotationClasses struct {
	classes ClassStore
	prefix  string
	resp    *response.Response[[]domain.AnnotationClass]
}

func NewSearchAnnotationClasses(classes ClassStore, prefix string, resp *response.Response[[]domain.AnnotationClass]) *SearchAnnotationClasses {
	return &SearchAnnotationClasses{classes: classes, prefix: prefix, resp: resp}
}

func (u *SearchAnnotationClasses) Execute(ctx context.Context) {
	var cond condition.Condition
	if u.prefix != "" {
		cond = condition.Eq("name_prefix", u.prefix)
	}
	items, err := u.classes.GetAll(ctx, cond)
	if err != nil {
		u.resp.Report(fmt.Errorf("search annotation classes: %w", err))
		return
	}
	out := make([]domain.AnnotationClass, 0, len(items))
	for _, c := range items {
		if strings.HasPrefix(c.Name, u.prefix) {
			out = append(out, c)
		}
	}
	u.resp.SetData(out)
}

type UploadAnnotations struct {
	images ImageStore
	store  ObjectStore
	folder domain.Folder
	files  []domain.AnnotationFile
	pre    bool
	log    *slog.Logger
	resp   *response.Response[domain.AnnotationUploadResult]
}

// NewUploadAnnotations stores each file next to the image it names, AnnotationChunkSize
// images per round. pre selects the pre-annotation slot.
func NewUploadAnnotations(images ImageStore, store ObjectStore, folder domain.Folder, files []domain.AnnotationFile, pre bool, log *slog.Logger, resp *response.Response[domain.AnnotationUploadResult]) *UploadAnnotations {
	return &UploadAnnotations{images: images, store: store, folder: folder, files: files, pre: pre, log: log, resp: resp}
}

func (u *UploadAnnotations) Execute(ctx context.Context) {
	result := domain.AnnotationUploadResult{Uploaded: []string{}, Failed: []string{}, MissingImages: []string{}}
	for _, batch := range chunks(u.files, AnnotationChunkSize) {
		names := make([]string, len(batch))
		for i, f := range batch {
			names[i] = f.ImageName
		}
		found, err := u.images.GetBulk(ctx, u.folder.ID, names)
		if err != nil {
			u.resp.Report(fmt.Errorf("look up images: %w", err))
			result.Failed = append(result.Failed, names...)
			continue
		}
		byName := make(map[string]domain.Image, len(found))
		for _, img := range found {
			byName[img.Name] = img
		}
		for _, f := range batch {
			img, ok := byName[f.ImageName]
			if !ok {
				result.MissingImages = append(result.MissingImages, f.ImageName)
				continue
			}
			if !json.Valid(f.Data) {
				u.resp.Report(&domain.ValidationError{Message: fmt.Sprintf("annotation for %q is not valid json", f.ImageName)})
				result.Failed = append(result.Failed, f.ImageName)
				continue
			}
			key := img.AnnotationKey()
			if u.pre {
				key = img.PreAnnotationKey()
			}
			if err := u.store.Put(ctx, key, f.Data); err != nil {
				u.resp.Report(fmt.Errorf("upload annotation for %q: %w", f.ImageName, err))
				result.Failed = append(result.Failed, f.ImageName)
				continue
			}
			result.Uploaded = append(result.Uploaded, f.ImageName)
		}
	}
	if len(result.MissingImages) > 0 {
		u.log.Warn("annotations reference images missing from the folder", "folder", u.folder.Name, "count", len(result.MissingImages))
	}
	u.resp.SetData(result)
}

// ImageRef addresses one image by folder and name inside a bound project.
type ImageRef struct {
	Images  ImageStore
	Classes ClassStore
	Folder  domain.Folder
	Name    string
}

type CopyImageAnnotationClasses struct {
	from  ImageRef
	to    ImageRef
	store ObjectStore
	log   *slog.Logger
	resp  *response.Response[domain.Image]
}

// NewCopyImageAnnotationClasses copies an image's annotations to an image of another
// project, remapping class and attribute ids by name. Classes the target project lacks
// are created first.
func NewCopyImageAnnotationClasses(from, to ImageRef, store ObjectStore, log *slog.Logger, resp *response.Response[domain.Image]) *CopyImageAnnotationClasses {
	return &CopyImageAnnotationClasses{from: from, to: to, store: store, log: log, resp: resp}
}

func (u *CopyImageAnnotationClasses) Execute(ctx context.Context) {
	src, err := lookupImage(ctx, u.from)
	if err != nil {
		u.resp.Report(err)
		return
	}
	dst, err := lookupImage(ctx, u.to)
	if err != nil {
		u.resp.Report(err)
		return
	}
	raw, err := u.store.Get(ctx, src.AnnotationKey())
	if err != nil {
		u.resp.Report(fmt.Errorf("read annotations of %q: %w", src.Name, err))
		return
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		u.resp.Report(fmt.Errorf("decode annotations of %q: %w", src.Name, err))
		return
	}

	srcClasses, err := u.from.Classes.GetAll(ctx, condition.Condition{})
	if err != nil {
		u.resp.Report(fmt.Errorf("list source classes: %w", err))
		return
	}
	dstClasses, err := u.to.Classes.GetAll(ctx, condition.Condition{})
	if err != nil {
		u.resp.Report(fmt.Errorf("list target classes: %w", err))
		return
	}
	srcByID := map[int]domain.AnnotationClass{}
	for _, c := range srcClasses {
		srcByID[c.ID] = c
	}
	dstByName := map[string]domain.AnnotationClass{}
	for _, c := range dstClasses {
		dstByName[c.Name] = c
	}

	instances, _ := doc["instances"].([]any)
	var missing []domain.AnnotationClass
	for _, inst := range instances {
		m, ok := inst.(map[string]any)
		if !ok {
			continue
		}
		c, ok := srcByID[intOf(m["classId"])]
		if !ok {
			continue
		}
		if _, ok := dstByName[c.Name]; !ok {
			missing = append(missing, c)
			dstByName[c.Name] = c
		}
	}
	if len(missing) > 0 {
		created, err := u.to.Classes.InsertMany(ctx, missing)
		if err != nil {
			u.resp.Report(fmt.Errorf("create missing classes: %w", err))
			return
		}
		for _, c := range created {
			dstByName[c.Name] = c
		}
		u.log.Info("created classes missing from the target project", "count", len(created))
	}

	for _, inst := range instances {
		m, ok := inst.(map[string]any)
		if !ok {
			continue
		}
		c, ok := srcByID[intOf(m["classId"])]
		if !ok {
			m["classId"] = -1
			continue
		}
		target := dstByName[c.Name]
		m["classId"] = target.ID
		m["className"] = target.Name
		remapAttributes(m, c, target)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		u.resp.Report(err)
		return
	}
	if err := u.store.Put(ctx, dst.AnnotationKey(), out); err != nil {
		u.resp.Report(fmt.Errorf("write annotations of %q: %w", dst.Name, err))
		return
	}
	u.resp.SetData(dst)
}

func lookupImage(ctx context.Context, ref ImageRef) (domain.Image, error) {
	found, err := ref.Images.GetBulk(ctx, ref.Folder.ID, []string{ref.Name})
	if err != nil {
		return domain.Image{}, fmt.Errorf("look up image %q: %w", ref.Name, err)
	}
	for _, img := range found {
		if img.Name == ref.Name {
			return img, nil
		}
	}
	return domain.Image{}, &domain.NotFoundError{Kind: "image", Name: ref.Name}
}

// remapAttributes rewrites attribute and group ids from src's to dst's by group and attribute name.
// Attributes dst does not have are dropped.
func remapAttributes(inst map[string]any, src, dst domain.AnnotationClass) {
	attrs, ok := inst["attributes"].([]any)
	if !ok {
		return
	}
	type attrKey struct{ group, name string }
	srcNames := map[int]attrKey{}
	for _, g := range src.AttributeGroups {
		for _, a := range g.Attributes {
			srcNames[a.ID] = attrKey{g.Name, a.Name}
		}
	}
	dstIDs := map[attrKey][2]int{}
	for _, g := range dst.AttributeGroups {
		for _, a := range g.Attributes {
			dstIDs[attrKey{g.Name, a.Name}] = [2]int{g.ID, a.ID}
		}
	}
	kept := make([]any, 0, len(attrs))
	for _, a := range attrs {
		am, ok := a.(map[string]any)
		if !ok {
			continue
		}
		k, ok := srcNames[intOf(am["id"])]
		if !ok {
			continue
		}
		ids, ok := dstIDs[k]
		if !ok {
			continue
		}
		am["groupId"], am["id"] = ids[0], ids[1]
		am["groupName"], am["name"] = k.group, k.name
		kept = append(kept, am)
	}
	inst["attributes"] = kept
}

func intOf(v any) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
