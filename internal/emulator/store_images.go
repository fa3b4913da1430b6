package emulator

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"annoctl/internal/domain"
)

const imageCols = `id,team_id,project_id,folder_id,name,path,annotation_status,upload_state,is_pinned,width,height,created_at,updated_at`

func scanImage(sc scanner) (domain.Image, error) {
	var img domain.Image
	err := sc.Scan(&img.ID, &img.TeamID, &img.ProjectID, &img.FolderID, &img.Name, &img.Path, &img.AnnotationStatus,
		&img.UploadState, &img.IsPinned, &img.Meta.Width, &img.Meta.Height, &img.CreatedAt, &img.UpdatedAt)
	return img, err
}

func (s Store) queryImages(ctx context.Context, query string, args ...any) ([]domain.Image, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

type ImageQuery struct {
	FolderID   int
	Name       string
	NamePrefix string
	Status     domain.AnnotationStatus
}

func (s Store) SearchImages(ctx context.Context, teamID, projectID int, q ImageQuery) ([]domain.Image, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	where := []string{"project_id=?"}
	args := []any{projectID}
	if q.FolderID != 0 {
		where = append(where, "folder_id=?")
		args = append(args, q.FolderID)
	}
	if q.Name != "" {
		where = append(where, "instr(name, ?)>0")
		args = append(args, q.Name)
	}
	if q.NamePrefix != "" {
		where = append(where, "substr(name, 1, ?)=?")
		args = append(args, len(q.NamePrefix), q.NamePrefix)
	}
	if q.Status != 0 {
		where = append(where, "annotation_status=?")
		args = append(args, q.Status)
	}
	return s.queryImages(ctx, `SELECT `+imageCols+` FROM images WHERE `+strings.Join(where, " AND ")+` ORDER BY id`, args...)
}

// ImagesByName returns the folder's images whose names are in names.
func (s Store) ImagesByName(ctx context.Context, teamID, projectID, folderID int, names []string) ([]domain.Image, error) {
	if _, err := s.GetFolder(ctx, teamID, projectID, folderID); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []domain.Image{}, nil
	}
	args := []any{folderID}
	for _, n := range names {
		args = append(args, n)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	return s.queryImages(ctx, `SELECT `+imageCols+` FROM images WHERE folder_id=? AND name IN (`+placeholders+`) ORDER BY id`, args...)
}

func (s Store) GetImage(ctx context.Context, teamID, projectID, id int) (domain.Image, error) {
	img, err := scanImage(s.DB.QueryRowContext(ctx, `SELECT `+imageCols+` FROM images WHERE team_id=? AND project_id=? AND id=?`,
		teamID, projectID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return img, notFound("image", id)
	}
	return img, err
}

func (s Store) UpdateImage(ctx context.Context, teamID, projectID, id int, status domain.AnnotationStatus, pinned bool) (domain.Image, error) {
	if !status.Valid() {
		return domain.Image{}, invalid("unknown annotation status %d", status)
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE images SET annotation_status=?, is_pinned=?, updated_at=? WHERE team_id=? AND project_id=? AND id=?`,
		status, pinned, s.now(), teamID, projectID, id)
	if err != nil {
		return domain.Image{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Image{}, notFound("image", id)
	}
	return s.GetImage(ctx, teamID, projectID, id)
}

func (s Store) DeleteImage(ctx context.Context, teamID, projectID, id int) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM images WHERE team_id=? AND project_id=? AND id=?`, teamID, projectID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("image", id)
	}
	return nil
}

func (s Store) CountImages(ctx context.Context, folderID int) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE folder_id=?`, folderID).Scan(&n)
	return n, err
}

// AttachImages registers files in the folder until it holds limit images. Names
// already present and files past the limit are skipped.
func (s Store) AttachImages(ctx context.Context, teamID, projectID, folderID int, state domain.UploadState, files []domain.ImageUpload, limit int) (attached, skipped []string, err error) {
	if _, err := s.GetFolder(ctx, teamID, projectID, folderID); err != nil {
		return nil, nil, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE folder_id=?`, folderID).Scan(&count); err != nil {
		return nil, nil, err
	}
	attached, skipped = []string{}, []string{}
	now := s.now()
	for _, f := range files {
		if count >= limit || f.Name == "" {
			skipped = append(skipped, f.Name)
			continue
		}
		status := f.AnnotationStatus
		if status == 0 {
			status = domain.StatusNotStarted
		}
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO images(team_id,project_id,folder_id,name,path,annotation_status,upload_state,width,height,created_at,updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`, teamID, projectID, folderID, f.Name, f.Path, status, state, f.Meta.Width, f.Meta.Height, now, now)
		if err != nil {
			return nil, nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			skipped = append(skipped, f.Name)
			continue
		}
		count++
		attached = append(attached, f.Name)
	}
	return attached, skipped, tx.Commit()
}
