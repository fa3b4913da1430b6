package emulator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"annoctl/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid request")
)

// Store is the emulator's SQLite state. Every method scopes by team and project ids
// the way the platform does; ids from other teams are reported as missing.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func (s Store) now() string {
	if s.Now != nil {
		return s.Now().UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

// EnsureTeam provisions a team and its owner the first time a token for it is seen.
func (s Store) EnsureTeam(ctx context.Context, teamID int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO teams(id,name) VALUES (?,?)`, teamID, fmt.Sprintf("Team %d", teamID))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users(id,team_id,email,first_name,last_name,user_role) VALUES (?,?,?,?,?,?)`,
			fmt.Sprintf("owner-%d", teamID), teamID, fmt.Sprintf("owner@team%d.local", teamID), "Team", "Owner", domain.RoleAdmin); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const projectCols = `id,team_id,name,description,type,status,created_at,updated_at`

func scanProject(sc scanner) (domain.Project, error) {
	var p domain.Project
	err := sc.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.Type, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProjects matches name as a substring; empty matches all.
func (s Store) ListProjects(ctx context.Context, teamID int, name string) ([]domain.Project, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+projectCols+` FROM projects
		WHERE team_id=? AND (?='' OR instr(name, ?)>0) ORDER BY id`, teamID, name, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s Store) GetProject(ctx context.Context, teamID, id int) (domain.Project, error) {
	p, err := scanProject(s.DB.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE team_id=? AND id=?`, teamID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, notFound("project", id)
	}
	return p, err
}

// CreateProject inserts the project together with its root folder.
func (s Store) CreateProject(ctx context.Context, teamID int, name, description string, typ domain.ProjectType) (domain.Project, error) {
	now := s.now()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `INSERT INTO projects(team_id,name,description,type,status,created_at,updated_at) VALUES (?,?,?,?,1,?,?)`,
		teamID, name, description, typ, now, now)
	if err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	if _, err := tx.ExecContext(ctx, `INSERT INTO folders(team_id,project_id,name,created_at,updated_at) VALUES (?,?,?,?,?)`,
		teamID, id, domain.RootFolderName, now, now); err != nil {
		return domain.Project{}, fmt.Errorf("insert root folder: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return s.GetProject(ctx, teamID, int(id))
}

func (s Store) UpdateProject(ctx context.Context, teamID, id int, name, description string) (domain.Project, error) {
	res, err := s.DB.ExecContext(ctx, `UPDATE projects SET name=?, description=?, updated_at=? WHERE team_id=? AND id=?`,
		name, description, s.now(), teamID, id)
	if err != nil {
		return domain.Project{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Project{}, notFound("project", id)
	}
	return s.GetProject(ctx, teamID, id)
}

func (s Store) DeleteProject(ctx context.Context, teamID, id int) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM projects WHERE team_id=? AND id=?`, teamID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("project", id)
	}
	return nil
}

const folderCols = `id,team_id,project_id,name,status,created_at,updated_at`

func scanFolder(sc scanner) (domain.Folder, error) {
	var f domain.Folder
	err := sc.Scan(&f.ID, &f.TeamID, &f.ProjectID, &f.Name, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (s Store) ListFolders(ctx context.Context, teamID, projectID int, name string) ([]domain.Folder, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+folderCols+` FROM folders
		WHERE project_id=? AND (?='' OR instr(name, ?)>0) ORDER BY id`, projectID, name, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s Store) GetFolder(ctx context.Context, teamID, projectID, id int) (domain.Folder, error) {
	f, err := scanFolder(s.DB.QueryRowContext(ctx, `SELECT `+folderCols+` FROM folders WHERE team_id=? AND project_id=? AND id=?`,
		teamID, projectID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return f, notFound("folder", id)
	}
	return f, err
}

// CreateFolder stores the folder under the first free name among name, "name (1)", "name (2)", ...
func (s Store) CreateFolder(ctx context.Context, teamID, projectID int, name string) (domain.Folder, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return domain.Folder{}, err
	}
	if name == "" || name == domain.RootFolderName {
		return domain.Folder{}, invalid("folder name %q is not allowed", name)
	}
	candidate := name
	for i := 1; ; i++ {
		var n int
		if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE project_id=? AND name=?`, projectID, candidate).Scan(&n); err != nil {
			return domain.Folder{}, err
		}
		if n == 0 {
			break
		}
		candidate = fmt.Sprintf("%s (%d)", name, i)
	}
	now := s.now()
	res, err := s.DB.ExecContext(ctx, `INSERT INTO folders(team_id,project_id,name,created_at,updated_at) VALUES (?,?,?,?,?)`,
		teamID, projectID, candidate, now, now)
	if err != nil {
		return domain.Folder{}, err
	}
	id, _ := res.LastInsertId()
	return s.GetFolder(ctx, teamID, projectID, int(id))
}

func (s Store) RenameFolder(ctx context.Context, teamID, projectID, id int, name string) (domain.Folder, error) {
	f, err := s.GetFolder(ctx, teamID, projectID, id)
	if err != nil {
		return f, err
	}
	if f.IsRoot() || name == domain.RootFolderName || name == "" {
		return f, invalid("the root folder cannot be renamed or replaced")
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE project_id=? AND name=? AND id<>?`, projectID, name, id).Scan(&n); err != nil {
		return f, err
	}
	if n > 0 {
		return f, fmt.Errorf("folder %q already exists: %w", name, ErrConflict)
	}
	if _, err := s.DB.ExecContext(ctx, `UPDATE folders SET name=?, updated_at=? WHERE id=?`, name, s.now(), id); err != nil {
		return f, err
	}
	return s.GetFolder(ctx, teamID, projectID, id)
}

// DeleteFolders removes the folders and their images. Unknown ids are ignored; the root folder is refused.
func (s Store) DeleteFolders(ctx context.Context, teamID, projectID int, ids []int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range ids {
		var name string
		err := tx.QueryRowContext(ctx, `SELECT name FROM folders WHERE team_id=? AND project_id=? AND id=?`, teamID, projectID, id).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		if name == domain.RootFolderName {
			return invalid("the root folder cannot be deleted")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id=?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
