package emulator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"annoctl/internal/backend"
	"annoctl/internal/domain"
)

func (s Store) GetTeam(ctx context.Context, teamID int) (domain.Team, error) {
	var t domain.Team
	err := s.DB.QueryRowContext(ctx, `SELECT id,name,description FROM teams WHERE id=?`, teamID).Scan(&t.ID, &t.Name, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return t, notFound("team", teamID)
	}
	if err != nil {
		return t, err
	}
	if t.Users, err = s.SearchUsers(ctx, teamID, UserQuery{}); err != nil {
		return t, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT email,token,user_role FROM invitations WHERE team_id=? ORDER BY rowid`, teamID)
	if err != nil {
		return t, err
	}
	defer rows.Close()
	t.PendingInvitations = []domain.Invitation{}
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.Email, &inv.Token, &inv.Role); err != nil {
			return t, err
		}
		t.PendingInvitations = append(t.PendingInvitations, inv)
	}
	return t, rows.Err()
}

type UserQuery struct {
	Email     string
	FirstName string
	LastName  string
}

func (s Store) SearchUsers(ctx context.Context, teamID int, q UserQuery) ([]domain.User, error) {
	where := []string{"team_id=?"}
	args := []any{teamID}
	for col, v := range map[string]string{"email": q.Email, "first_name": q.FirstName, "last_name": q.LastName} {
		if v != "" {
			where = append(where, col+"=?")
			args = append(args, v)
		}
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id,email,first_name,last_name,user_role FROM users WHERE `+
		strings.Join(where, " AND ")+` ORDER BY email`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Invite records a pending invitation. Inviting a current member or an already
// invited address is a conflict.
func (s Store) Invite(ctx context.Context, teamID int, email string, role domain.UserRole) (domain.Invitation, error) {
	if email == "" {
		return domain.Invitation{}, invalid("email is required")
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM users WHERE team_id=? AND email=?) +
		(SELECT COUNT(*) FROM invitations WHERE team_id=? AND email=?)`, teamID, email, teamID, email).Scan(&n); err != nil {
		return domain.Invitation{}, err
	}
	if n > 0 {
		return domain.Invitation{}, fmt.Errorf("%s is already a member or invited: %w", email, ErrConflict)
	}
	inv := domain.Invitation{Email: email, Token: uuid.NewString(), Role: role}
	if _, err := s.DB.ExecContext(ctx, `INSERT INTO invitations(token,team_id,email,user_role) VALUES (?,?,?,?)`,
		inv.Token, teamID, inv.Email, inv.Role); err != nil {
		return domain.Invitation{}, err
	}
	return inv, nil
}

func (s Store) DeleteInvitation(ctx context.Context, teamID int, token, email string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM invitations WHERE team_id=? AND token=? AND email=?`, teamID, token, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("invitation", email)
	}
	return nil
}

// AddUser makes a team member directly, bypassing the invitation flow. The emulator
// seeds contributors with it.
func (s Store) AddUser(ctx context.Context, teamID int, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, err := s.DB.ExecContext(ctx, `INSERT INTO users(id,team_id,email,first_name,last_name,user_role) VALUES (?,?,?,?,?,?)`,
		u.ID, teamID, u.Email, u.FirstName, u.LastName, u.Role); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s Store) ListProjectUsers(ctx context.Context, teamID, projectID int) ([]domain.User, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT u.id,u.email,u.first_name,u.last_name,pu.user_role
		FROM project_users pu JOIN users u ON u.id = pu.user_id
		WHERE pu.project_id=? ORDER BY u.email`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ShareProject grants a team member a role on the project, replacing any earlier role.
func (s Store) ShareProject(ctx context.Context, teamID, projectID int, userID string, role domain.UserRole) error {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE team_id=? AND id=?`, teamID, userID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return notFound("user", userID)
	}
	_, err := s.DB.ExecContext(ctx, `INSERT INTO project_users(project_id,user_id,user_role) VALUES (?,?,?)
		ON CONFLICT(project_id, user_id) DO UPDATE SET user_role=excluded.user_role`, projectID, userID, role)
	return err
}

// CreateExport records an export request. Preparation itself is not emulated; the
// export stays in its initial status.
func (s Store) CreateExport(ctx context.Context, teamID, projectID int, req backend.PrepareExportRequest) (domain.Export, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return domain.Export{}, err
	}
	folders := req.Folders
	if folders == nil {
		folders = []string{}
	}
	statuses := req.AnnotationStatuses
	if statuses == nil {
		statuses = []domain.AnnotationStatus{}
	}
	for _, st := range statuses {
		if !st.Valid() {
			return domain.Export{}, invalid("unknown annotation status %d", st)
		}
	}
	foldersJSON, _ := json.Marshal(folders)
	statusesJSON, _ := json.Marshal(statuses)
	e := domain.Export{
		ProjectID:          projectID,
		Name:               "export-" + uuid.NewString()[:8],
		Status:             1,
		Folders:            folders,
		AnnotationStatuses: statuses,
		IncludeFuse:        req.IncludeFuse,
		OnlyPinned:         req.OnlyPinned,
		CreatedAt:          s.now(),
	}
	res, err := s.DB.ExecContext(ctx, `INSERT INTO exports(project_id,name,status,folders,annotation_statuses,include_fuse,only_pinned,created_at)
		VALUES (?,?,?,?,?,?,?,?)`, e.ProjectID, e.Name, e.Status, string(foldersJSON), string(statusesJSON), e.IncludeFuse, e.OnlyPinned, e.CreatedAt)
	if err != nil {
		return domain.Export{}, err
	}
	id, _ := res.LastInsertId()
	e.ID = int(id)
	return e, nil
}
