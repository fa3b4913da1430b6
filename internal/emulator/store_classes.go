package emulator

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"annoctl/internal/backend"
	"annoctl/internal/domain"
)

// ListClasses returns the project's classes with their attribute groups. A non-empty
// prefix keeps only names starting with it.
func (s Store) ListClasses(ctx context.Context, teamID, projectID int, prefix string) ([]domain.AnnotationClass, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id,project_id,name,color,type FROM annotation_classes
		WHERE project_id=? AND (?='' OR substr(name, 1, length(?))=?) ORDER BY id`, projectID, prefix, prefix, prefix)
	if err != nil {
		return nil, err
	}
	out := []domain.AnnotationClass{}
	for rows.Next() {
		var c domain.AnnotationClass
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Color, &c.Type); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		groups, err := s.attributeGroups(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].AttributeGroups = groups
	}
	return out, nil
}

func (s Store) attributeGroups(ctx context.Context, classID int) ([]domain.AttributeGroup, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT g.id, g.name, g.is_multiselect, a.id, a.name
		FROM attribute_groups g LEFT JOIN attributes a ON a.group_id = g.id
		WHERE g.class_id=? ORDER BY g.id, a.id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := []domain.AttributeGroup{}
	for rows.Next() {
		var (
			g      domain.AttributeGroup
			attrID sql.NullInt64
			name   sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.IsMultiselect, &attrID, &name); err != nil {
			return nil, err
		}
		if n := len(groups); n == 0 || groups[n-1].ID != g.ID {
			g.ClassID = classID
			g.Attributes = []domain.Attribute{}
			groups = append(groups, g)
		}
		if attrID.Valid {
			last := &groups[len(groups)-1]
			last.Attributes = append(last.Attributes, domain.Attribute{ID: int(attrID.Int64), GroupID: last.ID, Name: name.String})
		}
	}
	return groups, rows.Err()
}

// CreateClasses inserts the classes in one transaction. Names already present in the
// project are left untouched and omitted from the result.
func (s Store) CreateClasses(ctx context.Context, teamID, projectID int, classes []backend.ClassInput) ([]domain.AnnotationClass, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	var ids []int64
	for _, c := range classes {
		if c.Name == "" {
			return nil, invalid("class name is required")
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM annotation_classes WHERE project_id=? AND name=?`, projectID, c.Name).Scan(&n); err != nil {
			return nil, err
		}
		if n > 0 {
			continue
		}
		typ := c.Type
		if typ == "" {
			typ = "object"
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO annotation_classes(project_id,name,color,type) VALUES (?,?,?,?)`, projectID, c.Name, c.Color, typ)
		if err != nil {
			return nil, fmt.Errorf("insert class %q: %w", c.Name, err)
		}
		classID, _ := res.LastInsertId()
		for _, g := range c.AttributeGroups {
			res, err := tx.ExecContext(ctx, `INSERT INTO attribute_groups(class_id,name,is_multiselect) VALUES (?,?,?)`, classID, g.Name, g.IsMultiselect)
			if err != nil {
				return nil, err
			}
			groupID, _ := res.LastInsertId()
			for _, a := range g.Attributes {
				if _, err := tx.ExecContext(ctx, `INSERT INTO attributes(group_id,name) VALUES (?,?)`, groupID, a.Name); err != nil {
					return nil, err
				}
			}
		}
		ids = append(ids, classID)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	all, err := s.ListClasses(ctx, teamID, projectID, "")
	if err != nil {
		return nil, err
	}
	created := map[int]bool{}
	for _, id := range ids {
		created[int(id)] = true
	}
	out := []domain.AnnotationClass{}
	for _, c := range all {
		if created[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s Store) DeleteClass(ctx context.Context, teamID, projectID, id int) error {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM annotation_classes WHERE project_id=? AND id=?`, projectID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("annotation class", id)
	}
	return nil
}

func (s Store) ListSettings(ctx context.Context, teamID, projectID int) ([]domain.ProjectSetting, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id,project_id,attribute,value FROM project_settings WHERE project_id=? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.ProjectSetting{}
	for rows.Next() {
		var (
			st  domain.ProjectSetting
			raw string
		)
		if err := rows.Scan(&st.ID, &st.ProjectID, &st.Attribute, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &st.Value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", st.Attribute, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// SaveSettings upserts each attribute and returns the full list.
func (s Store) SaveSettings(ctx context.Context, teamID, projectID int, settings []backend.SettingInput) ([]domain.ProjectSetting, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	for _, st := range settings {
		if st.Attribute == "" {
			return nil, invalid("setting attribute is required")
		}
		raw, err := json.Marshal(st.Value)
		if err != nil {
			return nil, invalid("setting %s: %v", st.Attribute, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO project_settings(project_id,attribute,value) VALUES (?,?,?)
			ON CONFLICT(project_id, attribute) DO UPDATE SET value=excluded.value`, projectID, st.Attribute, string(raw)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.ListSettings(ctx, teamID, projectID)
}

func (s Store) ListWorkflows(ctx context.Context, teamID, projectID int) ([]domain.Workflow, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT w.id, w.project_id, w.step, w.class_id, c.name, w.tool
		FROM workflows w JOIN annotation_classes c ON c.id = w.class_id
		WHERE w.project_id=? ORDER BY w.step, w.id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Workflow{}
	for rows.Next() {
		var w domain.Workflow
		if err := rows.Scan(&w.ID, &w.ProjectID, &w.Step, &w.ClassID, &w.ClassName, &w.Tool); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveWorkflows replaces the project's workflow. Every step must reference a class of the project.
func (s Store) SaveWorkflows(ctx context.Context, teamID, projectID int, steps []backend.WorkflowInput) ([]domain.Workflow, error) {
	if _, err := s.GetProject(ctx, teamID, projectID); err != nil {
		return nil, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM workflows WHERE project_id=?`, projectID); err != nil {
		return nil, err
	}
	for _, w := range steps {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM annotation_classes WHERE project_id=? AND id=?`, projectID, w.ClassID).Scan(&n); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, invalid("workflow step %d references unknown class %d", w.Step, w.ClassID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO workflows(project_id,step,class_id,tool) VALUES (?,?,?,?)`, projectID, w.Step, w.ClassID, w.Tool); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.ListWorkflows(ctx, teamID, projectID)
}
