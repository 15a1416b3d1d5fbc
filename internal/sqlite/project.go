package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/sciledger/internal/domain/project"
	"github.com/rpggio/sciledger/internal/ledger"
	"github.com/rpggio/sciledger/internal/repository"
)

const projectCounter = "projects"

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create allocates the next project id and stores the project with its team
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) (uint64, error) {
	var id uint64
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, projectCounter); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO projects (id, title, description, lead_researcher, status, data_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			int64(id),
			proj.Title,
			proj.Description,
			string(proj.LeadResearcher),
			string(proj.Status),
			proj.DataHash,
			proj.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		for i, member := range proj.Collaborators {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO project_collaborators (project_id, principal, position) VALUES (?, ?, ?)`,
				int64(id), string(member), i,
			); err != nil {
				return fmt.Errorf("failed to add collaborator: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get retrieves a project by ID with its collaborators in join order
func (r *ProjectRepository) Get(ctx context.Context, id uint64) (*project.Project, error) {
	query := `
		SELECT id, title, description, lead_researcher, status, data_hash, created_at
		FROM projects
		WHERE id = ?
	`

	var (
		proj   project.Project
		rawID  int64
		lead   string
		status string
	)
	err := r.db.QueryRowContext(ctx, query, int64(id)).Scan(
		&rawID,
		&proj.Title,
		&proj.Description,
		&lead,
		&status,
		&proj.DataHash,
		&proj.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	proj.ID = uint64(rawID)
	proj.LeadResearcher = ledger.Principal(lead)
	proj.Status = project.Status(status)
	proj.CreatedAt = proj.CreatedAt.UTC()

	proj.Collaborators, err = r.collaborators(ctx, id)
	if err != nil {
		return nil, err
	}
	return &proj, nil
}

// Exists reports whether a project with id has been created
func (r *ProjectRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return true, nil
}

// AddCollaborator appends a member to the team; existing members are left in place
func (r *ProjectRepository) AddCollaborator(ctx context.Context, id uint64, collaborator ledger.Principal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO project_collaborators (project_id, principal, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1
		FROM project_collaborators
		WHERE project_id = ?
	`, int64(id), string(collaborator), int64(id))
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the project status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uint64, status project.Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET status = ? WHERE id = ?`, string(status), int64(id))
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return checkAffected(result, repository.ErrNotFound)
}

// UpdateDataHash overwrites the project data digest
func (r *ProjectRepository) UpdateDataHash(ctx context.Context, id uint64, hash ledger.Digest) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET data_hash = ? WHERE id = ?`, hash, int64(id))
	if err != nil {
		return fmt.Errorf("failed to update project data: %w", err)
	}
	return checkAffected(result, repository.ErrNotFound)
}

// Count returns the number of project ids allocated
func (r *ProjectRepository) Count(ctx context.Context) (uint64, error) {
	return counterValue(ctx, r.db, projectCounter)
}

func (r *ProjectRepository) collaborators(ctx context.Context, id uint64) ([]ledger.Principal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT principal FROM project_collaborators WHERE project_id = ? ORDER BY position`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	var members []ledger.Principal
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		members = append(members, ledger.Principal(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collaborators: %w", err)
	}
	return members, nil
}
