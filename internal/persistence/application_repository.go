package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/IliaW/lead-hunter/internal/model"
)

// ApplicationRepository is the postgres sink. Rows are keyed by application id, so a
// replayed append is a no-op.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (ar *ApplicationRepository) Name() string {
	return "postgres"
}

func (ar *ApplicationRepository) Append(ctx context.Context, app *model.ScoredApplication) error {
	if ar.db == nil {
		return ErrSinkNotConfigured
	}
	p := app.Profile
	_, err := ar.db.ExecContext(ctx, `INSERT INTO applications
    (id, submitted_at, name, email, phone, age, nationality, city, position, level, foot, budget,
     passport, video, score, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO NOTHING;`,
		app.ID,
		app.SubmittedAt.UTC(),
		p.Name,
		p.Email,
		p.Phone,
		p.Age,
		p.Nationality,
		p.City,
		p.Position.String(),
		p.Level.String(),
		p.Foot.String(),
		app.BudgetLabel,
		p.Passport,
		p.Video,
		app.Score,
		string(app.Status))
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	return nil
}
