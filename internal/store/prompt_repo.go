package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/mirrorsensei/sensei/internal/study"
)

// promptRepo implements PromptRepo on SQLite.
type promptRepo struct {
	db  *sql.DB
	sql *entsql.DialectBuilder
}

func (r *promptRepo) PutCategoryPrompt(ctx context.Context, category study.Category, subCategory, text string) error {
	query, args := r.sql.Insert(adminPromptsTable.Name).
		Columns("id", "category", "sub_category", "prompt", "updated_at").
		Values(study.CategoryPromptKey(category, subCategory), string(category), subCategory, text, time.Now().UnixMilli()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save category prompt: %w", err)
	}
	return nil
}

func (r *promptRepo) PutLevelPrompt(ctx context.Context, level study.Level, text string) error {
	query, args := r.sql.Insert(levelPromptsTable.Name).
		Columns("id", "level", "prompt", "updated_at").
		Values(study.LevelPromptKey(level), string(level), text, time.Now().UnixMilli()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save level prompt: %w", err)
	}
	return nil
}

func (r *promptRepo) ListCategoryPrompts(ctx context.Context) ([]study.AdminPrompt, error) {
	query, args := r.sql.Select("id", "category", "sub_category", "prompt", "updated_at").
		From(entsql.Table(adminPromptsTable.Name)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query category prompts: %w", err)
	}
	defer rows.Close()

	var out []study.AdminPrompt
	for rows.Next() {
		var (
			p         study.AdminPrompt
			category  string
			updatedAt int64
		)
		if err := rows.Scan(&p.ID, &category, &p.SubCategory, &p.Prompt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan category prompt: %w", err)
		}
		p.Category = study.Category(category)
		p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *promptRepo) ListLevelPrompts(ctx context.Context) ([]study.LevelPrompt, error) {
	query, args := r.sql.Select("id", "level", "prompt", "updated_at").
		From(entsql.Table(levelPromptsTable.Name)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query level prompts: %w", err)
	}
	defer rows.Close()

	var out []study.LevelPrompt
	for rows.Next() {
		var (
			p         study.LevelPrompt
			level     string
			updatedAt int64
		)
		if err := rows.Scan(&p.ID, &level, &p.Prompt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan level prompt: %w", err)
		}
		p.Level = study.Level(level)
		p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
