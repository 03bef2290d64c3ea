package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/mirrorsensei/sensei/internal/study"
)

// historyRepo implements HistoryRepo on SQLite.
type historyRepo struct {
	db  *sql.DB
	sql *entsql.DialectBuilder
	seq *sequenceCounter
}

func (r *historyRepo) Append(ctx context.Context, entry HistoryEntry) (*study.HistoryItem, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	item := &study.HistoryItem{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Query:     entry.Query,
		Response:  entry.Response,
		Category:  entry.Category,
		Level:     entry.Level,
	}

	query, args := r.sql.Insert(historyTable.Name).
		Columns("id", "sequence", "timestamp", "query", "response", "category", "level").
		Values(item.ID, seqNum, item.Timestamp.UnixMilli(), item.Query, item.Response, string(item.Category), string(item.Level)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("save history item: %w", err)
	}
	return item, nil
}

func (r *historyRepo) List(ctx context.Context, search string) ([]study.HistoryItem, error) {
	query, args := r.sql.Select("id", "timestamp", "query", "response", "category", "level").
		From(entsql.Table(historyTable.Name)).
		OrderBy(entsql.Desc("sequence")).
		Limit(HistoryLimit).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	items := make([]study.HistoryItem, 0, HistoryLimit)
	for rows.Next() {
		var (
			it              study.HistoryItem
			ts              int64
			category, level string
		)
		if err := rows.Scan(&it.ID, &ts, &it.Query, &it.Response, &category, &level); err != nil {
			return nil, fmt.Errorf("scan history item: %w", err)
		}
		it.Timestamp = time.UnixMilli(ts).UTC()
		it.Category = study.Category(category)
		it.Level = study.Level(level)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return filterHistory(items, search), nil
}
