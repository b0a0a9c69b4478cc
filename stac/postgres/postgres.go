// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package postgres stores a STAC index in PostgreSQL.  Items keep
// their bounding box and time interval in dedicated columns so the
// search predicates run in SQL; the full documents ride along as
// JSONB.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	// Register the "postgres" database/sql driver.
	_ "github.com/lib/pq"

	"github.com/gridpub/gridpub/stac"
)

// Index is a PostgreSQL-backed stac.Index.
type Index struct {
	db *sql.DB
}

var _ stac.Index = (*Index)(nil)

// New creates an index using the provided PostgreSQL connection
// string.  The connection string may be an expanded PostgreSQL
// string, a "postgres:" URL, or a URL without a scheme; parameters
// missing from it (or all of them, if it is empty) are filled in from
// the standard libpq environment variables.  The schema is upgraded
// as a side effect.
//
// The returned Index carries a connection pool with it; call New()
// sparingly and share the result.
func New(connectionString string) (*Index, error) {
	if len(connectionString) >= 2 && connectionString[0] == '/' && connectionString[1] == '/' {
		connectionString = "postgres:" + connectionString
	}
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	if err := Upgrade(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

// Close releases the connection pool.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// DB exposes the underlying connection pool, for migration tooling.
func (idx *Index) DB() *sql.DB {
	return idx.db
}

// Collections lists all collections, ordered by id.
func (idx *Index) Collections(ctx context.Context) ([]stac.Collection, error) {
	rows, err := idx.db.QueryContext(ctx,
		"SELECT doc FROM stac_collection ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []stac.Collection{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var coll stac.Collection
		if err := json.Unmarshal(doc, &coll); err != nil {
			return nil, err
		}
		out = append(out, coll)
	}
	return out, rows.Err()
}

// Collection retrieves one collection by id.
func (idx *Index) Collection(ctx context.Context, id string) (*stac.Collection, error) {
	var doc []byte
	err := idx.db.QueryRowContext(ctx,
		"SELECT doc FROM stac_collection WHERE id=$1", id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, stac.ErrNoSuchCollection{ID: id}
	}
	if err != nil {
		return nil, err
	}
	var coll stac.Collection
	if err := json.Unmarshal(doc, &coll); err != nil {
		return nil, err
	}
	return &coll, nil
}

// Items searches items, ordered by id.
func (idx *Index) Items(ctx context.Context, search stac.Search) ([]stac.Item, error) {
	limit := search.Limit
	if limit <= 0 {
		limit = stac.DefaultLimit
	}

	conditions := []string{}
	params := []interface{}{}
	param := func(v interface{}) string {
		params = append(params, v)
		return fmt.Sprintf("$%d", len(params))
	}

	if len(search.Collections) > 0 {
		placeholders := make([]string, len(search.Collections))
		for i, id := range search.Collections {
			placeholders[i] = param(id)
		}
		conditions = append(conditions,
			"collection IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(search.Bbox) >= 4 {
		conditions = append(conditions, fmt.Sprintf(
			"west IS NOT NULL AND west<=%s AND east>=%s AND south<=%s AND north>=%s",
			param(search.Bbox[2]), param(search.Bbox[0]),
			param(search.Bbox[3]), param(search.Bbox[1])))
	}
	// Items with no temporal columns match any interval, same as the
	// memory index.
	if search.End != nil {
		conditions = append(conditions, fmt.Sprintf(
			"(start_time IS NULL OR start_time<=%s)", param(*search.End)))
	}
	if search.Start != nil {
		conditions = append(conditions, fmt.Sprintf(
			"(end_time IS NULL OR end_time>=%s)", param(*search.Start)))
	}

	query := "SELECT doc FROM stac_item"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id LIMIT " + param(limit)

	rows, err := idx.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []stac.Item{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var item stac.Item
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Item retrieves one item by id.
func (idx *Index) Item(ctx context.Context, id string) (*stac.Item, error) {
	var doc []byte
	err := idx.db.QueryRowContext(ctx,
		"SELECT doc FROM stac_item WHERE id=$1", id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, stac.ErrNoSuchItem{ID: id}
	}
	if err != nil {
		return nil, err
	}
	var item stac.Item
	if err := json.Unmarshal(doc, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertCollection inserts or replaces a collection.
func (idx *Index) UpsertCollection(ctx context.Context, coll stac.Collection) error {
	doc, err := json.Marshal(coll)
	if err != nil {
		return err
	}
	_, err = idx.db.ExecContext(ctx, `
		INSERT INTO stac_collection(id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc=EXCLUDED.doc`,
		coll.ID, doc)
	return err
}

// UpsertItem inserts or replaces an item.
func (idx *Index) UpsertItem(ctx context.Context, item stac.Item) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return err
	}

	var west, south, east, north interface{}
	if len(item.Bbox) >= 4 {
		west, south, east, north = item.Bbox[0], item.Bbox[1], item.Bbox[2], item.Bbox[3]
	}

	times, err := item.Times()
	if err != nil {
		return err
	}
	var start, end interface{}
	if times.Datetime != nil {
		start, end = *times.Datetime, *times.Datetime
	} else {
		if times.Start != nil {
			start = *times.Start
		}
		if times.End != nil {
			end = *times.End
		}
	}

	_, err = idx.db.ExecContext(ctx, `
		INSERT INTO stac_item(id, collection, west, south, east, north,
			start_time, end_time, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			collection=EXCLUDED.collection,
			west=EXCLUDED.west, south=EXCLUDED.south,
			east=EXCLUDED.east, north=EXCLUDED.north,
			start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time,
			doc=EXCLUDED.doc`,
		item.ID, item.Collection, west, south, east, north, start, end, doc)
	return err
}
