package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"core/internal/model"
	"core/internal/utils"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations against the place catalog.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ColumnNames returns the ordered column names of the locaciones table. The
// context builder renders rows generically from this, so new catalog columns
// show up in the model context without code changes.
func (r *PostgresRepository) ColumnNames(ctx context.Context) ([]string, error) {
	var cols []string
	query := `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = 'locaciones'
		ORDER BY ordinal_position
	`
	if err := r.db.SelectContext(ctx, &cols, query); err != nil {
		return nil, fmt.Errorf("failed to describe locaciones: %w", err)
	}
	return cols, nil
}

// ListPlaceRows returns all catalog rows matching the optional category
// filter, as raw column-name→value maps ordered by name.
func (r *PostgresRepository) ListPlaceRows(ctx context.Context, category string) ([]model.PlaceRow, error) {
	query := "SELECT * FROM locaciones"
	var args []interface{}

	if category != "" {
		cond, params, _ := utils.BuildCategoryCondition(category, 1)
		if cond != "" {
			query += " WHERE " + cond
			args = params
		}
	}
	query += " ORDER BY nombre"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch places: %w", err)
	}
	defer rows.Close()

	var result []model.PlaceRow
	for rows.Next() {
		row := model.PlaceRow{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ListImages returns every media record joined with its place name, ordered
// by place so the context builder can group them.
func (r *PostgresRepository) ListImages(ctx context.Context) ([]model.PlaceImage, error) {
	var images []model.PlaceImage
	query := `
		SELECT l.nombre, li.url_imagen, li.descripcion
		FROM locacion_imagenes li
		JOIN locaciones l ON li.locacion_id = l.id
		ORDER BY l.nombre, li.id
	`
	if err := r.db.SelectContext(ctx, &images, query); err != nil {
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}
	return images, nil
}

// ListPlaceNames returns all distinct place names in the catalog.
func (r *PostgresRepository) ListPlaceNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, "SELECT DISTINCT nombre FROM locaciones ORDER BY nombre"); err != nil {
		return nil, fmt.Errorf("failed to fetch place names: %w", err)
	}
	return names, nil
}

// FilterPlaces returns structured places for the UI panel. When mentioned is
// non-empty those names take priority over the name filter; exact name matches
// sort first. Each place carries its first image URL.
func (r *PostgresRepository) FilterPlaces(ctx context.Context, category string, placeName string, mentioned []string) ([]model.Place, error) {
	selectCols := `
		l.nombre,
		l.descripcion,
		l.categoria,
		CASE WHEN l.latitud IS NOT NULL AND l.longitud IS NOT NULL
			THEN l.latitud::text || ', ' || l.longitud::text
		END AS ubicacion,
		(SELECT li.url_imagen FROM locacion_imagenes li
			WHERE li.locacion_id = l.id ORDER BY li.id LIMIT 1) AS imagen_url
	`

	where := []string{}
	args := []interface{}{}
	idx := 1

	if len(mentioned) > 0 {
		nameConds := make([]string, 0, len(mentioned))
		for _, name := range mentioned {
			nameConds = append(nameConds, fmt.Sprintf("l.nombre = $%d OR l.nombre ILIKE $%d", idx, idx+1))
			args = append(args, name, "%"+name+"%")
			idx += 2
		}
		where = append(where, "("+strings.Join(nameConds, " OR ")+")")
	} else if placeName != "" {
		where = append(where, fmt.Sprintf("(l.nombre = $%d OR l.nombre ILIKE $%d)", idx, idx+1))
		args = append(args, placeName, "%"+placeName+"%")
		idx += 2
	}

	if category != "" {
		cond, params, next := utils.BuildCategoryCondition(category, idx)
		if cond != "" {
			where = append(where, strings.ReplaceAll(cond, "categoria", "l.categoria"))
			args = append(args, params...)
			idx = next
		}
	}

	query := "SELECT " + selectCols + " FROM locaciones l"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	// Exact matches for the requested name sort ahead of partial ones.
	if len(mentioned) > 0 {
		placeholders := make([]string, 0, len(mentioned))
		for _, name := range mentioned {
			placeholders = append(placeholders, "$"+strconv.Itoa(idx))
			args = append(args, name)
			idx++
		}
		query += " ORDER BY CASE WHEN l.nombre IN (" + strings.Join(placeholders, ", ") + ") THEN 0 ELSE 1 END, l.nombre"
	} else if placeName != "" {
		query += fmt.Sprintf(" ORDER BY CASE WHEN l.nombre = $%d THEN 0 ELSE 1 END, l.nombre", idx)
		args = append(args, placeName)
		idx++
	} else {
		query += " ORDER BY l.nombre"
	}

	var places []model.Place
	if err := r.db.SelectContext(ctx, &places, query, args...); err != nil {
		return nil, fmt.Errorf("failed to filter places: %w", err)
	}
	return places, nil
}

// CountPlaces returns the number of catalog entries.
func (r *PostgresRepository) CountPlaces(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM locaciones"); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return n, nil
}

// CountImages returns the number of media records.
func (r *PostgresRepository) CountImages(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM locacion_imagenes"); err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return n, nil
}

// LogChat records one answered chat exchange for offline analysis.
func (r *PostgresRepository) LogChat(ctx context.Context, chatID, message, response string, category, placeName *string, mentioned []string, tookMs int) error {
	query := `
		INSERT INTO chat_logs (chat_id, message, response, category, place_name, mentioned_places, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, chatID, message, response, category, placeName, strings.Join(mentioned, ","), tookMs)
	if err != nil {
		return fmt.Errorf("failed to log chat: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple catalog entries in
// one transaction. Returns the success count and per-item errors.
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE locaciones SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.PlaceID); err != nil {
			errors = append(errors, fmt.Sprintf("place_id %d: %v", item.PlaceID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}
