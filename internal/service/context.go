package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"core/internal/model"
)

// CatalogStore is the store surface the pipeline consumes. Implemented by
// repository.PostgresRepository; tests substitute fakes.
type CatalogStore interface {
	ColumnNames(ctx context.Context) ([]string, error)
	ListPlaceRows(ctx context.Context, category string) ([]model.PlaceRow, error)
	ListImages(ctx context.Context) ([]model.PlaceImage, error)
	ListPlaceNames(ctx context.Context) ([]string, error)
	FilterPlaces(ctx context.Context, category string, placeName string, mentioned []string) ([]model.Place, error)
	LogChat(ctx context.Context, chatID, message, response string, category, placeName *string, mentioned []string, tookMs int) error
}

// columnTags maps catalog column names to the tags used in rendered context.
// Unknown columns fall back to their upper-cased name; latitud and longitud
// are merged into a single UBICACIÓN field.
var columnTags = map[string]string{
	"nombre":      "LUGAR",
	"descripcion": "DESCRIPCIÓN",
	"categoria":   "CATEGORÍA",
}

const sentinelContext = "HUANCAYO: catálogo no disponible."

// ContextBuilder renders the catalog into a bounded text block the model can
// consume, with a freshness-windowed cache. A snapshot built with a name
// filter is never cached; a store failure caches a sentinel snapshot so
// repeated failures don't storm the store.
type ContextBuilder struct {
	store CatalogStore
	ttl   time.Duration

	mu     sync.Mutex
	cached *model.CatalogSnapshot
}

// NewContextBuilder creates a context builder with the given cache lifetime.
func NewContextBuilder(store CatalogStore, ttl time.Duration) *ContextBuilder {
	return &ContextBuilder{store: store, ttl: ttl}
}

// Context returns a catalog snapshot for the given filters. nameFilter forces
// a fresh build (per-request freshness); otherwise a cached snapshot is reused
// while it is younger than the freshness window and was built for the same
// category. Never returns an error: store failures degrade to a sentinel
// snapshot with an empty grounded-name set.
func (b *ContextBuilder) Context(ctx context.Context, category, nameFilter string) *model.CatalogSnapshot {
	if nameFilter == "" {
		b.mu.Lock()
		if b.cached != nil && b.cached.Age() < b.ttl && b.cached.Category == category {
			snap := b.cached
			b.mu.Unlock()
			return snap
		}
		b.mu.Unlock()
	}

	snap := b.build(ctx, category)

	if nameFilter == "" {
		b.mu.Lock()
		b.cached = snap
		b.mu.Unlock()
	}
	return snap
}

// Invalidate drops the cached snapshot.
func (b *ContextBuilder) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cached = nil
}

func (b *ContextBuilder) build(ctx context.Context, category string) *model.CatalogSnapshot {
	rows, err := b.store.ListPlaceRows(ctx, category)
	if err != nil {
		log.Printf("Warning: failed to build catalog context: %v", err)
		return &model.CatalogSnapshot{
			Text:      sentinelContext,
			Status:    model.SnapshotUnavailable,
			Category:  category,
			CreatedAt: time.Now(),
		}
	}

	columns, err := b.store.ColumnNames(ctx)
	if err != nil {
		log.Printf("Warning: failed to introspect catalog columns: %v", err)
		return &model.CatalogSnapshot{
			Text:      sentinelContext,
			Status:    model.SnapshotUnavailable,
			Category:  category,
			CreatedAt: time.Now(),
		}
	}

	var text strings.Builder
	fmt.Fprintf(&text, "BASE DE DATOS HUANCAYO - %d lugares encontrados:\n\n", len(rows))

	var names []string
	var entries []model.ContextEntry

	for _, row := range rows {
		entry, line := renderRow(row, columns)
		if line == "" {
			continue
		}
		text.WriteString(line)
		text.WriteString("\n")
		names = append(names, entry.Name)
		entries = append(entries, entry)
	}

	status := model.SnapshotOK
	if len(rows) == 0 {
		status = model.SnapshotEmpty
		text.WriteString("No se encontraron lugares en la categoría especificada.")
		if category != "" {
			fmt.Fprintf(&text, " (Búsqueda: %s)", category)
		}
		text.WriteString("\n")
	}

	b.appendImages(ctx, &text)

	return &model.CatalogSnapshot{
		Text:      text.String(),
		Names:     names,
		Entries:   entries,
		Status:    status,
		Category:  category,
		CreatedAt: time.Now(),
	}
}

// renderRow renders one catalog row as pipe-joined "TAG: value" fields, name
// first. Null columns are skipped; rows without a name render empty.
func renderRow(row model.PlaceRow, columns []string) (model.ContextEntry, string) {
	name := formatValue(row["nombre"])
	if name == "" {
		return model.ContextEntry{}, ""
	}

	entry := model.ContextEntry{Name: name}
	fields := []string{"LUGAR: " + name}

	for _, col := range columns {
		value := row[col]
		if value == nil {
			continue
		}
		switch col {
		case "nombre":
			// Already rendered first.
		case "descripcion":
			entry.Description = formatValue(value)
			fields = append(fields, "DESCRIPCIÓN: "+entry.Description)
		case "latitud":
			if lon := row["longitud"]; lon != nil {
				entry.Location = formatValue(value) + ", " + formatValue(lon)
				fields = append(fields, "UBICACIÓN: "+entry.Location)
			}
		case "longitud":
			// Rendered together with latitud.
		default:
			tag, ok := columnTags[col]
			if !ok {
				tag = strings.ToUpper(col)
			}
			fields = append(fields, tag+": "+formatValue(value))
		}
	}

	return entry, strings.Join(fields, " | ")
}

// appendImages adds the grouped media-URL section. Image fetch failures leave
// the snapshot usable without media.
func (b *ContextBuilder) appendImages(ctx context.Context, text *strings.Builder) {
	images, err := b.store.ListImages(ctx)
	if err != nil {
		log.Printf("Warning: failed to fetch catalog images: %v", err)
		return
	}
	if len(images) == 0 {
		return
	}

	fmt.Fprintf(text, "\nIMÁGENES DISPONIBLES: %d imágenes asociadas a lugares.\n", len(images))

	var order []string
	grouped := make(map[string][]model.PlaceImage)
	for _, img := range images {
		if _, ok := grouped[img.PlaceName]; !ok {
			order = append(order, img.PlaceName)
		}
		grouped[img.PlaceName] = append(grouped[img.PlaceName], img)
	}

	for _, place := range order {
		fmt.Fprintf(text, "IMAGENES_%s: ", strings.ReplaceAll(strings.ToUpper(place), " ", "_"))
		for _, img := range grouped[place] {
			desc := "Imagen del lugar"
			if img.Description != nil && *img.Description != "" {
				desc = *img.Description
			}
			fmt.Fprintf(text, "[URL: %s, DESC: %s] ", img.URL, desc)
		}
		text.WriteString("\n")
	}
}

// formatValue stringifies a driver value for context rendering.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ParseContextEntries parses catalog entries back out of a rendered snapshot
// text. The grounded-name set of any snapshot is exactly the LUGAR names its
// own text yields here.
func ParseContextEntries(text string) []model.ContextEntry {
	var entries []model.ContextEntry
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "LUGAR:") {
			continue
		}
		var entry model.ContextEntry
		for _, field := range strings.Split(line, " | ") {
			field = strings.TrimSpace(field)
			switch {
			case strings.HasPrefix(field, "LUGAR:"):
				entry.Name = strings.TrimSpace(strings.TrimPrefix(field, "LUGAR:"))
			case strings.HasPrefix(field, "DESCRIPCIÓN:"):
				entry.Description = strings.TrimSpace(strings.TrimPrefix(field, "DESCRIPCIÓN:"))
			case strings.HasPrefix(field, "UBICACIÓN:"):
				entry.Location = strings.TrimSpace(strings.TrimPrefix(field, "UBICACIÓN:"))
			}
		}
		if entry.Name != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
