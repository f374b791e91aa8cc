package service

import (
	"context"
	"log"
	"strings"

	"core/internal/utils"
)

// categoryRule maps a lower-cased keyword to the catalog category it implies.
// The slice is priority-ordered and matching is first-hit-wins, so more
// specific phrases must stay ahead of generic ones.
type categoryRule struct {
	Pattern  string
	Category string
}

var categoryRules = []categoryRule{
	{"centro comercial", "centros-comerciales"},
	{"parque", "Parque"},
	{"plaza", "Parque"},
	{"naturaleza", "Naturaleza"},
	{"reserva", "Naturaleza"},
	{"patrimonio", "Patrimonio"},
	{"iglesia", "Patrimonio"},
	{"templo", "Patrimonio"},
	{"mall", "centros-comerciales"},
	{"shopping", "centros-comerciales"},
	{"tienda", "centros-comerciales"},
	{"compras", "centros-comerciales"},
	{"estadio", "Estadio"},
}

// seedPlaces is the curated list of well-known catalog entries. Place
// detection runs against this list plus whatever the store currently holds.
var seedPlaces = []string{
	"Plaza Constitución", "Plaza Huamanmarca", "Parque de la Identidad",
	"Cerrito de la Libertad", "Parque Inmaculada", "Torre Torre",
	"Real Plaza", "Open Plaza", "Mall Center", "Plaza Vea",
	"Catedral de Huancayo", "Feria Dominical", "Nevado Huaytapallana",
	"Wariwillka", "Estadio Huancayo",
}

// IntentDetector classifies an utterance into an optional category filter and
// an optional named place, and extracts place mentions from validated
// responses.
type IntentDetector struct {
	store CatalogStore
}

// NewIntentDetector creates a new intent detector backed by the catalog store.
func NewIntentDetector(store CatalogStore) *IntentDetector {
	return &IntentDetector{store: store}
}

// DetectCategory returns the category implied by the text, or "" when none of
// the keyword rules match. First match by rule order wins.
func (d *IntentDetector) DetectCategory(text string) string {
	if text == "" {
		return ""
	}
	folded := utils.Fold(text)
	for _, rule := range categoryRules {
		if strings.Contains(folded, rule.Pattern) {
			return rule.Category
		}
	}
	return ""
}

// DetectPlace returns the first seed place mentioned as a whole word in the
// text, or "" when none is found.
func (d *IntentDetector) DetectPlace(text string) string {
	if text == "" {
		return ""
	}
	for _, place := range seedPlaces {
		if utils.ContainsWord(text, place) {
			return place
		}
	}
	return ""
}

// KnownNames returns the seed list merged with all current catalog names.
// Store failures degrade to the seed list alone.
func (d *IntentDetector) KnownNames(ctx context.Context) []string {
	names := make([]string, 0, len(seedPlaces))
	names = append(names, seedPlaces...)

	dbNames, err := d.store.ListPlaceNames(ctx)
	if err != nil {
		log.Printf("Warning: failed to load catalog names, using seed list only: %v", err)
		return names
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range dbNames {
		if n != "" && !seen[n] {
			names = append(names, n)
			seen[n] = true
		}
	}
	return names
}

// ExtractPlaces scans text for whole-word mentions of known names, returning
// each matched name once, in known-name order.
func ExtractPlaces(text string, knownNames []string) []string {
	if text == "" {
		return nil
	}
	var found []string
	for _, name := range knownNames {
		if utils.ContainsWord(text, name) {
			found = append(found, name)
		}
	}
	return found
}
