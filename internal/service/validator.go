package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"core/internal/model"
	"core/internal/utils"
)

// CatalogUnavailableMessage is the fixed reply when no grounded names exist:
// model output is never forwarded without a catalog to check it against.
const CatalogUnavailableMessage = "Por ahora no dispongo de información del catálogo de lugares. " +
	"Intenta más tarde o pregunta nuevamente cuando el catálogo esté disponible."

// technicalPhrases flag model output that leaks connectivity or data-access
// problems to the caller.
var technicalPhrases = []string{
	"problemas de conexión", "sin conexión", "base de datos completa", "problemas técnicos",
	"base de datos está fallando", "base de datos fallando", "mi base de datos está fallando", "mi base de datos fallando",
	"no tengo acceso a la base de datos", "no puedo acceder a la base de datos",
}

// genericMarkers flag answers that fell back to generic advice instead of
// catalog data.
var genericMarkers = []string{
	"ideas generales", "recomendaciones generales", "de forma general", "en general puedo",
}

// offCatalogDenylist lists well-known regional places that are not in the
// catalog; mentioning one is treated as fabrication unless the catalog
// actually contains it.
var offCatalogDenylist = []string{
	"laguna de paca", "parque nacional de huayllay", "distrito de chupaca", "concepción",
}

var markerRe = regexp.MustCompile(`\[\[(.+?)\]\]`)
var markerStripRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// ResponseValidator fact-checks model output against the grounded-name set
// and repairs or replaces it. It never returns raw model text on a violation.
type ResponseValidator struct{}

// NewResponseValidator creates a response validator.
func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{}
}

// Validate checks the response against the snapshot's grounded names and
// returns caller-safe text. Always returns something usable.
func (v *ResponseValidator) Validate(response string, snapshot *model.CatalogSnapshot) string {
	if len(snapshot.Names) == 0 {
		return CatalogUnavailableMessage
	}

	folded := utils.Fold(response)

	groundedSet := make(map[string]bool, len(snapshot.Names))
	for _, name := range snapshot.Names {
		groundedSet[utils.Fold(name)] = true
	}

	var violations []string

	for _, phrase := range technicalPhrases {
		if strings.Contains(folded, utils.Fold(phrase)) {
			violations = append(violations, "technical_leak")
			break
		}
	}

	for _, marker := range genericMarkers {
		if strings.Contains(folded, marker) {
			violations = append(violations, "generic_no_data")
			break
		}
	}

	for _, match := range markerRe.FindAllStringSubmatch(response, -1) {
		if !groundedSet[utils.Fold(match[1])] {
			violations = append(violations, "fabricated_entity: "+match[1])
		}
	}

	for _, denied := range offCatalogDenylist {
		deniedFolded := utils.Fold(denied)
		if !strings.Contains(folded, deniedFolded) {
			continue
		}
		inCatalog := false
		for name := range groundedSet {
			if strings.Contains(name, deniedFolded) {
				inCatalog = true
				break
			}
		}
		if !inCatalog {
			violations = append(violations, "fabricated_entity: "+denied)
		}
	}

	if len(violations) > 0 {
		log.Printf("Response validation failed: %v", violations)
		// With very few grounded entries the false-positive risk outweighs
		// the fabrication risk; pass the text through with markers stripped.
		if len(snapshot.Names) < 3 {
			return stripMarkers(response)
		}
		return synthesizeFallback(snapshot)
	}

	return stripMarkers(response)
}

func stripMarkers(s string) string {
	return markerStripRe.ReplaceAllString(s, "$1")
}

// synthesizeFallback builds a deterministic catalog-only answer from up to 4
// grounded entries, replacing discarded model output.
func synthesizeFallback(snapshot *model.CatalogSnapshot) string {
	var withInfo []model.ContextEntry
	for _, entry := range snapshot.Entries {
		if entry.Description != "" || entry.Location != "" {
			withInfo = append(withInfo, entry)
		}
	}

	var b strings.Builder

	if len(withInfo) == 0 {
		b.WriteString("¡Excelente! Tenemos estos lugares registrados en Huancayo:\n\n")
		names := snapshot.Names
		if len(names) > 6 {
			names = names[:6]
		}
		for _, name := range names {
			fmt.Fprintf(&b, "• **%s**\n", name)
		}
		fmt.Fprintf(&b, "\nTenemos %d lugares registrados en total.", len(snapshot.Names))
		b.WriteString("\n\n¿Sobre cuál te gustaría saber más información?")
		return b.String()
	}

	b.WriteString("¡Perfecto! Te puedo recomendar estos lugares específicos que tenemos registrados en Huancayo:\n\n")
	if len(withInfo) > 4 {
		withInfo = withInfo[:4]
	}
	for _, entry := range withInfo {
		fmt.Fprintf(&b, "• **%s**", entry.Name)
		if entry.Description != "" {
			fmt.Fprintf(&b, " - %s", entry.Description)
		}
		if entry.Location != "" {
			fmt.Fprintf(&b, "\n  📍 %s", entry.Location)
		}
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Tenemos %d lugares registrados en total.", len(snapshot.Names))
	b.WriteString("\n\n¿Sobre cuál te gustaría saber más información específica?")
	return b.String()
}
