package utils

import (
	"strconv"
	"strings"
)

// categorySynonyms maps UI/frontend category slugs to the values actually
// stored in the categoria column. Plural and hyphenated forms collapse to the
// singular stored form.
var categorySynonyms = map[string][]string{
	"parques":             {"parque"},
	"parque":              {"parque"},
	"plazas":              {"plaza"},
	"plaza":               {"plaza"},
	"miradores":           {"mirador"},
	"mirador":             {"mirador"},
	"centros comerciales": {"centro comercial"},
	"centros-comerciales": {"centro comercial"},
	"centro comercial":    {"centro comercial"},
	"centro-comercial":    {"centro comercial"},
	"patrimonios":         {"patrimonio"},
	"patrimonio":          {"patrimonio"},
	"estadios":            {"estadio"},
	"estadio":             {"estadio"},
	"naturaleza":          {"naturaleza"},
}

// CategoryCandidates resolves a requested category into the list of stored
// category values to match against, folded for accent-insensitive comparison.
// Unknown categories pass through as themselves.
func CategoryCandidates(category string) []string {
	key := Fold(strings.ReplaceAll(category, "-", " "))
	if key == "" {
		return nil
	}
	if cands, ok := categorySynonyms[key]; ok {
		return cands
	}
	return []string{key}
}

// BuildCategoryCondition builds a SQL OR-group matching the categoria column
// against every candidate, using ILIKE for case-insensitive substring match.
// Returns the condition, its parameters and the next parameter index.
func BuildCategoryCondition(category string, paramIndex int) (string, []interface{}, int) {
	cands := CategoryCandidates(category)
	if len(cands) == 0 {
		return "", nil, paramIndex
	}
	conds := make([]string, 0, len(cands))
	params := make([]interface{}, 0, len(cands))
	for _, cand := range cands {
		conds = append(conds, "categoria ILIKE $"+strconv.Itoa(paramIndex))
		params = append(params, "%"+cand+"%")
		paramIndex++
	}
	return "(" + strings.Join(conds, " OR ") + ")", params, paramIndex
}
