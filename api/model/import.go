package model

// ImportRows is the JSON payload of the bulk-import endpoints.
type ImportRows struct {
	FarmID          string                   `json:"farm_id"`
	Table           string                   `json:"table"`
	ConflictColumns []string                 `json:"conflict_columns"`
	Rows            []map[string]interface{} `json:"rows"`
}

// SuggestMapping asks for header-to-field suggestions for one entity,
// optionally seeding the session alias bank with legend entries.
type SuggestMapping struct {
	Entity  string      `json:"entity"`
	Headers []string    `json:"headers"`
	Aliases []AliasPair `json:"aliases,omitempty"`
}

// AliasPair is one legend entry: a source column name and the canonical
// field it maps to.
type AliasPair struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}
