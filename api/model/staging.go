package model

// StageUpload is the JSON payload that pushes mapped rows into the staging
// store for later promotion.
type StageUpload struct {
	UploadedBy string      `json:"uploaded_by"`
	Rows       []StagedRow `json:"rows"`
}

// StagedRow pairs one original row with its normalized form and any
// validation errors found during mapping.
type StagedRow struct {
	Raw    map[string]interface{} `json:"raw"`
	Mapped map[string]interface{} `json:"mapped"`
	Errors []string               `json:"errors,omitempty"`
}
