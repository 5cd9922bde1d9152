package model

// Pattern is a curated, project-scoped finding.
type Pattern struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"projectId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FilePaths   []string `json:"filePaths"`
	Snippet     string   `json:"snippet"`
	Tags        []string `json:"tags"`
	Score       int      `json:"score"` // 0-100 quality/risk score
}

func (p Pattern) GetID() string { return p.ID }

// ComponentSpec is a component generated from a pattern.
type ComponentSpec struct {
	ID             string            `json:"id"`
	PatternID      string            `json:"patternId"`
	ProjectID      string            `json:"projectId"`
	Name           string            `json:"name"`
	SourceTemplate string            `json:"sourceTemplate"`
	PropsSchema    map[string]string `json:"propsSchema"`
	CreatedAt      int64             `json:"createdAt"`
	ExportFormats  []ExportFormat    `json:"exportFormats,omitempty"`
	Version        string            `json:"version"`
	PublishURL     string            `json:"publishUrl,omitempty"`
}

func (c ComponentSpec) GetID() string { return c.ID }
