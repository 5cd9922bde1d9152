package model

// Project is a tracked repository-analysis unit.
type Project struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	RepoURL   string           `json:"repoUrl"`
	Status    ProjectStatus    `json:"status"`
	CreatedAt int64            `json:"createdAt"` // epoch millis
	UpdatedAt int64            `json:"updatedAt"` // epoch millis
	Analysis  *IngestionReport `json:"analysis,omitempty"`
	OwnerID   string           `json:"ownerId,omitempty"`
	LastError string           `json:"lastError,omitempty"`
}

func (p Project) GetID() string { return p.ID }

// IngestionReport is the result of one successful analysis run. A new run
// replaces it as a whole.
type IngestionReport struct {
	ProjectID   string          `json:"projectId"`
	EntryPoints []string        `json:"entryPoints"`
	Mechanisms  []Mechanism     `json:"mechanisms"`
	Patterns    []Pattern       `json:"patterns"`
	FileTree    []*FileTreeNode `json:"fileTree,omitempty"`
	Status      ReportStatus    `json:"status,omitempty"`
}

// Mechanism is a named capability detected in a repository.
type Mechanism struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DocsURL     string `json:"docsUrl"`
	DeepwikiURL string `json:"deepwikiUrl"`
}

// FileTreeNode is one node of the hierarchical file tree. Children is only
// set on tree nodes.
type FileTreeNode struct {
	Path     string          `json:"path"`
	Type     NodeType        `json:"type"`
	Children []*FileTreeNode `json:"children,omitempty"`
	Content  string          `json:"content,omitempty"`
}

// TreeEntry is one row of the flat repository listing.
type TreeEntry struct {
	Path string   `json:"path"`
	Kind NodeType `json:"kind"`
	Size *int64   `json:"size,omitempty"`
}
