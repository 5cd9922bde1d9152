package model

// ProjectStatus 项目分析状态
type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "pending"   // 已创建，未分析
	ProjectStatusAnalyzing ProjectStatus = "analyzing" // 分析中
	ProjectStatusCompleted ProjectStatus = "completed" // 分析成功
	ProjectStatusFailed    ProjectStatus = "failed"    // 分析失败，可重试
)

// ReportStatus 报告终态标记
type ReportStatus string

const (
	ReportStatusFetchingTree ReportStatus = "fetching_tree"
	ReportStatusParsing      ReportStatus = "parsing"
	ReportStatusComplete     ReportStatus = "complete"
)

// NodeType 文件树节点类型
type NodeType string

const (
	NodeTypeTree NodeType = "tree"
	NodeTypeBlob NodeType = "blob"
)

// ExportFormat 组件导出格式
type ExportFormat string

const (
	ExportFormatZip     ExportFormat = "zip"
	ExportFormatSnippet ExportFormat = "snippet"
)

// Collection names in the entity store.
const (
	CollectionProjects   = "projects"
	CollectionPatterns   = "patterns"
	CollectionComponents = "components"
	CollectionUsers      = "users"
	CollectionChats      = "chats"
)

// ID prefixes for generated records.
const (
	ProjectIDPrefix   = "proj_"
	ComponentIDPrefix = "comp_"
)
