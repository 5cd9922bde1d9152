package detector

import "leverage/internal/model"

// entryStems are the basenames (without extension) treated as entry points.
var entryStems = map[string]struct{}{
	"index":    {},
	"main":     {},
	"app":      {},
	"server":   {},
	"cli":      {},
	"__main__": {},
}

// sourceExts are the extensions an entry point may carry.
var sourceExts = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {},
	".go": {}, ".py": {}, ".rs": {}, ".java": {}, ".kt": {}, ".rb": {},
}

// MechanismRule maps a lower-case path keyword to the mechanism it suggests.
type MechanismRule struct {
	Keyword   string
	Mechanism model.Mechanism
}

// DefaultCatalog is ordered; detected mechanisms are reported in this order.
var DefaultCatalog = []MechanismRule{
	{
		Keyword: "ingestion",
		Mechanism: model.Mechanism{
			Name:        "File System Traversal",
			Description: "Reads repository file structure.",
			DocsURL:     "https://docs.crawl4ai.com/concepts/traversal",
			DeepwikiURL: "https://deepwiki.com/filesystem-api",
		},
	},
	{
		Keyword: "parser",
		Mechanism: model.Mechanism{
			Name:        "AST Parsing",
			Description: "Parses code into an Abstract Syntax Tree.",
			DocsURL:     "https://docs.crawl4ai.com/concepts/ast",
			DeepwikiURL: "https://deepwiki.com/ast-parsing",
		},
	},
	{
		Keyword: "auth",
		Mechanism: model.Mechanism{
			Name:        "Authentication Flow",
			Description: "Issues and verifies user credentials or tokens.",
			DocsURL:     "https://jwt.io/introduction",
			DeepwikiURL: "https://deepwiki.com/authentication",
		},
	},
	{
		Keyword: "middleware",
		Mechanism: model.Mechanism{
			Name:        "Request Middleware",
			Description: "Chains handlers around incoming requests.",
			DocsURL:     "https://expressjs.com/en/guide/using-middleware.html",
			DeepwikiURL: "https://deepwiki.com/middleware",
		},
	},
	{
		Keyword: "worker",
		Mechanism: model.Mechanism{
			Name:        "Background Workers",
			Description: "Runs work outside the request path.",
			DocsURL:     "https://developers.cloudflare.com/workers/",
			DeepwikiURL: "https://deepwiki.com/background-jobs",
		},
	},
	{
		Keyword: "cache",
		Mechanism: model.Mechanism{
			Name:        "Caching Layer",
			Description: "Keeps computed or fetched results for reuse.",
			DocsURL:     "https://developer.mozilla.org/en-US/docs/Web/HTTP/Caching",
			DeepwikiURL: "https://deepwiki.com/caching",
		},
	},
	{
		Keyword: "queue",
		Mechanism: model.Mechanism{
			Name:        "Message Queue",
			Description: "Hands work between producers and consumers asynchronously.",
			DocsURL:     "https://developers.cloudflare.com/queues/",
			DeepwikiURL: "https://deepwiki.com/message-queues",
		},
	},
	{
		Keyword: "graphql",
		Mechanism: model.Mechanism{
			Name:        "GraphQL API",
			Description: "Serves a typed query API.",
			DocsURL:     "https://graphql.org/learn/",
			DeepwikiURL: "https://deepwiki.com/graphql",
		},
	},
	{
		Keyword: "migrations",
		Mechanism: model.Mechanism{
			Name:        "Schema Migrations",
			Description: "Evolves the database schema in ordered steps.",
			DocsURL:     "https://www.prisma.io/docs/concepts/components/prisma-migrate",
			DeepwikiURL: "https://deepwiki.com/database-migrations",
		},
	},
	{
		Keyword: "websocket",
		Mechanism: model.Mechanism{
			Name:        "Realtime Transport",
			Description: "Pushes updates to clients over persistent connections.",
			DocsURL:     "https://developer.mozilla.org/en-US/docs/Web/API/WebSockets_API",
			DeepwikiURL: "https://deepwiki.com/websockets",
		},
	},
}
