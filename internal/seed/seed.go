// Package seed holds the built-in records each collection is initialized with
// on first access.
package seed

import (
	"time"

	"leverage/internal/model"
)

const day = 24 * time.Hour

func Users() []model.User {
	return []model.User{
		{ID: "u1", Name: "User A"},
		{ID: "u2", Name: "User B"},
	}
}

func Chats(now time.Time) []model.Chat {
	return []model.Chat{
		{
			ID:    "c1",
			Title: "General",
			Messages: []model.ChatMessage{
				{ID: "m1", ChatID: "c1", UserID: "u1", Text: "Hello", TS: now.UnixMilli()},
			},
		},
	}
}

func Projects(now time.Time) []model.Project {
	return []model.Project{
		{
			ID:        "proj_codetxt",
			Name:      "codetxt",
			RepoURL:   "https://github.com/example/codetxt",
			Status:    model.ProjectStatusCompleted,
			CreatedAt: now.Add(-day).UnixMilli(),
			UpdatedAt: now.Add(-day).UnixMilli(),
		},
		{
			ID:        "proj_vibesdk",
			Name:      "VibeSDK",
			RepoURL:   "https://github.com/cloudflare/vibesdk",
			Status:    model.ProjectStatusPending,
			CreatedAt: now.UnixMilli(),
			UpdatedAt: now.UnixMilli(),
		},
	}
}

// Patterns is the curated pattern catalog. The detector looks patterns up
// here by project id.
func Patterns() []model.Pattern {
	return []model.Pattern{
		{
			ID:          "patt_ingestion_engine",
			ProjectID:   "proj_codetxt",
			Title:       "Repository Ingestion Engine",
			Description: "Core logic for ingesting and processing code repositories into a structured format for LLMs.",
			FilePaths:   []string{"src/ingestion/index.ts", "src/ingestion/parser.ts", "src/ingestion/strategy.ts"},
			Snippet: `
// src/ingestion/index.ts
export class IngestionEngine {
  constructor(private strategy: IngestionStrategy) {}
  async ingest(repoUrl: string): Promise<StructuredOutput> {
    const files = await this.strategy.fetch(repoUrl);
    const parsed = this.strategy.parse(files);
    return this.strategy.structure(parsed);
  }
}
`,
			Tags:  []string{"ingestion", "parser", "core-logic", "typescript"},
			Score: 92,
		},
		{
			ID:          "patt_auth_flow",
			ProjectID:   "proj_vibesdk",
			Title:       "JWT Authentication Flow",
			Description: "Handles user authentication and session management using JSON Web Tokens.",
			FilePaths:   []string{"src/auth/jwt.ts", "src/middleware/auth.ts"},
			Snippet: `
// src/auth/jwt.ts
export function signToken(payload: object): string {
  return jwt.sign(payload, process.env.JWT_SECRET, { expiresIn: '1d' });
}
`,
			Tags:  []string{"auth", "jwt", "security", "middleware"},
			Score: 88,
		},
	}
}

// PatternsByProject indexes the catalog by project id.
func PatternsByProject() map[string][]model.Pattern {
	index := make(map[string][]model.Pattern)
	for _, p := range Patterns() {
		index[p.ProjectID] = append(index[p.ProjectID], p)
	}
	return index
}
