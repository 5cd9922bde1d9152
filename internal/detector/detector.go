// Package detector classifies a flat repository listing into entry points and
// mechanisms by looking at file names only. It is a heuristic: a reported
// mechanism means some path mentions its keyword, not that the code really
// implements it.
package detector

import (
	"path"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"leverage/internal/model"
	"leverage/internal/utils"
)

// PatternLookup returns the curated patterns recorded for a project.
type PatternLookup interface {
	PatternsFor(projectID string) []model.Pattern
}

// StaticPatterns is a PatternLookup over a fixed catalog.
type StaticPatterns map[string][]model.Pattern

func (s StaticPatterns) PatternsFor(projectID string) []model.Pattern {
	return s[projectID]
}

// Result is what Detect found.
type Result struct {
	EntryPoints []string
	Mechanisms  []model.Mechanism
	Patterns    []model.Pattern
}

type Detector struct {
	catalog  []MechanismRule
	patterns PatternLookup
	ignore   *gitignore.GitIgnore
}

// New builds a detector. Paths matching ignorePatterns (gitignore syntax) are
// left out of classification.
func New(patterns PatternLookup, ignorePatterns []string) *Detector {
	return NewWithCatalog(DefaultCatalog, patterns, ignorePatterns)
}

func NewWithCatalog(catalog []MechanismRule, patterns PatternLookup, ignorePatterns []string) *Detector {
	if patterns == nil {
		patterns = StaticPatterns{}
	}
	return &Detector{
		catalog:  catalog,
		patterns: patterns,
		ignore:   gitignore.CompileIgnoreLines(utils.UniqueStringSlice(ignorePatterns)...),
	}
}

// Detect is deterministic for a given listing and project id.
func (d *Detector) Detect(projectID string, entries []model.TreeEntry) Result {
	res := Result{
		EntryPoints: []string{},
		Mechanisms:  []model.Mechanism{},
		Patterns:    []model.Pattern{},
	}

	lowered := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Path == "" || d.ignore.MatchesPath(entry.Path) {
			continue
		}
		lowered = append(lowered, strings.ToLower(entry.Path))
		if entry.Kind == model.NodeTypeBlob && IsEntryPoint(entry.Path) {
			res.EntryPoints = append(res.EntryPoints, entry.Path)
		}
	}

	for _, rule := range d.catalog {
		for _, p := range lowered {
			if strings.Contains(p, rule.Keyword) {
				res.Mechanisms = append(res.Mechanisms, rule.Mechanism)
				break
			}
		}
	}

	res.Patterns = append(res.Patterns, d.patterns.PatternsFor(projectID)...)
	return res
}

// IsEntryPoint reports whether the final path segment looks like a program
// entry file, e.g. src/index.ts or cmd/api/main.go. Matching is case-sensitive.
func IsEntryPoint(p string) bool {
	base := path.Base(p)
	ext := path.Ext(base)
	if ext == "" {
		return false
	}
	if _, ok := sourceExts[ext]; !ok {
		return false
	}
	_, ok := entryStems[strings.TrimSuffix(base, ext)]
	return ok
}
