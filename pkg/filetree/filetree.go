// Package filetree turns a flat repository listing into a nested tree.
package filetree

import (
	"strings"

	"leverage/internal/model"
)

// Build nests entries by their "/"-separated paths. Every node carries its
// full path; intermediate directories are typed tree and the last segment of
// an entry takes the entry's kind. Each path gets exactly one node, so the
// listing's order of files and directories does not matter, and children
// keep the order in which they were first seen. Empty segments are ignored.
func Build(entries []model.TreeEntry) []*model.FileTreeNode {
	roots := make([]*model.FileTreeNode, 0)
	index := make(map[string]*model.FileTreeNode, len(entries))

	for _, entry := range entries {
		segments := splitPath(entry.Path)
		if len(segments) == 0 {
			continue
		}

		var parent *model.FileTreeNode
		for i := range segments {
			path := strings.Join(segments[:i+1], "/")
			leaf := i == len(segments)-1

			node, ok := index[path]
			if !ok {
				kind := model.NodeTypeTree
				if leaf && entry.Kind != "" {
					kind = entry.Kind
				}
				node = &model.FileTreeNode{Path: path, Type: kind}
				index[path] = node
				if parent == nil {
					roots = append(roots, node)
				} else {
					parent.Children = append(parent.Children, node)
				}
			} else if leaf && entry.Kind == model.NodeTypeTree {
				node.Type = model.NodeTypeTree
			}

			if !leaf && node.Type != model.NodeTypeTree {
				// a blob that turns out to have descendants
				node.Type = model.NodeTypeTree
			}
			parent = node
		}
	}
	return roots
}

// Walk visits nodes depth first, parents before children. Returning false
// from fn skips the node's subtree.
func Walk(nodes []*model.FileTreeNode, fn func(node *model.FileTreeNode) bool) {
	for _, node := range nodes {
		if fn(node) {
			Walk(node.Children, fn)
		}
	}
}

// Count returns the number of tree and blob nodes.
func Count(nodes []*model.FileTreeNode) (trees, blobs int) {
	Walk(nodes, func(node *model.FileTreeNode) bool {
		if node.Type == model.NodeTypeTree {
			trees++
		} else {
			blobs++
		}
		return true
	})
	return trees, blobs
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
