package hierarchy

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"n8nexplorer/internal/n8n"
)

// PathSeparator joins folder names into a display path.
const PathSeparator = "/"

var segmentEscaper = strings.NewReplacer("%", "%25", PathSeparator, "%2F")

// EscapeSegment encodes a folder name for use as one path segment. "%"
// becomes "%25" and PathSeparator becomes "%2F", so a tag named "a/b" and the
// chain a -> b get different paths.
func EscapeSegment(name string) string {
	return segmentEscaper.Replace(name)
}

// JoinPath builds a folder path from unescaped folder names.
func JoinPath(names ...string) string {
	segments := make([]string, len(names))
	for i, name := range names {
		segments[i] = EscapeSegment(name)
	}
	return strings.Join(segments, PathSeparator)
}

// Folder is a node of the tag tree. Top-level folders have Depth 1. Name is
// the tag name as received; Path joins escaped ancestor names and is unique.
type Folder struct {
	Name      string             `json:"name" yaml:"name"`
	Path      string             `json:"path" yaml:"path"`
	CreatedAt time.Time          `json:"createdAt" yaml:"created_at"`
	Depth     int                `json:"depth" yaml:"depth"`
	Total     int                `json:"total" yaml:"total"`
	Workflows []n8n.Workflow     `json:"workflows" yaml:"workflows,omitempty"`
	Children  map[string]*Folder `json:"children" yaml:"children,omitempty"`
}

// SortedChildren returns the direct children ordered by creation time, then name.
func (f *Folder) SortedChildren() []*Folder {
	if f == nil {
		return nil
	}
	return sortFolders(f.Children)
}

// Result is the output of Organize.
type Result struct {
	Tree     map[string]*Folder `json:"tree"`
	Untagged []n8n.Workflow     `json:"untagged"`
	Archived []n8n.Workflow     `json:"archived"`
}

// Roots returns the top-level folders ordered by creation time, then name.
func (r Result) Roots() []*Folder {
	return sortFolders(r.Tree)
}

// Total counts every workflow in the result, including archived and untagged.
func (r Result) Total() int {
	total := len(r.Untagged) + len(r.Archived)
	for _, folder := range r.Tree {
		total += folder.Total
	}
	return total
}

// FolderCount reports how many folders the tree contains.
func (r Result) FolderCount() int {
	count := 0
	r.Walk(func(*Folder) bool {
		count++
		return true
	})
	return count
}

// Walk visits folders depth-first in display order. Returning false from fn
// skips the folder's children.
func (r Result) Walk(fn func(*Folder) bool) {
	var visit func(folders []*Folder)
	visit = func(folders []*Folder) {
		for _, folder := range folders {
			if fn(folder) {
				visit(folder.SortedChildren())
			}
		}
	}
	visit(r.Roots())
}

// Find returns the first folder, in display order, whose path matches.
func (r Result) Find(path string) (*Folder, bool) {
	var found *Folder
	r.Walk(func(folder *Folder) bool {
		if found != nil {
			return false
		}
		if folder.Path == path {
			found = folder
			return false
		}
		return strings.HasPrefix(path, folder.Path+PathSeparator)
	})
	return found, found != nil
}

type node struct {
	name      string
	path      string
	createdAt time.Time
	depth     int
	workflows []n8n.Workflow
	children  map[string]int
}

// Organize partitions workflows into archived, untagged and a tag tree.
// Archived workflows are set aside before tags are considered.
func Organize(workflows []n8n.Workflow) Result {
	result := Result{
		Tree:     map[string]*Folder{},
		Untagged: []n8n.Workflow{},
		Archived: []n8n.Workflow{},
	}

	arena := []node{{children: map[string]int{}}}
	index := map[string]int{}

	for _, wf := range workflows {
		if wf.IsArchived {
			result.Archived = append(result.Archived, wf)
			continue
		}
		if len(wf.Tags) == 0 {
			result.Untagged = append(result.Untagged, wf)
			continue
		}

		current := 0
		for _, tag := range OrderedTags(wf.Tags) {
			parent := arena[current]
			path := EscapeSegment(tag.Name)
			if current != 0 {
				path = parent.path + PathSeparator + path
			}
			child, ok := index[path]
			if !ok {
				child = len(arena)
				arena = append(arena, node{
					name:      tag.Name,
					path:      path,
					createdAt: tag.CreatedAt,
					depth:     parent.depth + 1,
					children:  map[string]int{},
				})
				arena[current].children[tag.Name] = child
				index[path] = child
			}
			current = child
		}
		arena[current].workflows = append(arena[current].workflows, wf)
	}

	for name, idx := range arena[0].children {
		result.Tree[name] = freeze(arena, idx)
	}
	return result
}

func freeze(arena []node, idx int) *Folder {
	n := arena[idx]
	folder := &Folder{
		Name:      n.name,
		Path:      n.path,
		CreatedAt: n.createdAt,
		Depth:     n.depth,
		Workflows: slices.Clone(n.workflows),
		Children:  make(map[string]*Folder, len(n.children)),
	}
	if folder.Workflows == nil {
		folder.Workflows = []n8n.Workflow{}
	}
	folder.Total = len(folder.Workflows)
	for name, childIdx := range n.children {
		child := freeze(arena, childIdx)
		folder.Children[name] = child
		folder.Total += child.Total
	}
	return folder
}

// OrderedTags returns a copy of tags sorted oldest first. Equal timestamps
// fall back to name, then id, and otherwise keep input order.
func OrderedTags(tags []n8n.Tag) []n8n.Tag {
	ordered := slices.Clone(tags)
	slices.SortStableFunc(ordered, func(a, b n8n.Tag) int {
		return cmp.Or(
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return ordered
}

func sortFolders(folders map[string]*Folder) []*Folder {
	out := make([]*Folder, 0, len(folders))
	for _, folder := range folders {
		out = append(out, folder)
	}
	slices.SortFunc(out, func(a, b *Folder) int {
		return cmp.Or(
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return out
}
