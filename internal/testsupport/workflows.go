package testsupport

import (
	"fmt"
	"time"

	"n8nexplorer/internal/n8n"
)

// Epoch is the base timestamp used by workflow fixtures.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Tag builds a tag created offset hours after Epoch.
func Tag(name string, offset int) n8n.Tag {
	return n8n.Tag{
		ID:        "tag-" + name,
		Name:      name,
		CreatedAt: Epoch.Add(time.Duration(offset) * time.Hour),
	}
}

// Workflow builds an active workflow with the given tags.
func Workflow(id string, tags ...n8n.Tag) n8n.Workflow {
	return n8n.Workflow{
		ID:        id,
		Name:      "Workflow " + id,
		Active:    true,
		CreatedAt: Epoch,
		Tags:      tags,
	}
}

// Workflows builds n untagged workflows with ids wf-1..wf-n.
func Workflows(n int) []n8n.Workflow {
	out := make([]n8n.Workflow, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Workflow(fmt.Sprintf("wf-%d", i)))
	}
	return out
}
