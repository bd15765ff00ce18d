package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/mattn/go-isatty"

	"n8nexplorer/internal/api"
	"n8nexplorer/internal/colors"
	"n8nexplorer/internal/explorer"
)

type treeOptions struct {
	links    bool
	colorize bool
}

// folderAttributes maps palette tokens onto the closest terminal colors.
var folderAttributes = map[colors.Color][]color.Attribute{
	colors.Default: {color.FgHiBlack},
	colors.Primary: {color.FgBlue},
	colors.Success: {color.FgGreen},
	colors.Info:    {color.FgCyan},
	colors.Warning: {color.FgYellow},
	colors.Danger:  {color.FgRed},
	colors.Purple:  {color.FgMagenta},
	colors.Pink:    {color.FgHiMagenta},
	colors.Orange:  {color.FgHiRed},
	colors.Teal:    {color.FgHiCyan},
}

func painter(colorize bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func folderPainter(token string, colorize bool) *color.Color {
	attrs, ok := folderAttributes[colors.Color(token)]
	if !ok {
		attrs = folderAttributes[colors.Default]
	}
	return painter(colorize, append([]color.Attribute{color.Bold}, attrs...)...)
}

// renderTree formats a tree response as an indented folder listing preceded
// by a one-line summary.
func renderTree(resp api.TreeResponse, opts treeOptions) string {
	var b strings.Builder
	b.WriteString(treeSummary(resp, opts.colorize))
	b.WriteString("\n")

	if len(resp.Folders) == 0 && len(resp.Untagged) == 0 && len(resp.Archived) == 0 {
		return b.String()
	}

	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	for _, folder := range resp.Folders {
		appendFolder(l, folder, opts)
	}
	section := painter(opts.colorize, color.Bold)
	if len(resp.Untagged) > 0 {
		l.AppendItem(section.Sprintf("Untagged (%d)", len(resp.Untagged)))
		appendWorkflows(l, resp.Untagged, opts)
	}
	if len(resp.Archived) > 0 {
		l.AppendItem(section.Sprintf("Archived (%d)", len(resp.Archived)))
		appendWorkflows(l, resp.Archived, opts)
	}
	b.WriteString(l.Render())
	b.WriteString("\n")
	return b.String()
}

func appendFolder(l list.Writer, folder api.FolderView, opts treeOptions) {
	name := folderPainter(folder.Color, opts.colorize).Sprint(folder.Name)
	l.AppendItem(fmt.Sprintf("%s (%d)", name, folder.Count))
	l.Indent()
	for _, child := range folder.Children {
		appendFolder(l, child, opts)
	}
	for _, wf := range folder.Workflows {
		l.AppendItem(workflowLabel(wf, opts))
	}
	l.UnIndent()
}

func appendWorkflows(l list.Writer, workflows []api.WorkflowView, opts treeOptions) {
	l.Indent()
	for _, wf := range workflows {
		l.AppendItem(workflowLabel(wf, opts))
	}
	l.UnIndent()
}

func workflowLabel(wf api.WorkflowView, opts treeOptions) string {
	dim := painter(opts.colorize, color.Faint)
	label := wf.Name
	if label == "" {
		label = "(unnamed)"
	}
	label += " " + dim.Sprint("#"+wf.ID)
	if !wf.Active && !wf.Archived {
		label += " " + dim.Sprint("inactive")
	}
	if opts.links && wf.URL != "" {
		label += "  " + wf.URL
	}
	return label
}

func treeSummary(resp api.TreeResponse, colorize bool) string {
	folders := countFolders(resp.Folders)
	counts := fmt.Sprintf("%d workflows, %d folders", resp.WorkflowCount, folders)
	warn := painter(colorize, color.FgYellow)
	switch explorer.State(resp.State) {
	case explorer.StateEmpty:
		return painter(colorize, color.FgRed).Sprint(resp.Message)
	case explorer.StateRenderedStale:
		return warn.Sprint(resp.Message) + "\n" + counts
	}
	if resp.Message != "" {
		return resp.Message
	}
	line := counts
	if synced := displayTime(resp.SyncedAt); synced != "" {
		verb := "Synced"
		if resp.Stale {
			verb = "Cached from"
		}
		line = fmt.Sprintf("%s %s: %s", verb, synced, counts)
	}
	return line
}

func countFolders(folders []api.FolderView) int {
	total := len(folders)
	for _, folder := range folders {
		total += countFolders(folder.Children)
	}
	return total
}

func displayTime(value string) string {
	if value == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format(time.DateTime)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
