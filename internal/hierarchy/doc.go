// Package hierarchy turns a flat workflow list into a folder tree derived from
// tag metadata.
//
// Organize is pure and deterministic: every workflow lands in exactly one of
// the archived list, the untagged list, or a single folder. Tags are ordered
// by creation time (oldest first) and each tag adds one nesting level, so a
// workflow tagged Finance (older) and Reports (newer) lives in
// "Finance/Reports". Folders with the same name are shared by every workflow
// whose ordered tag chain passes through them.
package hierarchy
