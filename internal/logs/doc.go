// Package logs reads the n8nexplorer log file for the `logs` command.
//
// Last returns the trailing lines with bounded memory, Since reads complete
// lines appended after an offset, and Follow polls for new lines until its
// context ends. A file that shrinks below the saved offset is treated as
// rotated and read again from the start.
package logs
