// Package document provides utilities for text document manipulation.
package document

import (
	"fmt"
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ApplyContentChange applies a TextDocumentContentChangeEvent to text
// and returns the updated text. The server advertises full-content
// sync, but a ranged change from a client is applied rather than
// corrupting the store. Positions are UTF-16 based, per LSP.
func ApplyContentChange(text string, change protocol.TextDocumentContentChangeEvent) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}

	start, err := PositionToOffset(text, int(change.Range.Start.Line), int(change.Range.Start.Character))
	if err != nil {
		return "", fmt.Errorf("invalid start position: %w", err)
	}
	end, err := PositionToOffset(text, int(change.Range.End.Line), int(change.Range.End.Character))
	if err != nil {
		return "", fmt.Errorf("invalid end position: %w", err)
	}
	if start > end {
		return "", fmt.Errorf("start offset %d after end offset %d", start, end)
	}

	return text[:start] + change.Text + text[end:], nil
}

// PositionToOffset converts a 0-based line and UTF-16 character pair to
// a byte offset in text.
func PositionToOffset(text string, line, character int) (int, error) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return 0, fmt.Errorf("line %d out of range (0-%d)", line, len(lines)-1)
	}

	offset := 0
	for i := 0; i < line; i++ {
		offset += len(lines[i]) + 1
	}

	inLine, err := utf16OffsetToByteOffset(lines[line], character)
	if err != nil {
		return 0, err
	}
	return offset + inLine, nil
}

// utf16OffsetToByteOffset converts a UTF-16 code-unit offset to a byte
// offset within one line. An offset exactly at end of line is valid
// (insertions append there); an offset inside a surrogate pair clamps
// to the rune boundary.
func utf16OffsetToByteOffset(line string, utf16Offset int) (int, error) {
	if utf16Offset <= 0 {
		return 0, nil
	}

	units := 0
	for byteOffset, r := range line {
		if units >= utf16Offset {
			return byteOffset, nil
		}
		units += utf16.RuneLen(r)
	}
	if utf16Offset > units {
		return 0, fmt.Errorf("UTF-16 offset %d exceeds line length %d", utf16Offset, units)
	}
	return len(line), nil
}
