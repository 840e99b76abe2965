package parser

import "strings"

// Block is one marker-delimited unit of the input.
type Block struct {
	// Ordinal is the 1-based position of the block in the file.
	Ordinal int
	// Line is the line number of the marker.
	Line  int
	Lines []Line
}

// Options tunes the parser.
type Options struct {
	// LooseMarkers accepts a bare dashed line as a block marker, without
	// the "Question" keyword.
	LooseMarkers bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{LooseMarkers: true}
}

// IsMarker reports whether a logical line starts a new block.
func (opts Options) IsMarker(text string) bool {
	if !strings.HasPrefix(text, markerPrefix) {
		return false
	}
	if opts.LooseMarkers {
		return true
	}
	return strings.Contains(strings.ToLower(text), "question")
}

// Split partitions normalized lines into blocks, dropping comments.
func Split(lines []Line, opts Options) ([]Block, error) {
	var blocks []Block
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line.Text, commentPrefix):
			continue
		case opts.IsMarker(line.Text):
			if err := checkNotEmpty(blocks); err != nil {
				return nil, err
			}
			blocks = append(blocks, Block{Ordinal: len(blocks) + 1, Line: line.Number})
		case len(blocks) == 0:
			return nil, &StructureError{Line: line.Number, Message: "content before the first question marker"}
		default:
			last := &blocks[len(blocks)-1]
			last.Lines = append(last.Lines, line)
		}
	}
	if err := checkNotEmpty(blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func checkNotEmpty(blocks []Block) error {
	if len(blocks) == 0 {
		return nil
	}
	last := blocks[len(blocks)-1]
	if len(last.Lines) == 0 {
		return &StructureError{Block: last.Ordinal, Line: last.Line, Message: "question block has no lines"}
	}
	return nil
}
