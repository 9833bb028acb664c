package store

// RingLines is the number of lines kept by the ring log.
const RingLines = 5

// SplitLines splits a ring log payload into lines. Each line keeps its
// terminating '\n'; a final unterminated fragment counts as a line. At most
// RingLines lines are returned.
func SplitLines(payload []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(payload) && len(lines) < RingLines; i++ {
		if payload[i] == '\n' {
			lines = append(lines, payload[start:i+1])
			start = i + 1
		}
	}
	if start < len(payload) && len(lines) < RingLines {
		lines = append(lines, payload[start:])
	}
	return lines
}

// RingAppend returns the payload that results from logging line on top of
// prior, newest first.
//
// line is truncated to DataSize. Up to RingLines-1 prior lines follow it in
// their existing order, as long as they fit within DataSize. The first
// prior line that does not fit ends the log; lines are never split.
func RingAppend(prior, line []byte) []byte {
	if len(line) > DataSize {
		line = line[:DataSize]
	}
	out := make([]byte, 0, DataSize)
	out = append(out, line...)

	for i, l := range SplitLines(prior) {
		if i >= RingLines-1 || len(out)+len(l) > DataSize {
			break
		}
		out = append(out, l...)
	}
	return out
}
