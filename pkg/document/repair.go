package document

import "bytes"

var eofMarker = []byte("%%EOF")

// Repair drops anything after the last %%EOF marker, which some writers
// and download tools append. It reports false when there is nothing to cut
// or no marker at all.
func Repair(data []byte) ([]byte, bool) {
	i := bytes.LastIndex(data, eofMarker)
	if i < 0 {
		return nil, false
	}
	end := i + len(eofMarker)
	tail := bytes.TrimLeft(data[end:], "\r\n")
	if len(tail) == 0 {
		return nil, false
	}

	repaired := make([]byte, end+1)
	copy(repaired, data[:end])
	repaired[end] = '\n'
	return repaired, true
}
