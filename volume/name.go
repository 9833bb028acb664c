package volume

import "strings"

// ShortName converts name to a space-padded FAT 8.3 directory name.
//
// The name is split at the first '.'; the base keeps at most 8 characters
// and the extension at most 3, both upper-cased. An empty name yields the
// 8.3 form of store.DefaultFileName.
func ShortName(name string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	if name == "" {
		name = defaultFileName
	}

	base, ext, _ := strings.Cut(name, ".")
	if len(base) > 8 {
		base = base[:8]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	for i := 0; i < len(base); i++ {
		out[i] = upper(base[i])
	}
	for i := 0; i < len(ext); i++ {
		out[8+i] = upper(ext[i])
	}
	return out
}

// FormatShortName renders an 8.3 directory name as NAME.EXT.
func FormatShortName(n [11]byte) string {
	base := strings.TrimRight(string(n[:8]), " ")
	ext := strings.TrimRight(string(n[8:]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// padLabel converts a volume label to its 11-byte directory form.
func padLabel(label string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
		if i < len(label) {
			out[i] = upper(label[i])
		}
	}
	return out
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
