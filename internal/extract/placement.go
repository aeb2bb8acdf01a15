package extract

import "path/filepath"

// Target resolves where an archive's entries land. tops maps each
// top-level entry name to whether it denotes a directory (either an
// explicit directory entry or a prefix of deeper paths). When the archive
// holds exactly one top-level directory, entries go straight into the
// destination; wrapping them again in a folder named after the archive
// would only nest one redundant level. Everything else extracts under
// destination/<baseName>/ so sibling archives cannot collide.
func Target(destination, baseName string, tops map[string]bool) string {
	if len(tops) == 1 {
		for _, isDir := range tops {
			if isDir {
				return destination
			}
		}
	}
	return filepath.Join(destination, baseName)
}
