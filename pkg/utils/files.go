package utils

import (
	"path/filepath"
	"strings"
)

// ResolveSource turns a program path into an absolute one and returns the
// directory holding it.
func ResolveSource(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// DumpDir is the default dump directory for a program: a sibling directory
// named after the file without its extension, e.g. prog.lec -> prog_dumps.
func DumpDir(fullPath string) string {
	base := strings.TrimSuffix(filepath.Base(fullPath), filepath.Ext(fullPath))
	return filepath.Join(filepath.Dir(fullPath), base+"_dumps")
}
