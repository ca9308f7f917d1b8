package xlsplit

import (
	"fmt"
	"strings"
)

// ChunkExt is the extension of every chunk file.
const ChunkExt = ".csv"

const partMarker = "-partie-"

// BaseName strips the last extension from an original file name.
func BaseName(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 || i == len(fileName)-1 || strings.ContainsRune(fileName[i:], '/') {
		return fileName
	}
	return fileName[:i]
}

// ChunkFileName builds "{base}{-sheet}-partie-{NNN}.csv" for the 0-based
// chunk index. The sheet suffix is only present for multi-sheet workbooks.
func ChunkFileName(baseName, sheetName string, multiSheet bool, index int) string {
	suffix := ""
	if multiSheet {
		suffix = "-" + sheetName
	}
	return fmt.Sprintf("%s%s%s%03d%s", baseName, suffix, partMarker, index+1, ChunkExt)
}
