package saver

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"
)

// BucketID returns the media index bucket identifier for a folder path.
//
// The identifier is the decimal form of the 32-bit string hash of the
// lower-cased path (h = 31*h + c over UTF-16 code units), which is how
// photo indexes on phones group images per folder. The camera folder on
// a typical handset, "/storage/emulated/0/DCIM/Camera", maps to
// "-1739773001".
func BucketID(path string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(strings.ToLower(path))) {
		h = 31*h + int32(c)
	}
	return strconv.FormatInt(int64(h), 10)
}

// bucketOf returns the bucket id of the folder holding filePath.
func bucketOf(filePath string) string {
	return BucketID(filepath.Dir(filePath))
}
