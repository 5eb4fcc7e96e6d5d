package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/recordhub/records-system/internal/core/domain"
)

// allowed maps each accepted extension to the content types it may carry.
// A sniffed type matches when it or one of its parents is listed.
var allowed = map[string][]string{
	".jpeg": {"image/jpeg"},
	".jpg":  {"image/jpeg"},
	".png":  {"image/png"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".xls":  {"application/vnd.ms-excel", "application/x-ole-storage"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	".txt":  {"text/plain"},
}

// Detect checks the file name against the allow-list and sniffs content to
// confirm it matches the extension. content is rewound before returning.
func Detect(fileName string, content io.ReadSeeker) (ext string, mime *mimetype.MIME, err error) {
	ext = strings.ToLower(filepath.Ext(fileName))
	accepted, ok := allowed[ext]
	if !ok {
		return "", nil, domain.ErrUnsupportedFileType
	}

	mime, err = mimetype.DetectReader(content)
	if err != nil {
		return "", nil, fmt.Errorf("detect content type: %w", err)
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", nil, fmt.Errorf("rewind upload: %w", err)
	}

	for m := mime; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return ext, mime, nil
			}
		}
	}
	return "", nil, domain.ErrUnsupportedFileType
}
