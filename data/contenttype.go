package data

import (
	"path"
	"strings"
)

type ContentType string

const (
	ContentTypeZip      ContentType = "application/zip"
	ContentTypeMarkdown ContentType = "text/markdown; charset=utf-8"
	ContentTypeText     ContentType = "text/plain; charset=utf-8"
	ContentTypeStream   ContentType = "application/octet-stream"
)

// artifactTypes maps the extensions of export artifacts to their content type
var artifactTypes = map[string]ContentType{
	".zip": ContentTypeZip,
	".md":  ContentTypeMarkdown,
	".txt": ContentTypeText,
}

// ArtifactContentType returns the content type of an artifact name.
// Unknown extensions are reported as octet-stream.
func ArtifactContentType(name string) ContentType {
	if ct, ok := artifactTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}

	return ContentTypeStream
}
