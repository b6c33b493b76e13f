package config

type UploadConfig struct {
	AllowedMimeTypes  []string
	AllowedExtensions []string
	MaxSizeMB         int64
	PathPrefix        string
}

var imageMimeTypes = []string{"image/jpeg", "image/png", "image/gif"}

var UploadContexts = map[string]UploadConfig{
	"arvore_foto": {
		AllowedMimeTypes:  imageMimeTypes,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif"},
		MaxSizeMB:         16,
		PathPrefix:        "arvores",
	},
	"vistoria_foto": {
		AllowedMimeTypes:  append(append([]string{}, imageMimeTypes...), "application/pdf"),
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "pdf"},
		MaxSizeMB:         16,
		PathPrefix:        "vistorias",
	},
	// xlsx is a zip container
	"especie_import": {
		AllowedMimeTypes:  []string{"application/zip", "application/octet-stream"},
		AllowedExtensions: []string{"xlsx"},
		MaxSizeMB:         10,
		PathPrefix:        "importacoes",
	},
}
