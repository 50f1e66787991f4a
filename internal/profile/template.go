package profile

import (
	"embed"
	"fmt"
	"os"
)

//go:embed template/callprof.toml
var templateFS embed.FS

// Template returns the starter callprof.toml contents.
func Template() []byte {
	data, err := templateFS.ReadFile("template/callprof.toml")
	if err != nil {
		// The file is compiled in; failure here is a build defect.
		panic(err)
	}
	return data
}

// WriteTemplate writes the starter profile to path, refusing to overwrite.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, Template(), 0o644)
}
