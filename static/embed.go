package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/* PLAYERGUIDE.md
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}

// Guide returns the bundled player guide.
func Guide() string {
	b, err := embedded.ReadFile("PLAYERGUIDE.md")
	if err != nil {
		return ""
	}
	return string(b)
}
