package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

// Alias is a static path redirect, the declared route aliases of the web
// app. All aliases are temporary redirects.
type Alias struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type aliasFile struct {
	Redirects []Alias `yaml:"redirects"`
}

// defaultAliases mirrors the app's built-in path aliases
var defaultAliases = []Alias{
	{From: "/login", To: "/auth/login"},
	{From: "/register", To: "/auth/register"},
	{From: "/dreamshub", To: "/dashboard/dreamshub/threads"},
	{From: "/lms", To: "/dashboard/lms/courses"},
	{From: "/rekomendasi", To: "/dashboard/recommendation"},
}

// LoadAliases reads the alias table from a YAML file, or returns the
// defaults when no path is configured.
func LoadAliases(path string) ([]Alias, error) {
	if path == "" {
		return defaultAliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read redirects file: %w", err)
	}

	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse redirects file: %w", err)
	}
	return file.Redirects, nil
}

func (s *Server) registerAliases() {
	for _, alias := range s.aliases {
		target := alias.To
		s.router.GET(alias.From, func(c *gin.Context) {
			c.Redirect(http.StatusFound, target)
		})
	}
}
