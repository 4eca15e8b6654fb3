package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// LoadProject parses and validates a rendered service definition with the
// compose loader. Validation happens here, before anything is started, so
// a bad template fails the pipeline without touching the container engine.
func LoadProject(path, projectName string) (*composetypes.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve service definition %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read service definition %s: %w", path, err)
	}

	env := make(composetypes.Mapping)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[key] = value
	}

	details := composetypes.ConfigDetails{
		WorkingDir: filepath.Dir(abs),
		ConfigFiles: []composetypes.ConfigFile{
			{Filename: abs, Content: data},
		},
		Environment: env,
	}

	project, err := loader.Load(details, func(o *loader.Options) {
		if projectName != "" {
			o.SetProjectName(projectName, true)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("validate service definition %s: %w", path, err)
	}
	return project, nil
}

// ServiceNames returns the sorted service names of a loaded project.
func ServiceNames(project *composetypes.Project) []string {
	return project.ServiceNames()
}
