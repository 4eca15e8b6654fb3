package services

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/services.yaml.tmpl
var servicesTemplate string

// RenderInput carries the values substituted into the service definition
// template. Field defaults are resolved by the template itself so a
// partially filled input still renders a valid definition.
type RenderInput struct {
	// Project is the compose project name, normally the instance slug.
	Project string

	// Environment is the deployment target label.
	Environment string

	// DatabaseName is the database created on first start. Defaults to
	// the project name in the template.
	DatabaseName string

	// DatabaseUser is the database role the platform connects as.
	DatabaseUser string

	// DatabasePassword is the database role password.
	DatabasePassword string

	// DatabasePort is the host port the database is published on.
	DatabasePort int

	// CachePort is the host port the cache is published on.
	CachePort int
}

// Render produces the service definition from the embedded template.
func Render(input RenderInput) ([]byte, error) {
	if input.Project == "" {
		return nil, fmt.Errorf("render services: project name is required")
	}

	tmpl, err := template.New("services").Funcs(sprig.FuncMap()).Parse(servicesTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse services template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, input); err != nil {
		return nil, fmt.Errorf("render services template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderToFile renders the service definition and writes it to path.
func RenderToFile(input RenderInput, path string) error {
	data, err := Render(input)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write service definition %s: %w", path, err)
	}
	return nil
}
