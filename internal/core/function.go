package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ArgType is the declared JSON type of a function argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgNumber  ArgType = "number"
	ArgBoolean ArgType = "boolean"
)

// ArgSpec describes one argument of a registry function.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Description string
	// Positive requires numeric arguments to be >= 1.
	Positive bool
	// Default is applied when an optional argument is absent.
	Default any
}

// FunctionSpec is the catalogue entry advertised to the completion service.
type FunctionSpec struct {
	Name        string
	Description string
	Args        []ArgSpec
}

// Arg returns the argument spec with the given name.
func (f FunctionSpec) Arg(name string) (ArgSpec, bool) {
	for _, a := range f.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}

// JSONSchema renders the argument list as a JSON-schema object, the shape
// every completion service expects for function parameters.
func (f FunctionSpec) JSONSchema() map[string]any {
	props := make(map[string]any, len(f.Args))
	required := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		prop := map[string]any{
			"type":        string(a.Type),
			"description": a.Description,
		}
		if a.Positive {
			prop["minimum"] = 1
		}
		if a.Default != nil {
			prop["default"] = a.Default
		}
		props[a.Name] = prop
		if a.Required {
			required = append(required, a.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Properties returns just the "properties" member of JSONSchema.
func (f FunctionSpec) Properties() map[string]any {
	return f.JSONSchema()["properties"].(map[string]any)
}

// RequiredArgs lists the names of required arguments in declaration order.
func (f FunctionSpec) RequiredArgs() []string {
	var names []string
	for _, a := range f.Args {
		if a.Required {
			names = append(names, a.Name)
		}
	}
	return names
}

// Directive is a completion service's request to call a registry function.
type Directive struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ParseDirective decodes a raw JSON argument object into a Directive.
// Empty input is treated as no arguments.
func ParseDirective(name string, raw []byte) (*Directive, error) {
	d := &Directive{Name: name, Arguments: map[string]any{}}
	if strings.TrimSpace(string(raw)) == "" {
		return d, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&d.Arguments); err != nil {
		return nil, fmt.Errorf("decoding arguments for %s: %w", name, err)
	}
	if d.Arguments == nil {
		d.Arguments = map[string]any{}
	}
	return d, nil
}
