package runner

import (
	"fmt"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
)

// MissingPolicy decides what happens when a required parameter has no value
type MissingPolicy string

const (
	MissingIgnore MissingPolicy = "ignore"
	MissingWarn   MissingPolicy = "warn"
	MissingBlock  MissingPolicy = "block"
)

// ParseMissingPolicy accepts ignore, warn or block. Empty means ignore.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingIgnore:
		return MissingIgnore, nil
	case MissingWarn:
		return MissingWarn, nil
	case MissingBlock:
		return MissingBlock, nil
	}
	return "", fmt.Errorf("unknown missing parameter policy %q (expected ignore, warn or block)", s)
}

// ResolveParameters returns the effective parameter list of an operation.
// Path-level parameters come first; an operation-level parameter with the
// same name and location replaces the path-level one in place. Parameters
// without a name or location cannot be sent and are left out.
func ResolveParameters(c *document.Components, item *document.PathItem, op *document.Operation) ([]*document.Parameter, error) {
	params, _, err := resolveParameters(c, item, op)
	return params, err
}

// resolveParameters also describes each parameter it had to skip
func resolveParameters(c *document.Components, item *document.PathItem, op *document.Operation) ([]*document.Parameter, []string, error) {
	var (
		out     []*document.Parameter
		skipped []string
	)
	index := make(map[string]int)

	add := func(level string, list []document.ParameterOrRef) error {
		for i, p := range list {
			param, err := p.Resolve(c)
			if err != nil {
				return err
			}
			if param.Name == "" || param.In == "" {
				skipped = append(skipped, fmt.Sprintf("%s parameter #%d has no name or location and was skipped", level, i+1))
				continue
			}
			id := param.In + ":" + param.Name
			if j, ok := index[id]; ok {
				out[j] = param
				continue
			}
			index[id] = len(out)
			out = append(out, param)
		}
		return nil
	}

	if item != nil {
		if err := add("path-level", item.Parameters); err != nil {
			return nil, nil, err
		}
	}
	if op != nil {
		if err := add("operation", op.Parameters); err != nil {
			return nil, nil, err
		}
	}
	return out, skipped, nil
}

// missingRequired lists required parameters without a value.
// Path parameters are always required.
func missingRequired(params []*document.Parameter, values map[string]string) []string {
	var missing []string
	for _, p := range params {
		if !p.Required && p.In != "path" {
			continue
		}
		if values[p.Name] == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}
