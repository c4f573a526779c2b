package session

import (
	"fmt"
	"os"
	"strings"
)

// moduleIndent is the indentation applied to template blocks when assembling
// a config from fragments.
const moduleIndent = "      "

// GenerateOptions controls config assembly from fragments.
type GenerateOptions struct {
	// Modules are template names, in render order.
	Modules []string
	// UsePages appends the pages fragment after the module blocks.
	UsePages bool
	// PagesModuleName replaces the MODULE placeholder in the pages fragment.
	PagesModuleName string
}

// Generate assembles a candidate config from the head fragment, the selected
// module templates, an optional pages fragment, and the tail fragment, and
// writes it to a timestamped generated file. Each template's trailing comma
// is normalized: every block ends with a comma except the last.
func (s *Session) Generate(opts GenerateOptions) (string, error) {
	head, err := s.fragment("head")
	if err != nil {
		return "", err
	}
	tail, err := s.fragment("tail")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(head)

	for i, name := range opts.Modules {
		lines, err := s.Templates.Read(name)
		if err != nil {
			return "", fmt.Errorf("missing template for %s: %w", name, err)
		}
		block := strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
		block = strings.TrimSuffix(block, ",")

		for j, line := range strings.Split(block, "\n") {
			if j > 0 {
				sb.WriteString("\n")
			}
			if strings.TrimSpace(line) != "" {
				sb.WriteString(moduleIndent)
			}
			sb.WriteString(strings.TrimRight(line, " \t"))
		}

		if i < len(opts.Modules)-1 || opts.UsePages {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	if opts.UsePages {
		pages, err := s.fragment("pages")
		if err != nil {
			return "", err
		}
		if opts.PagesModuleName != "" {
			pages = strings.ReplaceAll(pages, "MODULE", opts.PagesModuleName)
		}
		sb.WriteString(pages)
	}

	sb.WriteString(tail)

	path := s.Cfg.GeneratedPath(s.now())
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("writing generated config: %w", err)
	}
	return path, nil
}

func (s *Session) fragment(name string) (string, error) {
	data, err := os.ReadFile(s.Cfg.FragmentPath(name))
	if err != nil {
		return "", fmt.Errorf("missing %s fragment: %w", name, err)
	}
	return string(data), nil
}
