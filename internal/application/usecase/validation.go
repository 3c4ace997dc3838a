package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Hospital-api/internal/domain"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return invalid("campos obligatorios: %s", strings.Join(missing, ", "))
}

func parseActive(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "true", "1", "active":
		v := true
		return &v, nil
	case "false", "0", "inactive":
		v := false
		return &v, nil
	}
	return nil, invalid("filtro active %q", s)
}
