package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/HarshMohan14/zambara/internal/zambara"
)

// queryInt reads an integer query parameter, returning def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &zambara.ValidationError{Field: name, Message: fmt.Sprintf("%s must be an integer", name)}
	}
	return n, nil
}

func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &zambara.ValidationError{Field: name, Message: fmt.Sprintf("%s must be true or false", name)}
	}
	return b, nil
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if err := zambara.Required(name, v); err != nil {
		return "", err
	}
	return v, nil
}
