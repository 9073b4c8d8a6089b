package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyWordList is returned when a word list has no usable entries
var ErrEmptyWordList = errors.New("word list is empty")

// DefaultWords is the built-in list of secret words, Venezuelan Christmas themed
var DefaultWords = []string{
	"Hallaca", "Pan de Jamón", "Ensalada de Gallina", "Pernil",
	"Ponche Crema", "Gaitas", "El Cañonazo", "Las 12 Uvas",
	"Maletas afuera", "Billete en el zapato", "Lentejas",
	"Torta Negra", "Amigo Secreto", "Estrenos", "Viejo Año",
	"Fuegos Artificiales", "La Billo's", "Intercambio de Regalos",
	"Uvas del Tiempo", "Brindis", "Tío borracho",
}

// LoadWords reads a JSON array of words from path. Blank entries are skipped.
func LoadWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing word list: %w", err)
	}

	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyWordList)
	}

	return words, nil
}
