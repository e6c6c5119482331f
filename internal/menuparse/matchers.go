// internal/menuparse/matchers.go
package menuparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Field names one attribute of a food record.
type Field int

const (
	FieldDescription Field = iota
	FieldQuantity
	FieldCalories
	FieldProteins

	fieldCount = 4
)

func (f Field) String() string {
	switch f {
	case FieldDescription:
		return "description"
	case FieldQuantity:
		return "quantity"
	case FieldCalories:
		return "calories"
	case FieldProteins:
		return "proteins"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// listMarker opens a description written as a list item.
const listMarker = "\n-"

var (
	quantityPattern    = regexp.MustCompile(`Gramaje?\s*:?\s*([0-9]+)\s*[gm]`)
	caloriesPattern    = regexp.MustCompile(`([0-9]+)\s*kcal`)
	proteinsPattern    = regexp.MustCompile(`proteine\s*:?\s*([0-9]+)\s*g`)
	descriptionPattern = regexp.MustCompile(`^\n[^*][^:0-9]+:[^:0-9]+$`)
)

// MatchQuantity extracts the weight in grams (or millilitres) from fragments
// such as "Gramaj: 150g".
func MatchQuantity(fragment string) (uint32, bool, error) {
	return matchNumber(quantityPattern, FieldQuantity, fragment)
}

// MatchCalories extracts the energy value from fragments such as "320 kcal".
func MatchCalories(fragment string) (uint32, bool, error) {
	return matchNumber(caloriesPattern, FieldCalories, fragment)
}

// MatchProteins extracts the protein grams from fragments such as "proteine: 25g".
func MatchProteins(fragment string) (uint32, bool, error) {
	return matchNumber(proteinsPattern, FieldProteins, fragment)
}

// MatchDescription recognizes the text node that names a dish. A list item
// ("\n-...") is always a description; any other fragment must look like a
// single "label: value" line without digits.
func MatchDescription(fragment string) (string, bool) {
	if strings.HasPrefix(fragment, listMarker) {
		return fragment[len(listMarker):], true
	}
	if descriptionPattern.MatchString(fragment) {
		return fragment[1:], true
	}
	return "", false
}

func matchNumber(re *regexp.Regexp, field Field, fragment string) (uint32, bool, error) {
	m := re.FindStringSubmatch(fragment)
	if m == nil {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, false, &FieldError{
			Field:    field,
			Fragment: fragment,
			Err:      fmt.Errorf("%w: %v", ErrMalformedNumber, err),
		}
	}
	return uint32(n), true, nil
}
