package application

import (
	"fmt"
	"strconv"
	"strings"

	"mediasweep/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// ValidateID checks that a numeric id is positive
func ValidateID(fieldName string, id int64) error {
	if id <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be a positive integer, got: %d", formatFieldName(fieldName), id),
		}
	}
	return nil
}

// ValidateIDs checks a non-empty list of positive ids
func ValidateIDs(fieldName string, ids []int64) error {
	if len(ids) == 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must not be empty", formatFieldName(fieldName)),
		}
	}
	for _, id := range ids {
		if err := ValidateID(fieldName, id); err != nil {
			return err
		}
	}
	return nil
}

// ParseIDList reads a comma-separated list of positive ids, e.g. "12, 31"
func ParseIDList(fieldName, raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("%s must be positive integers, got: %q", formatFieldName(fieldName), part),
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseRoleVariants reads comma-separated role=variant pairs, e.g.
// "hero=hero,carousel=carousel-photo". Unknown roles map to "other".
func ParseRoleVariants(raw string) (map[domain.Role]string, error) {
	out := make(map[domain.Role]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		role, variant, ok := strings.Cut(pair, "=")
		role, variant = strings.TrimSpace(role), strings.TrimSpace(variant)
		if !ok || role == "" || variant == "" {
			return nil, &ValidationError{
				Field:   "variants",
				Message: fmt.Sprintf("invalid role mapping %q (expected role=variant)", pair),
			}
		}
		out[domain.ParseRole(role)] = variant
	}
	return out, nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "assetID" -> "asset ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"assetID":     "asset ID",
		"documentID":  "document ID",
		"primaryID":   "primary ID",
		"duplicateID": "duplicate ID",
		"ids":         "ids",
		"variantName": "variant name",
		"variants":    "variants",
		"file":        "file",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}
