// Package value contains type-aware coercion of raw filter input and
// the SQL string-escaping primitive shared by all dialects.
package value

import "strings"

// Kind is a simplified classification of a declared column type.
// Dialects key their literal formatting and predicate rendering off it.
type Kind int

const (
	KindOther Kind = iota
	KindNumeric
	KindCharacter
	KindDate
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCharacter:
		return "character"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	}
	return "other"
}

// TypeKind classifies a declared column type across the supported
// catalogs. The declared type is normalized to uppercase with any
// width specification removed, so VARCHAR2(30) and "character varying"
// both resolve correctly.
func TypeKind(declaredType string) Kind {
	baseType := strings.ToUpper(strings.TrimSpace(declaredType))
	if idx := strings.Index(baseType, "("); idx != -1 {
		baseType = strings.TrimSpace(baseType[:idx])
	}
	switch baseType {
	case "NUMBER", "NUMERIC", "DECIMAL", "DEC", "INTEGER", "INT", "SMALLINT",
		"BIGINT", "TINYINT", "MEDIUMINT", "FLOAT", "DOUBLE", "DOUBLE PRECISION",
		"REAL", "BINARY_FLOAT", "BINARY_DOUBLE":
		return KindNumeric
	case "VARCHAR2", "NVARCHAR2", "CHAR", "NCHAR", "CLOB", "NCLOB",
		"VARCHAR", "CHARACTER", "CHARACTER VARYING", "TEXT",
		"LONGTEXT", "MEDIUMTEXT", "TINYTEXT":
		return KindCharacter
	case "DATE":
		return KindDate
	case "DATETIME":
		return KindTimestamp
	}
	// TIMESTAMP comes in several flavors: TIMESTAMP(6),
	// TIMESTAMP WITH TIME ZONE, TIMESTAMP WITHOUT TIME ZONE.
	if strings.HasPrefix(baseType, "TIMESTAMP") {
		return KindTimestamp
	}
	return KindOther
}

// IsDateTime reports whether the declared type holds a date or
// timestamp value.
func IsDateTime(declaredType string) bool {
	k := TypeKind(declaredType)
	return k == KindDate || k == KindTimestamp
}

// EscapeString doubles single quotes so the result can be embedded
// inside a single-quoted SQL literal. This is the injection-safety
// boundary for all character values rendered as literals.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
