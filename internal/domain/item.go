package domain

import (
	"fmt"
	"strings"
)

// Condition is the health state of a catalog item.
type Condition string

const (
	// ConditionHealthy marks usable stock.
	ConditionHealthy Condition = "healthy"
	// ConditionDefective marks returned or damaged stock.
	ConditionDefective Condition = "defective"
)

// IsValid reports whether c is a known condition.
func (c Condition) IsValid() bool {
	return c == ConditionHealthy || c == ConditionDefective
}

// ConditionFromCode derives the condition from the material code prefix.
// Warehouse convention: M-prefixed codes are healthy stock, N-prefixed are
// defective returns, bare numeric codes are healthy.
func ConditionFromCode(code string) Condition {
	if strings.HasPrefix(code, "N") {
		return ConditionDefective
	}
	return ConditionHealthy
}

// Item is one inventory material record subject to search.
// The catalog is supplied fresh on every call; items are immutable snapshots,
// never shared process state.
type Item struct {
	id          string
	code        string
	description string
	partNumber  string
	condition   Condition
}

// NewItem validates and creates a catalog item.
// An empty condition is derived from the material code prefix. Description
// may be empty; such items pass validation but are never matched.
func NewItem(id, code, description, partNumber string, condition Condition) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	if code == "" {
		return Item{}, fmt.Errorf("%w: material code is required", ErrInvalidItem)
	}
	if condition == "" {
		condition = ConditionFromCode(code)
	}
	if !condition.IsValid() {
		return Item{}, fmt.Errorf("%w: unknown condition %q", ErrInvalidItem, condition)
	}

	return Item{
		id:          id,
		code:        code,
		description: strings.TrimSpace(description),
		partNumber:  partNumber,
		condition:   condition,
	}, nil
}

// ID returns the opaque unique identifier.
func (i Item) ID() string { return i.id }

// Code returns the material code.
func (i Item) Code() string { return i.code }

// Description returns the free-text description.
func (i Item) Description() string { return i.description }

// PartNumber returns the optional manufacturer part identifier.
func (i Item) PartNumber() string { return i.partNumber }

// Condition returns the health state.
func (i Item) Condition() Condition { return i.condition }

// Matchable reports whether the item can participate in semantic scoring.
func (i Item) Matchable() bool { return i.description != "" }

// SearchText returns the text embedded for this item: description first,
// then code, so both carry the same relative weight across items.
func (i Item) SearchText() string {
	if i.description == "" {
		return ""
	}
	return i.description + " " + i.code
}
