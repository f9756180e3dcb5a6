package id

import "github.com/google/uuid"

// UUIDGenerator issues random ids for orders and items.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.New().String() }
