package domain

import "time"

// Backup is an immutable snapshot of the content document
type Backup struct {
	ID        int64
	Filename  string
	Size      int
	Data      []byte
	CreatedAt time.Time
}

// ChangeType classifies a difference between two documents
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// Change is a single difference between two documents
type Change struct {
	Type ChangeType
	Path string
}
