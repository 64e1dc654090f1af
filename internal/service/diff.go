package service

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"contentbot/internal/domain"
)

// Diff compares two JSON documents and lists changed leaf paths, sorted by path.
// Objects are compared key by key; arrays and scalars are compared as values.
func Diff(before, after []byte) ([]domain.Change, error) {
	var a, b any
	if err := json.Unmarshal(before, &a); err != nil {
		return nil, fmt.Errorf("decode old document: %w", err)
	}
	if err := json.Unmarshal(after, &b); err != nil {
		return nil, fmt.Errorf("decode new document: %w", err)
	}

	var changes []domain.Change
	diffValue("", a, b, &changes)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

func diffValue(path string, a, b any, out *[]domain.Change) {
	am, aIsObj := a.(map[string]any)
	bm, bIsObj := b.(map[string]any)
	if !aIsObj || !bIsObj {
		if !reflect.DeepEqual(a, b) {
			*out = append(*out, domain.Change{Type: domain.ChangeChanged, Path: displayPath(path)})
		}
		return
	}

	for key, av := range am {
		child := joinPath(path, key)
		bv, ok := bm[key]
		if !ok {
			*out = append(*out, domain.Change{Type: domain.ChangeRemoved, Path: child})
			continue
		}
		diffValue(child, av, bv, out)
	}
	for key := range bm {
		if _, ok := am[key]; !ok {
			*out = append(*out, domain.Change{Type: domain.ChangeAdded, Path: joinPath(path, key)})
		}
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
