package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	UpsertItem(ctx context.Context, in Item, children []ChildLink) error
	GetItem(ctx context.Context, id string) (Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, filter ItemListFilter) ([]Item, error)
	ListChildren(ctx context.Context, parentID string) ([]ChildLink, error)
	ListAllChildren(ctx context.Context) ([]ChildLink, error)
	UpdateItemPriority(ctx context.Context, id string, priority int) error

	CreateEntry(ctx context.Context, in CalendarEntry) error
	GetEntry(ctx context.Context, id string) (CalendarEntry, error)
	UpdateEntry(ctx context.Context, in CalendarEntry) error
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, filter EntryListFilter) ([]CalendarEntry, error)
	ListOverlappingEntries(ctx context.Context, startMS, endMS int64) ([]RootSpan, error)
}
