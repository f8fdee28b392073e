package storage

import (
	"context"
	"time"

	"github.com/mohankv/timebox/internal/model"
)

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// FromModelItem splits a graph item into its row and placement rows.
func FromModelItem(in model.Item, createdAt time.Time) (Item, []ChildLink) {
	row := Item{
		ID:         in.ID,
		Name:       in.Name,
		Kind:       string(in.Kind),
		DurationMS: in.Duration.Milliseconds(),
		Priority:   in.Priority,
		SortType:   string(in.SortType),
		CreatedAt:  createdAt,
	}
	if row.SortType == "" {
		row.SortType = string(model.SortManual)
	}
	links := make([]ChildLink, 0, len(in.SubChildren)+len(in.CheckChildren))
	for _, ch := range in.SubChildren {
		offset := ch.Offset.Milliseconds()
		links = append(links, ChildLink{
			RelationshipID: ch.RelationshipID,
			ParentID:       in.ID,
			ChildID:        ch.ChildID,
			OffsetMS:       &offset,
		})
	}
	for _, ch := range in.CheckChildren {
		links = append(links, ChildLink{
			RelationshipID: ch.RelationshipID,
			ParentID:       in.ID,
			ChildID:        ch.ChildID,
			Complete:       ch.Complete,
		})
	}
	return row, links
}

// ToModelItem rebuilds a graph item from its row, its own placement rows and
// the placement rows that point at it.
func ToModelItem(row Item, children, parentLinks []ChildLink) model.Item {
	out := model.Item{
		ID:       row.ID,
		Name:     row.Name,
		Kind:     model.ItemKind(row.Kind),
		Duration: msToDuration(row.DurationMS),
		Priority: row.Priority,
	}
	if out.Kind == model.KindCheckList {
		out.SortType = model.SortType(row.SortType)
	}
	for _, link := range children {
		if link.OffsetMS != nil {
			out.SubChildren = append(out.SubChildren, model.SubChild{
				ChildID:        link.ChildID,
				Offset:         msToDuration(*link.OffsetMS),
				RelationshipID: link.RelationshipID,
			})
		} else {
			out.CheckChildren = append(out.CheckChildren, model.CheckChild{
				ChildID:        link.ChildID,
				RelationshipID: link.RelationshipID,
				Complete:       link.Complete,
			})
		}
	}
	for _, link := range parentLinks {
		out.Parents = append(out.Parents, model.ParentRef{
			ParentID:       link.ParentID,
			RelationshipID: link.RelationshipID,
		})
	}
	return out
}

// SaveItem persists a graph item, replacing its previous placements.
func SaveItem(ctx context.Context, repo Repository, in model.Item, createdAt time.Time) error {
	row, links := FromModelItem(in, createdAt)
	return repo.UpsertItem(ctx, row, links)
}

// LoadCollection assembles the full item graph snapshot from storage.
func LoadCollection(ctx context.Context, repo Repository) (model.Collection, error) {
	rows, err := repo.ListItems(ctx, ItemListFilter{})
	if err != nil {
		return model.Collection{}, err
	}
	links, err := repo.ListAllChildren(ctx)
	if err != nil {
		return model.Collection{}, err
	}
	byParent := make(map[string][]ChildLink)
	byChild := make(map[string][]ChildLink)
	for _, link := range links {
		byParent[link.ParentID] = append(byParent[link.ParentID], link)
		byChild[link.ChildID] = append(byChild[link.ChildID], link)
	}
	items := make([]model.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToModelItem(row, byParent[row.ID], byChild[row.ID]))
	}
	return model.NewCollection(items...)
}

// LoadCalendar reads every base-calendar entry.
func LoadCalendar(ctx context.Context, repo Repository) (model.Calendar, error) {
	rows, err := repo.ListEntries(ctx, EntryListFilter{})
	if err != nil {
		return nil, err
	}
	out := make(model.Calendar, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.BaseCalendarEntry{
			ID:     row.ID,
			ItemID: row.ItemID,
			Start:  msToTime(row.StartMS),
		})
	}
	return out, nil
}
