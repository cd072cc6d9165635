package tracker

import "keycard/internal/records"

// JoinedRecord is one entry matched with its employee, image and category.
type JoinedRecord struct {
	Employee     records.Employee
	KeyCardEntry records.KeyCardEntry
	Image        records.Image
	Category     records.Category
}

type badgeSwipe struct {
	employee records.Employee
	entry    records.KeyCardEntry
}

type capturedSwipe struct {
	badgeSwipe
	image records.Image
}

// Join chains employees -> entries -> images -> categories with inner
// equi-joins. Output follows left input order, then right input order
// within each key.
func Join(employees []records.Employee, entries []records.KeyCardEntry, images []records.Image, categories []records.Category) []JoinedRecord {
	entriesByCard := index(entries, func(e records.KeyCardEntry) int { return e.KeyCardID })
	var swipes []badgeSwipe
	for _, emp := range employees {
		for _, entry := range entriesByCard[emp.KeyCardID] {
			swipes = append(swipes, badgeSwipe{employee: emp, entry: entry})
		}
	}

	imagesByID := index(images, func(img records.Image) int { return img.ImageID })
	var captured []capturedSwipe
	for _, s := range swipes {
		for _, img := range imagesByID[s.entry.SecurityImageID] {
			captured = append(captured, capturedSwipe{badgeSwipe: s, image: img})
		}
	}

	categoriesByID := index(categories, func(c records.Category) int { return c.CategoryID })
	joined := make([]JoinedRecord, 0, len(captured))
	for _, c := range captured {
		for _, cat := range categoriesByID[c.image.ImageCategoryID] {
			joined = append(joined, JoinedRecord{
				Employee:     c.employee,
				KeyCardEntry: c.entry,
				Image:        c.image,
				Category:     cat,
			})
		}
	}
	return joined
}

// index groups items by key, keeping input order inside each group.
func index[T any](items []T, key func(T) int) map[int][]T {
	out := make(map[int][]T, len(items))
	for _, item := range items {
		k := key(item)
		out[k] = append(out[k], item)
	}
	return out
}
