package entities

import "sort"

// Stack is one inventory line.
type Stack struct {
	ItemID string `json:"itemId"`
	Count  int    `json:"count"`
}

// Inventory counts items by id. It survives board changes.
type Inventory struct {
	items map[string]int
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{items: map[string]int{}}
}

// Add gives count of itemID.
func (inv *Inventory) Add(itemID string, count int) {
	inv.items[itemID] += count
	if inv.items[itemID] <= 0 {
		delete(inv.items, itemID)
	}
}

// Remove takes count of itemID. It fails, changing nothing, when there
// are fewer than count.
func (inv *Inventory) Remove(itemID string, count int) bool {
	cur := inv.items[itemID]
	if cur < count {
		return false
	}
	if cur == count {
		delete(inv.items, itemID)
	} else {
		inv.items[itemID] = cur - count
	}
	return true
}

// Has reports whether at least one itemID is held.
func (inv *Inventory) Has(itemID string) bool {
	return inv.items[itemID] > 0
}

// Count returns how many itemID are held.
func (inv *Inventory) Count(itemID string) int {
	return inv.items[itemID]
}

// All returns every stack sorted by item id.
func (inv *Inventory) All() []Stack {
	out := make([]Stack, 0, len(inv.items))
	for id, n := range inv.items {
		out = append(out, Stack{ItemID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Snapshot returns a copy of the counts.
func (inv *Inventory) Snapshot() map[string]int {
	out := make(map[string]int, len(inv.items))
	for k, v := range inv.items {
		out[k] = v
	}
	return out
}

// Restore replaces the counts with data.
func (inv *Inventory) Restore(data map[string]int) {
	inv.items = make(map[string]int, len(data))
	for k, v := range data {
		if v > 0 {
			inv.items[k] = v
		}
	}
}
