// Package expiry holds the pure parts of the daily expiry check: which items
// are fetched, which of those become notification candidates, and how a
// user's candidates are rendered into a push message.
package expiry

import (
	"github.com/smarthousehold/inventory-service/internal/domain"
)

// Window describes the fetch horizon and the narrower set of day offsets
// that actually trigger a notification.
type Window struct {
	HorizonDays int
	NotifyDays  []int
}

// DefaultWindow fetches a week ahead but notifies only for today and tomorrow.
var DefaultWindow = Window{HorizonDays: 7, NotifyDays: []int{0, 1}}

// Range returns the inclusive date range the scan query covers.
func (w Window) Range(today domain.Date) (from, to domain.Date) {
	return today, today.AddDays(w.HorizonDays)
}

func (w Window) notifies(days int) bool {
	for _, d := range w.NotifyDays {
		if d == days {
			return true
		}
	}
	return false
}

// Group is the ordered candidate list of one user.
type Group struct {
	UserID     string
	Candidates []domain.Candidate
}

// Collect filters fetched items down to notification candidates and groups
// them by owner. Users appear in order of their first candidate; each user's
// candidates keep the input order.
func Collect(items []domain.ExpiringItem, today domain.Date, w Window) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, it := range items {
		days := today.DaysUntil(it.ExpiryDate)
		if days < 0 || days > w.HorizonDays || !w.notifies(days) {
			continue
		}
		i, ok := index[it.UserID]
		if !ok {
			i = len(groups)
			index[it.UserID] = i
			groups = append(groups, Group{UserID: it.UserID})
		}
		groups[i].Candidates = append(groups[i].Candidates, domain.Candidate{
			Name:     it.Name,
			DaysLeft: days,
		})
	}
	return groups
}

// UserIDs lists the owners of the given groups.
func UserIDs(groups []Group) []string {
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.UserID
	}
	return ids
}

// CountCandidates sums candidates across all groups.
func CountCandidates(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Candidates)
	}
	return n
}
