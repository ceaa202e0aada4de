package expiry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// Title is the fixed notification title.
const Title = "Smart Household Assistant"

// DefaultMaxLines is how many items are spelled out before the overflow line.
const DefaultMaxLines = 3

// Describe renders a single candidate line.
func Describe(c domain.Candidate) string {
	switch c.DaysLeft {
	case 0:
		return c.Name + " expires today"
	case 1:
		return c.Name + " expires tomorrow"
	}
	return fmt.Sprintf("%s expires in %d days", c.Name, c.DaysLeft)
}

// SortByUrgency returns a copy of cands ordered by days left ascending;
// equal days keep their input order.
func SortByUrgency(cands []domain.Candidate) []domain.Candidate {
	sorted := append([]domain.Candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DaysLeft < sorted[j].DaysLeft
	})
	return sorted
}

// ComposeBody renders the most urgent maxLines candidates, one per line,
// followed by "+N more items." when some were left out.
func ComposeBody(cands []domain.Candidate, maxLines int) string {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	sorted := SortByUrgency(cands)

	shown := sorted
	if len(shown) > maxLines {
		shown = shown[:maxLines]
	}
	lines := make([]string, 0, len(shown)+1)
	for _, c := range shown {
		lines = append(lines, Describe(c))
	}
	if more := len(sorted) - maxLines; more > 0 {
		lines = append(lines, fmt.Sprintf("+%d more items.", more))
	}
	return strings.Join(lines, "\n")
}

// Composer turns candidate groups into push messages.
type Composer struct {
	Title    string
	MaxLines int
	Hints    domain.DeliveryHints
}

func NewComposer(maxLines int) *Composer {
	return &Composer{Title: Title, MaxLines: maxLines, Hints: domain.DefaultHints}
}

// Compose builds one multicast message per group whose user has tokens.
// Groups without tokens are returned separately so callers can count them.
func (c *Composer) Compose(groups []Group, tokens map[string][]string) (msgs []domain.PushMessage, skipped []string) {
	for _, g := range groups {
		userTokens := dedupe(tokens[g.UserID])
		if len(userTokens) == 0 {
			skipped = append(skipped, g.UserID)
			continue
		}
		msgs = append(msgs, domain.PushMessage{
			UserID: g.UserID,
			Title:  c.Title,
			Body:   ComposeBody(g.Candidates, c.MaxLines),
			Hints:  c.Hints,
			Tokens: userTokens,
		})
	}
	return msgs, skipped
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
