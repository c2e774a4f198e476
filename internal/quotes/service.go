package quotes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phisoli/parasekreterim/internal/cache"
	"github.com/phisoli/parasekreterim/internal/log"
)

// PageSize is the number of quotes per page.
const PageSize = 10

const snapshotKey = "quotes:snapshot"

// Query selects and pages the quote list.
type Query struct {
	Filter AssetKind // empty means everything
	Search string
	Page   int
}

// Page is one page of the filtered quote list.
type Page struct {
	Quotes     []Quote   `json:"quotes"`
	Filter     AssetKind `json:"filter,omitempty"`
	Search     string    `json:"search,omitempty"`
	PageNumber int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int       `json:"total"`
}

type Service struct {
	providers []Provider
	cache     *cache.LRUCache[[]Quote]
	logger    *log.Logger
}

func NewService(providers []Provider, c *cache.LRUCache[[]Quote], logger *log.Logger) *Service {
	return &Service{
		providers: providers,
		cache:     c,
		logger:    logger.WithComponent(log.ComponentQuotes),
	}
}

// Snapshot returns the merged quote list, served from cache within its
// TTL. Providers run in order and earlier results win on code clashes;
// whatever none of them resolved comes from the static defaults, so the
// snapshot always covers the full catalog.
func (s *Service) Snapshot(ctx context.Context) []Quote {
	if s.cache != nil {
		if cached, ok := s.cache.Get(snapshotKey); ok {
			return cached
		}
	}
	return s.Refresh(ctx)
}

// Refresh bypasses the cache, fetches from every provider and stores the
// merged result. It never fails: on total provider outage the defaults
// are served.
func (s *Service) Refresh(ctx context.Context) []Quote {
	seen := make(map[string]bool, len(Catalog))
	var merged []Quote

	for _, p := range s.providers {
		fetched, err := p.Fetch(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Quote provider failed",
				log.FieldOperation, log.OpFetch,
				"provider", p.Name(),
				"error", err)
			continue
		}

		added := 0
		for _, q := range fetched {
			if seen[q.Code] {
				continue
			}
			seen[q.Code] = true
			merged = append(merged, q)
			added++
		}

		s.logger.InfoContext(ctx, "Quotes fetched",
			log.FieldOperation, log.OpFetch,
			"provider", p.Name(),
			"quotes", added)
	}

	for _, q := range Defaults {
		if seen[q.Code] {
			continue
		}
		seen[q.Code] = true
		merged = append(merged, fromAsset(q.Code, q.Value, q.ChangePct))
	}

	if s.cache != nil {
		s.cache.Set(snapshotKey, merged)
	}
	return merged
}

// List filters, searches, sorts and pages the current snapshot.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	if q.Filter != "" && q.Filter != KindFiat && q.Filter != KindGold && q.Filter != KindCrypto {
		return Page{}, fmt.Errorf("unknown filter %q", q.Filter)
	}

	all := s.Snapshot(ctx)

	var selected []Quote
	switch q.Filter {
	case KindFiat:
		// Currencies first, physical gold trailing, each sorted by value.
		selected = append(sortedByValue(pick(all, KindFiat)), sortedByValue(pick(all, KindGold))...)
	case KindGold:
		selected = sortedByValue(pick(all, KindGold))
	case KindCrypto:
		selected = sortedByValue(pick(all, KindCrypto))
	default:
		selected = append(sortedByValue(pick(all, KindFiat)), sortedByValue(pick(all, KindCrypto))...)
		selected = append(selected, sortedByValue(pick(all, KindGold))...)
	}

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		var matched []Quote
		for _, quote := range selected {
			if strings.Contains(strings.ToLower(quote.Name), term) ||
				strings.Contains(strings.ToLower(quote.Code), term) {
				matched = append(matched, quote)
			}
		}
		selected = matched
	}

	total := len(selected)
	totalPages := (total + PageSize - 1) / PageSize

	page := q.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Quotes:     selected[start:end],
		Filter:     q.Filter,
		Search:     q.Search,
		PageNumber: page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

func pick(all []Quote, kind AssetKind) []Quote {
	var out []Quote
	for _, q := range all {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out
}

func sortedByValue(qs []Quote) []Quote {
	sort.SliceStable(qs, func(i, j int) bool {
		return qs[i].Value.GreaterThan(qs[j].Value)
	})
	return qs
}
