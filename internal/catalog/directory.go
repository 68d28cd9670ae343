// Package catalog holds the latest marketplace category snapshot and the
// keyword index derived from it.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/nattapongc/shopscout/internal/shopee"
	"github.com/nattapongc/shopscout/pkg/models"
)

// ErrNoSnapshot is returned when neither upstream nor the bundled fixture
// could produce a category tree and no earlier snapshot exists.
var ErrNoSnapshot = errors.New("no category snapshot available")

//go:embed fixture/sp_categories_tree.json
var fixtureTree []byte

// Directory is the read-mostly category store. Refresh is the sole writer and
// publishes a complete replacement snapshot atomically; a failed refresh never
// mutates the previously published one.
type Directory struct {
	client shopee.Client

	mu   sync.RWMutex
	snap *snapshot
}

type snapshot struct {
	byID map[string]models.Category
	main []models.Category
	// parent display name -> children display names, the relevance corpus
	// for the pre-filter.
	keywords map[string][]string
}

func NewDirectory(client shopee.Client) *Directory {
	return &Directory{client: client}
}

// Refresh fetches the upstream tree and atomically replaces the snapshot. On
// upstream failure it falls back to the bundled fixture tree; it errors only
// when both fail and no snapshot exists at all.
func (d *Directory) Refresh(ctx context.Context) error {
	nodes, err := d.client.CategoryTree(ctx)
	if err != nil {
		slog.Warn("category refresh failed, falling back to fixture", "error", err)
		nodes, err = fixtureNodes()
		if err != nil {
			if d.Ready() {
				slog.Error("fixture fallback failed, keeping previous snapshot", "error", err)
				return nil
			}
			return fmt.Errorf("%w: %v", ErrNoSnapshot, err)
		}
	}

	snap := buildSnapshot(nodes)

	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()

	slog.Info("category snapshot published",
		"categories", len(snap.byID),
		"main_categories", len(snap.main),
	)
	return nil
}

// Ready reports whether a snapshot has been published.
func (d *Directory) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap != nil
}

// Lookup returns the category with the given id from the current snapshot.
func (d *Directory) Lookup(id string) (models.Category, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.snap == nil {
		return models.Category{}, false
	}
	c, ok := d.snap.byID[id]
	return c, ok
}

// Main returns the top-level categories in feed order.
func (d *Directory) Main() []models.Category {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.snap == nil {
		return nil
	}
	out := make([]models.Category, len(d.snap.main))
	copy(out, d.snap.main)
	return out
}

// Keywords returns the relevance corpus for a category display name: the
// display names of its children. Nil when the category has no children.
func (d *Directory) Keywords(displayName string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.snap == nil {
		return nil
	}
	kw := d.snap.keywords[displayName]
	out := make([]string, len(kw))
	copy(out, kw)
	if len(out) == 0 {
		return nil
	}
	return out
}

func buildSnapshot(nodes []shopee.CategoryNode) *snapshot {
	snap := &snapshot{
		byID:     make(map[string]models.Category),
		keywords: make(map[string][]string),
	}
	flatten(snap, nodes)
	return snap
}

func flatten(snap *snapshot, nodes []shopee.CategoryNode) {
	for _, node := range nodes {
		c := models.Category{
			ID:          strconv.FormatInt(node.Catid, 10),
			DisplayName: node.DisplayName,
			IsMain:      node.ParentCatid == 0,
		}
		if !c.IsMain {
			c.ParentID = strconv.FormatInt(node.ParentCatid, 10)
		}
		snap.byID[c.ID] = c
		if c.IsMain {
			snap.main = append(snap.main, c)
		}

		for _, child := range node.Children {
			snap.keywords[node.DisplayName] = append(snap.keywords[node.DisplayName], child.DisplayName)
		}
		flatten(snap, node.Children)
	}
}

func fixtureNodes() ([]shopee.CategoryNode, error) {
	var resp struct {
		Data struct {
			CategoryList []shopee.CategoryNode `json:"category_list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(fixtureTree, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture tree: %w", err)
	}
	return resp.Data.CategoryList, nil
}
