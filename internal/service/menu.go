// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/metrics"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/store"
)

// Hook names fired by MenuService.
const (
	HookMenuAfterSave       = "menu.after_save"
	HookMenuAfterDelete     = "menu.after_delete"
	HookMenuAfterReorder    = "menu.after_reorder"
	HookMenuItemAfterSave   = "menu_item.after_save"
	HookMenuItemAfterDelete = "menu_item.after_delete"
)

var (
	ErrMenuNotFound    = errors.New("menu not found")
	ErrItemNotFound    = errors.New("menu item not found")
	ErrForeignItem     = errors.New("item does not belong to menu")
	ErrParentNotInMenu = errors.New("parent item is not in this menu")
	ErrParentCycle     = errors.New("parent item is a descendant of the item")
	ErrSlugTaken       = errors.New("menu slug already in use")
	ErrProtectedMenu   = errors.New("menu is protected")
)

// Hooks is the part of module.HookRegistry the service fires into.
type Hooks interface {
	CallNoResult(ctx context.Context, hookName string, data any) error
}

// ReorderEvent is the payload of the menu.after_reorder hook.
type ReorderEvent struct {
	Menu   model.Menu
	Orders map[int64]int
}

// MenuService manages menus and their items and serves built trees.
type MenuService struct {
	store  *store.Store
	trees  *cache.MenuCache
	hooks  Hooks
	logger *slog.Logger
	now    func() time.Time
}

// NewMenuService creates a MenuService. Trees are cached in backend under
// the menu slug for ttl. hooks may be nil.
func NewMenuService(s *store.Store, backend cache.Cacher, ttl time.Duration, hooks Hooks, logger *slog.Logger) *MenuService {
	svc := &MenuService{
		store:  s,
		hooks:  hooks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	svc.trees = cache.NewMenuCache(backend, ttl, svc.loadTree)
	return svc
}

// ListMenus returns every menu ordered by name.
func (s *MenuService) ListMenus(ctx context.Context) ([]model.Menu, error) {
	rows, err := s.store.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing menus: %w", err)
	}
	menus := make([]model.Menu, len(rows))
	for i, r := range rows {
		menus[i] = toMenu(r)
	}
	return menus, nil
}

// GetMenu returns a menu by ID.
func (s *MenuService) GetMenu(ctx context.Context, id int64) (model.Menu, error) {
	m, err := s.store.GetMenuByID(ctx, id)
	if err != nil {
		return model.Menu{}, menuErr(err)
	}
	return toMenu(m), nil
}

// GetMenuBySlug returns a menu by slug.
func (s *MenuService) GetMenuBySlug(ctx context.Context, slug string) (model.Menu, error) {
	m, err := s.store.GetMenuBySlug(ctx, slug)
	if err != nil {
		return model.Menu{}, menuErr(err)
	}
	return toMenu(m), nil
}

// CreateMenu validates in and stores a new menu.
func (s *MenuService) CreateMenu(ctx context.Context, in model.MenuInput) (model.Menu, error) {
	if err := prepareMenu(&in); err != nil {
		return model.Menu{}, err
	}

	exists, err := s.store.MenuSlugExists(ctx, in.Slug)
	if err != nil {
		return model.Menu{}, fmt.Errorf("checking slug: %w", err)
	}
	if exists {
		return model.Menu{}, ErrSlugTaken
	}

	now := s.now()
	row, err := s.store.CreateMenu(ctx, store.CreateMenuParams{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		HtmlClass:   in.HTMLClass,
		HtmlID:      in.HTMLID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Menu{}, fmt.Errorf("creating menu: %w", err)
	}

	menu := toMenu(row)
	s.fire(ctx, HookMenuAfterSave, menu)
	return menu, nil
}

// UpdateMenu replaces the writable fields of a menu. Protected menus keep
// their slug.
func (s *MenuService) UpdateMenu(ctx context.Context, id int64, in model.MenuInput) (model.Menu, error) {
	current, err := s.GetMenu(ctx, id)
	if err != nil {
		return model.Menu{}, err
	}
	if err := prepareMenu(&in); err != nil {
		return model.Menu{}, err
	}
	if current.IsProtected() && in.Slug != current.Slug {
		return model.Menu{}, ErrProtectedMenu
	}

	exists, err := s.store.MenuSlugExistsExcluding(ctx, in.Slug, id)
	if err != nil {
		return model.Menu{}, fmt.Errorf("checking slug: %w", err)
	}
	if exists {
		return model.Menu{}, ErrSlugTaken
	}

	row, err := s.store.UpdateMenu(ctx, store.UpdateMenuParams{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		HtmlClass:   in.HTMLClass,
		HtmlID:      in.HTMLID,
		UpdatedAt:   s.now(),
		ID:          id,
	})
	if err != nil {
		return model.Menu{}, menuErr(err)
	}

	menu := toMenu(row)
	s.invalidate(ctx, current.Slug)
	if menu.Slug != current.Slug {
		s.invalidate(ctx, menu.Slug)
	}
	s.fire(ctx, HookMenuAfterSave, menu)
	return menu, nil
}

// DeleteMenu removes a menu and all of its items.
func (s *MenuService) DeleteMenu(ctx context.Context, id int64) error {
	menu, err := s.GetMenu(ctx, id)
	if err != nil {
		return err
	}
	if menu.IsProtected() {
		return ErrProtectedMenu
	}

	if err := s.store.DeleteMenu(ctx, id); err != nil {
		return menuErr(err)
	}

	s.invalidate(ctx, menu.Slug)
	s.fire(ctx, HookMenuAfterDelete, menu)
	return nil
}

// ListItems returns the items of a menu as stored, ordered by sort order.
func (s *MenuService) ListItems(ctx context.Context, menuID int64) ([]model.MenuItem, error) {
	if _, err := s.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return toMenuItems(rows), nil
}

// GetItem returns an item of the given menu.
func (s *MenuService) GetItem(ctx context.Context, menuID, itemID int64) (model.MenuItem, error) {
	row, err := getItemInMenu(ctx, s.store.Queries, menuID, itemID)
	if err != nil {
		return model.MenuItem{}, err
	}
	return toMenuItem(row), nil
}

// AddItem appends an item to a menu. Without an explicit sort order the
// item goes after its existing siblings.
func (s *MenuService) AddItem(ctx context.Context, menuID int64, in model.MenuItemInput) (model.MenuItem, error) {
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.MenuItem{}, err
	}

	var (
		menu model.Menu
		row  store.MenuItem
	)
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		m, err := q.GetMenuByID(ctx, menuID)
		if err != nil {
			return menuErr(err)
		}
		menu = toMenu(m)

		parent := nullID(in.ParentID)
		if parent.Valid {
			if err := checkParent(ctx, q, menuID, parent.Int64); err != nil {
				return err
			}
		}

		order, err := sortOrderFor(ctx, q, menuID, parent, in.SortOrder)
		if err != nil {
			return err
		}

		now := s.now()
		row, err = q.CreateMenuItem(ctx, store.CreateMenuItemParams{
			MenuID:    menuID,
			ParentID:  parent,
			Name:      in.Name,
			Url:       in.URL,
			HtmlClass: in.HTMLClass,
			HtmlID:    in.HTMLID,
			SortOrder: int64(order),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating item: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.MenuItem{}, err
	}

	item := toMenuItem(row)
	s.invalidate(ctx, menu.Slug)
	s.fire(ctx, HookMenuItemAfterSave, item)
	return item, nil
}

// UpdateItem replaces the writable fields of an item. Naming the item as
// its own parent is ignored and the current parent is kept. A parent that
// sits below the item is rejected with ErrParentCycle. Without an explicit
// sort order the item keeps its position, or goes last when it moves to a
// new parent.
func (s *MenuService) UpdateItem(ctx context.Context, menuID, itemID int64, in model.MenuItemInput) (model.MenuItem, error) {
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.MenuItem{}, err
	}

	var (
		menu model.Menu
		row  store.MenuItem
	)
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		m, err := q.GetMenuByID(ctx, menuID)
		if err != nil {
			return menuErr(err)
		}
		menu = toMenu(m)

		current, err := getItemInMenu(ctx, q, menuID, itemID)
		if err != nil {
			return err
		}

		item := toMenuItem(current)
		item.SetParentID(in.ParentID)
		parent := nullID(item.ParentID)

		if parent.Valid && parent != current.ParentID {
			if err := checkParent(ctx, q, menuID, parent.Int64); err != nil {
				return err
			}
			if err := checkNoCycle(ctx, q, menuID, itemID, parent.Int64); err != nil {
				return err
			}
		}

		order := int(current.SortOrder)
		switch {
		case in.SortOrder != nil:
			order = *in.SortOrder
		case parent != current.ParentID:
			if order, err = sortOrderFor(ctx, q, menuID, parent, nil); err != nil {
				return err
			}
		}

		row, err = q.UpdateMenuItem(ctx, store.UpdateMenuItemParams{
			ParentID:  parent,
			Name:      in.Name,
			Url:       in.URL,
			HtmlClass: in.HTMLClass,
			HtmlID:    in.HTMLID,
			SortOrder: int64(order),
			UpdatedAt: s.now(),
			ID:        itemID,
		})
		if err != nil {
			return itemErr(err)
		}
		return nil
	})
	if err != nil {
		return model.MenuItem{}, err
	}

	item := toMenuItem(row)
	s.invalidate(ctx, menu.Slug)
	s.fire(ctx, HookMenuItemAfterSave, item)
	return item, nil
}

// DeleteItem removes an item together with its subtree.
func (s *MenuService) DeleteItem(ctx context.Context, menuID, itemID int64) error {
	menu, err := s.GetMenu(ctx, menuID)
	if err != nil {
		return err
	}
	row, err := getItemInMenu(ctx, s.store.Queries, menuID, itemID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteMenuItem(ctx, itemID); err != nil {
		return itemErr(err)
	}

	s.invalidate(ctx, menu.Slug)
	s.fire(ctx, HookMenuItemAfterDelete, toMenuItem(row))
	return nil
}

// Reorder applies a flat item ID to sort order map to one menu in a single
// transaction. Every ID must belong to the menu; otherwise nothing is
// written and the error wraps ErrForeignItem.
func (s *MenuService) Reorder(ctx context.Context, menuID int64, orders map[int64]int) (err error) {
	result := "ok"
	defer func() {
		if err != nil {
			result = "error"
			if errors.Is(err, ErrForeignItem) || errors.Is(err, ErrMenuNotFound) {
				result = "rejected"
			}
		}
		metrics.Reorders.WithLabelValues(result).Inc()
	}()

	menu, err := s.GetMenu(ctx, menuID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	ids := slices.Sorted(maps.Keys(orders))
	now := s.now()
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		for _, id := range ids {
			n, err := q.UpdateMenuItemSortOrder(ctx, store.UpdateMenuItemSortOrderParams{
				SortOrder: int64(orders[id]),
				UpdatedAt: now,
				ID:        id,
				MenuID:    menuID,
			})
			if err != nil {
				return fmt.Errorf("updating item %d: %w", id, err)
			}
			if n == 0 {
				return fmt.Errorf("item %d: %w", id, ErrForeignItem)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, menu.Slug)
	s.fire(ctx, HookMenuAfterReorder, ReorderEvent{Menu: menu, Orders: maps.Clone(orders)})
	return nil
}

// Tree returns the built item forest of a menu, served from the cache.
func (s *MenuService) Tree(ctx context.Context, slug string) (*cache.MenuTree, error) {
	return s.trees.Get(ctx, slug)
}

// TreeByID is Tree for a menu ID.
func (s *MenuService) TreeByID(ctx context.Context, id int64) (*cache.MenuTree, error) {
	menu, err := s.GetMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Tree(ctx, menu.Slug)
}

// BuildTree builds a menu's forest from the database, bypassing the cache.
func (s *MenuService) BuildTree(ctx context.Context, slug string) (*cache.MenuTree, error) {
	return s.trees.Load(ctx, slug)
}

// WarmTrees rebuilds the cached tree of every menu.
func (s *MenuService) WarmTrees(ctx context.Context) error {
	menus, err := s.store.ListMenus(ctx)
	if err != nil {
		return fmt.Errorf("listing menus: %w", err)
	}
	slugs := make([]string, len(menus))
	for i, m := range menus {
		slugs[i] = m.Slug
	}
	if err := s.trees.Warm(ctx, slugs...); err != nil {
		return fmt.Errorf("warming menu trees: %w", err)
	}
	return nil
}

// InvalidateTrees drops every cached tree.
func (s *MenuService) InvalidateTrees(ctx context.Context) error {
	return s.trees.InvalidateAll(ctx)
}

// loadTree reads a menu and all of its items in one transaction and
// builds the forest.
func (s *MenuService) loadTree(ctx context.Context, slug string) (*cache.MenuTree, error) {
	var (
		menu store.Menu
		rows []store.MenuItem
	)
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		if menu, err = q.GetMenuBySlug(ctx, slug); err != nil {
			return menuErr(err)
		}
		if rows, err = q.ListMenuItems(ctx, menu.ID); err != nil {
			return fmt.Errorf("listing items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := toMenuItems(rows)
	start := time.Now()
	forest := menutree.Build[int64](items)
	metrics.TreeBuildDuration.Observe(time.Since(start).Seconds())
	metrics.TreeItems.Observe(float64(len(items)))

	return &cache.MenuTree{Menu: toMenu(menu), Items: forest}, nil
}

func (s *MenuService) invalidate(ctx context.Context, slug string) {
	if err := s.trees.Invalidate(ctx, slug); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate menu tree",
			"category", model.EventCategoryCache, "menu", slug, "error", err)
	}
}

// fire runs an after-hook. The write has already happened, so handler
// errors are logged and not returned.
func (s *MenuService) fire(ctx context.Context, name string, data any) {
	if s.hooks == nil {
		return
	}
	if err := s.hooks.CallNoResult(ctx, name, data); err != nil {
		s.logger.WarnContext(ctx, "hook failed",
			"category", model.EventCategoryMenu, "hook", name, "error", err)
	}
}

func prepareMenu(in *model.MenuInput) error {
	in.Normalize()
	if err := model.Validate(*in); err != nil {
		return err
	}
	if in.Slug == "" {
		return model.ValidationErrors{"slug": "is required"}
	}
	return nil
}

func getItemInMenu(ctx context.Context, q *store.Queries, menuID, itemID int64) (store.MenuItem, error) {
	row, err := q.GetMenuItemByID(ctx, itemID)
	if err != nil {
		return store.MenuItem{}, itemErr(err)
	}
	if row.MenuID != menuID {
		return store.MenuItem{}, ErrItemNotFound
	}
	return row, nil
}

func checkParent(ctx context.Context, q *store.Queries, menuID, parentID int64) error {
	p, err := q.GetMenuItemByID(ctx, parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrParentNotInMenu
	}
	if err != nil {
		return fmt.Errorf("loading parent: %w", err)
	}
	if p.MenuID != menuID {
		return ErrParentNotInMenu
	}
	return nil
}

// checkNoCycle walks up from parentID and fails if it reaches itemID.
func checkNoCycle(ctx context.Context, q *store.Queries, menuID, itemID, parentID int64) error {
	rows, err := q.ListMenuItems(ctx, menuID)
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}
	parents := make(map[int64]sql.NullInt64, len(rows))
	for _, r := range rows {
		parents[r.ID] = r.ParentID
	}

	seen := make(map[int64]bool)
	for id := parentID; !seen[id]; {
		if id == itemID {
			return ErrParentCycle
		}
		seen[id] = true
		next, ok := parents[id]
		if !ok || !next.Valid {
			return nil
		}
		id = next.Int64
	}
	return nil
}

func sortOrderFor(ctx context.Context, q *store.Queries, menuID int64, parent sql.NullInt64, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	orders, err := q.ListSiblingSortOrders(ctx, menuID, parent)
	if err != nil {
		return 0, fmt.Errorf("listing sibling orders: %w", err)
	}
	return menutree.NextOrder(orders...), nil
}

func menuErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMenuNotFound
	}
	return err
}

func itemErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	return err
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func toMenu(m store.Menu) model.Menu {
	return model.Menu{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		HTMLClass:   m.HtmlClass,
		HTMLID:      m.HtmlID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMenuItem(i store.MenuItem) model.MenuItem {
	item := model.MenuItem{
		ID:        i.ID,
		MenuID:    i.MenuID,
		Name:      i.Name,
		URL:       i.Url,
		HTMLClass: i.HtmlClass,
		HTMLID:    i.HtmlID,
		SortOrder: int(i.SortOrder),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
	if i.ParentID.Valid {
		p := i.ParentID.Int64
		item.ParentID = &p
	}
	return item
}

func toMenuItems(rows []store.MenuItem) []model.MenuItem {
	items := make([]model.MenuItem, len(rows))
	for i, r := range rows {
		items[i] = toMenuItem(r)
	}
	return items
}
