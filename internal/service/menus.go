// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// MenuService manages menus with their categories and items.
type MenuService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewMenuService creates a MenuService.
func NewMenuService(db *sql.DB, logger *slog.Logger) *MenuService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{queries: store.New(db), logger: logger, now: time.Now}
}

// MenuInput holds the fields of a menu.
type MenuInput struct {
	Name        string
	Description string
	Position    int64
}

// MenuCategoryInput holds the fields of a menu category.
type MenuCategoryInput struct {
	Name     string
	Position int64
}

// MenuItemInput holds the fields of a menu item. A nil CategoryID leaves
// the item uncategorised.
type MenuItemInput struct {
	CategoryID  *int64
	Name        string
	Description string
	PriceCents  int64
	Position    int64
	IsAvailable bool
}

// MenuTree is a menu with its categories and items.
type MenuTree struct {
	Menu       store.Menu           `json:"menu"`
	Categories []store.MenuCategory `json:"categories"`
	Items      []store.MenuItem     `json:"items"`
}

func requireName(name string) error {
	if name == "" {
		return fieldError("name", "is required")
	}
	return nil
}

// CreateMenu creates a menu.
func (s *MenuService) CreateMenu(ctx context.Context, actor Actor, in MenuInput) (store.Menu, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Menu{}, err
	}
	if err := requireName(in.Name); err != nil {
		return store.Menu{}, err
	}
	now := stamp(s.now)
	menu, err := s.queries.CreateMenu(ctx, store.CreateMenuParams{
		OrgID:       actor.OrgID,
		Name:        in.Name,
		Description: in.Description,
		Position:    in.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.Menu{}, fmt.Errorf("creating menu: %w", err)
	}
	return menu, nil
}

// ListMenus returns the actor's menus.
func (s *MenuService) ListMenus(ctx context.Context, actor Actor) ([]store.Menu, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}
	menus, err := s.queries.ListMenus(ctx, actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing menus: %w", err)
	}
	return menus, nil
}

// GetMenuTree loads a menu together with its categories and items.
func (s *MenuService) GetMenuTree(ctx context.Context, actor Actor, menuID int64) (*MenuTree, error) {
	if err := actor.require(model.ActionRead); err != nil {
		return nil, err
	}

	tree := &MenuTree{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		menu, err := s.queries.GetMenu(gctx, menuID, actor.OrgID)
		if err != nil {
			return notFoundOr(err, "menu")
		}
		tree.Menu = menu
		return nil
	})
	g.Go(func() error {
		cats, err := s.queries.ListMenuCategories(gctx, menuID)
		if err != nil {
			return fmt.Errorf("listing menu categories: %w", err)
		}
		tree.Categories = cats
		return nil
	})
	g.Go(func() error {
		items, err := s.queries.ListMenuItems(gctx, menuID)
		if err != nil {
			return fmt.Errorf("listing menu items: %w", err)
		}
		tree.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tree, nil
}

// UpdateMenu replaces a menu's fields.
func (s *MenuService) UpdateMenu(ctx context.Context, actor Actor, menuID int64, in MenuInput) (store.Menu, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.Menu{}, err
	}
	if err := requireName(in.Name); err != nil {
		return store.Menu{}, err
	}
	menu, err := s.queries.UpdateMenu(ctx, store.UpdateMenuParams{
		Name:        in.Name,
		Description: in.Description,
		Position:    in.Position,
		UpdatedAt:   stamp(s.now),
		ID:          menuID,
		OrgID:       actor.OrgID,
	})
	if err != nil {
		return store.Menu{}, notFoundOr(err, "menu")
	}
	return menu, nil
}

// DeleteMenu removes a menu with its categories and items.
func (s *MenuService) DeleteMenu(ctx context.Context, actor Actor, menuID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	n, err := s.queries.DeleteMenu(ctx, menuID, actor.OrgID)
	return deleted(n, err, "menu")
}

// CreateCategory adds a category to a menu.
func (s *MenuService) CreateCategory(ctx context.Context, actor Actor, menuID int64, in MenuCategoryInput) (store.MenuCategory, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.MenuCategory{}, err
	}
	if err := requireName(in.Name); err != nil {
		return store.MenuCategory{}, err
	}
	if _, err := s.queries.GetMenu(ctx, menuID, actor.OrgID); err != nil {
		return store.MenuCategory{}, notFoundOr(err, "menu")
	}
	cat, err := s.queries.CreateMenuCategory(ctx, store.CreateMenuCategoryParams{
		MenuID:   menuID,
		OrgID:    actor.OrgID,
		Name:     in.Name,
		Position: in.Position,
	})
	if err != nil {
		return store.MenuCategory{}, fmt.Errorf("creating menu category: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes a category. Its items stay on the menu without a
// category.
func (s *MenuService) DeleteCategory(ctx context.Context, actor Actor, categoryID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	n, err := s.queries.DeleteMenuCategory(ctx, categoryID, actor.OrgID)
	return deleted(n, err, "menu category")
}

// checkCategory verifies that categoryID, when set, belongs to menuID.
func (s *MenuService) checkCategory(ctx context.Context, actor Actor, menuID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	cat, err := s.queries.GetMenuCategory(ctx, *categoryID, actor.OrgID)
	if err != nil || cat.MenuID != menuID {
		return fieldError("category_id", "does not belong to the menu")
	}
	return nil
}

func (in MenuItemInput) validate() error {
	v := validation{}
	if in.Name == "" {
		v.add("name", "is required")
	}
	if in.PriceCents < 0 {
		v.add("price_cents", "must not be negative")
	}
	return v.err()
}

// CreateItem adds an item to a menu.
func (s *MenuService) CreateItem(ctx context.Context, actor Actor, menuID int64, in MenuItemInput) (store.MenuItem, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.MenuItem{}, err
	}
	if err := in.validate(); err != nil {
		return store.MenuItem{}, err
	}
	if _, err := s.queries.GetMenu(ctx, menuID, actor.OrgID); err != nil {
		return store.MenuItem{}, notFoundOr(err, "menu")
	}
	if err := s.checkCategory(ctx, actor, menuID, in.CategoryID); err != nil {
		return store.MenuItem{}, err
	}
	item, err := s.queries.CreateMenuItem(ctx, store.CreateMenuItemParams{
		MenuID:      menuID,
		CategoryID:  util.NullInt64FromPtr(in.CategoryID),
		OrgID:       actor.OrgID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Position:    in.Position,
		IsAvailable: in.IsAvailable,
	})
	if err != nil {
		return store.MenuItem{}, fmt.Errorf("creating menu item: %w", err)
	}
	return item, nil
}

// UpdateItem replaces a menu item's fields.
func (s *MenuService) UpdateItem(ctx context.Context, actor Actor, itemID int64, in MenuItemInput) (store.MenuItem, error) {
	if err := actor.require(model.ActionWrite); err != nil {
		return store.MenuItem{}, err
	}
	if err := in.validate(); err != nil {
		return store.MenuItem{}, err
	}
	existing, err := s.queries.GetMenuItem(ctx, itemID, actor.OrgID)
	if err != nil {
		return store.MenuItem{}, notFoundOr(err, "menu item")
	}
	if err := s.checkCategory(ctx, actor, existing.MenuID, in.CategoryID); err != nil {
		return store.MenuItem{}, err
	}
	item, err := s.queries.UpdateMenuItem(ctx, store.UpdateMenuItemParams{
		CategoryID:  util.NullInt64FromPtr(in.CategoryID),
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Position:    in.Position,
		IsAvailable: in.IsAvailable,
		ID:          itemID,
		OrgID:       actor.OrgID,
	})
	if err != nil {
		return store.MenuItem{}, notFoundOr(err, "menu item")
	}
	return item, nil
}

// DeleteItem removes a menu item.
func (s *MenuService) DeleteItem(ctx context.Context, actor Actor, itemID int64) error {
	if err := actor.require(model.ActionWrite); err != nil {
		return err
	}
	n, err := s.queries.DeleteMenuItem(ctx, itemID, actor.OrgID)
	return deleted(n, err, "menu item")
}
