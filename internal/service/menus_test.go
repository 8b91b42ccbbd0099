// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/testutil"
)

func TestMenuTree(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	menu, err := svc.CreateMenu(ctx, env.editor, MenuInput{Name: "Dinner"})
	require.NoError(t, err)
	starters, err := svc.CreateCategory(ctx, env.editor, menu.ID, MenuCategoryInput{Name: "Starters"})
	require.NoError(t, err)
	mains, err := svc.CreateCategory(ctx, env.editor, menu.ID, MenuCategoryInput{Name: "Mains", Position: 1})
	require.NoError(t, err)

	soup, err := svc.CreateItem(ctx, env.editor, menu.ID, MenuItemInput{CategoryID: &starters.ID, Name: "Soup", PriceCents: 650, IsAvailable: true})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, env.editor, menu.ID, MenuItemInput{CategoryID: &mains.ID, Name: "Pie", PriceCents: 1450, Position: 1, IsAvailable: true})
	require.NoError(t, err)

	tree, err := svc.GetMenuTree(ctx, env.viewer, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", tree.Menu.Name)
	assert.Len(t, tree.Categories, 2)
	assert.Len(t, tree.Items, 2)

	_, err = svc.GetMenuTree(ctx, UserActor(env.other.ID, 0, model.RoleOwner), menu.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.UpdateItem(ctx, env.editor, soup.ID, MenuItemInput{Name: "Soup of the day", PriceCents: 700})
	require.NoError(t, err)
	assert.False(t, updated.CategoryID.Valid)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, int64(700), updated.PriceCents)

	require.NoError(t, svc.DeleteCategory(ctx, env.editor, mains.ID))
	tree, err = svc.GetMenuTree(ctx, env.viewer, menu.ID)
	require.NoError(t, err)
	assert.Len(t, tree.Categories, 1)
	require.Len(t, tree.Items, 2, "items survive their category")
	for _, item := range tree.Items {
		assert.False(t, item.CategoryID.Valid)
	}
}

func TestMenuItemValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	dinner, err := svc.CreateMenu(ctx, env.editor, MenuInput{Name: "Dinner"})
	require.NoError(t, err)
	drinks, err := svc.CreateMenu(ctx, env.editor, MenuInput{Name: "Drinks"})
	require.NoError(t, err)
	beers, err := svc.CreateCategory(ctx, env.editor, drinks.ID, MenuCategoryInput{Name: "Beers"})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, env.editor, dinner.ID, MenuItemInput{Name: "Stout", CategoryID: &beers.ID})
	assert.ErrorIs(t, err, ErrValidation, "category of another menu")
	_, err = svc.CreateItem(ctx, env.editor, dinner.ID, MenuItemInput{Name: "Soup", PriceCents: -1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateMenu(ctx, env.editor, MenuInput{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateItem(ctx, env.viewer, dinner.ID, MenuItemInput{Name: "Soup"})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteMenu(ctx, env.editor, drinks.ID))
	menus, err := svc.ListMenus(ctx, env.viewer)
	require.NoError(t, err)
	assert.Len(t, menus, 1)
}

func TestBandCRUD(t *testing.T) {
	env := newTestEnv(t)
	svc := NewBandService(env.db, testutil.TestLoggerSilent())
	ctx := context.Background()

	band, err := svc.CreateBand(ctx, env.editor, BandInput{Name: "The Night Owls", Genre: "jazz", Website: "https://owls.example.com"})
	require.NoError(t, err)

	_, err = svc.CreateBand(ctx, env.editor, BandInput{Name: "Bad", Website: "ftp://example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateBand(ctx, env.editor, band.ID, BandInput{Name: "Night Owls", Genre: "swing"})
	require.NoError(t, err)
	assert.Equal(t, "swing", updated.Genre)

	got, err := svc.GetBand(ctx, env.viewer, band.ID)
	require.NoError(t, err)
	assert.Equal(t, "Night Owls", got.Name)

	_, err = svc.UpdateBand(ctx, UserActor(env.other.ID, 0, model.RoleOwner), band.ID, BandInput{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteBand(ctx, env.editor, band.ID))
	bands, err := svc.ListBands(ctx, env.viewer)
	require.NoError(t, err)
	assert.Empty(t, bands)
}
