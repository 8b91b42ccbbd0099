// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// BandRequest is the body for creating or replacing a band.
type BandRequest struct {
	Name    string `json:"name"`
	Genre   string `json:"genre"`
	Website string `json:"website"`
}

// MenuRequest is the body for creating or replacing a menu.
type MenuRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int64  `json:"position"`
}

// MenuCategoryRequest is the body of POST /menus/{id}/categories.
type MenuCategoryRequest struct {
	Name     string `json:"name"`
	Position int64  `json:"position"`
}

// MenuItemRequest is the body for creating or replacing a menu item. A
// missing IsAvailable defaults to true.
type MenuItemRequest struct {
	CategoryID  *int64 `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Position    int64  `json:"position"`
	IsAvailable *bool  `json:"is_available"`
}

// MenuItemResponse represents a menu item in API responses.
type MenuItemResponse struct {
	ID          int64  `json:"id"`
	MenuID      int64  `json:"menu_id"`
	CategoryID  *int64 `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Position    int64  `json:"position"`
	IsAvailable bool   `json:"is_available"`
}

// MenuTreeResponse is a menu with its categories and items.
type MenuTreeResponse struct {
	Menu       store.Menu           `json:"menu"`
	Categories []store.MenuCategory `json:"categories"`
	Items      []MenuItemResponse   `json:"items"`
}

func menuItemToResponse(i store.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          i.ID,
		MenuID:      i.MenuID,
		CategoryID:  util.PtrFromNullInt64(i.CategoryID),
		Name:        i.Name,
		Description: i.Description,
		PriceCents:  i.PriceCents,
		Position:    i.Position,
		IsAvailable: i.IsAvailable,
	}
}

func (req MenuItemRequest) input() service.MenuItemInput {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return service.MenuItemInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Position:    req.Position,
		IsAvailable: available,
	}
}

// ListBands handles GET /bands.
func (h *Handler) ListBands(w http.ResponseWriter, r *http.Request) {
	bands, err := h.bands.ListBands(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, bands, nil)
}

// GetBand handles GET /bands/{bandID}.
func (h *Handler) GetBand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramBand)
	if !ok {
		return
	}
	band, err := h.bands.GetBand(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, band, nil)
}

// CreateBand handles POST /bands.
func (h *Handler) CreateBand(w http.ResponseWriter, r *http.Request) {
	var req BandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	band, err := h.bands.CreateBand(r.Context(), actor(r), service.BandInput(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, band)
}

// UpdateBand handles PUT /bands/{bandID}.
func (h *Handler) UpdateBand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramBand)
	if !ok {
		return
	}
	var req BandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	band, err := h.bands.UpdateBand(r.Context(), actor(r), id, service.BandInput(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, band, nil)
}

// DeleteBand handles DELETE /bands/{bandID}.
func (h *Handler) DeleteBand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramBand)
	if !ok {
		return
	}
	if err := h.bands.DeleteBand(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// ListMenus handles GET /menus.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.menus.ListMenus(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, menus, nil)
}

// GetMenu handles GET /menus/{menuID}: the menu with categories and items.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramMenu)
	if !ok {
		return
	}
	tree, err := h.menus.GetMenuTree(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MenuTreeResponse{
		Menu:       tree.Menu,
		Categories: tree.Categories,
		Items:      mapSlice(tree.Items, menuItemToResponse),
	}, nil)
}

// CreateMenu handles POST /menus.
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	menu, err := h.menus.CreateMenu(r.Context(), actor(r), service.MenuInput(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, menu)
}

// UpdateMenu handles PUT /menus/{menuID}.
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramMenu)
	if !ok {
		return
	}
	var req MenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	menu, err := h.menus.UpdateMenu(r.Context(), actor(r), id, service.MenuInput(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, menu, nil)
}

// DeleteMenu handles DELETE /menus/{menuID}.
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramMenu)
	if !ok {
		return
	}
	if err := h.menus.DeleteMenu(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// CreateMenuCategory handles POST /menus/{menuID}/categories.
func (h *Handler) CreateMenuCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramMenu)
	if !ok {
		return
	}
	var req MenuCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.menus.CreateCategory(r.Context(), actor(r), id, service.MenuCategoryInput(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, cat)
}

// DeleteMenuCategory handles DELETE /menu-categories/{categoryID}.
func (h *Handler) DeleteMenuCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramCategory)
	if !ok {
		return
	}
	if err := h.menus.DeleteCategory(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// CreateMenuItem handles POST /menus/{menuID}/items.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramMenu)
	if !ok {
		return
	}
	var req MenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.menus.CreateItem(r.Context(), actor(r), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, menuItemToResponse(item))
}

// UpdateMenuItem handles PUT /menu-items/{itemID}.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramItem)
	if !ok {
		return
	}
	var req MenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.menus.UpdateItem(r.Context(), actor(r), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, menuItemToResponse(item), nil)
}

// DeleteMenuItem handles DELETE /menu-items/{itemID}.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, paramItem)
	if !ok {
		return
	}
	if err := h.menus.DeleteItem(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}
