// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/agencyhub/internal/middleware"
	"github.com/olegiv/agencyhub/internal/model"
)

// Route parameters.
const (
	paramPage       = "pageID"
	paramSection    = "sectionID"
	paramEvent      = "eventID"
	paramBand       = "bandID"
	paramMenu       = "menuID"
	paramItem       = "itemID"
	paramCategory   = "categoryID"
	paramWebhook    = "webhookID"
	paramAPIKey     = "keyID"
	paramOrgSlug    = "orgSlug"
	paramSlug       = "slug"
	paramToken      = "token"
	businessPattern = "/businesses/{" + middleware.OrgIDParam + "}"
)

// Routes mounts the API under /api. Sessions must already be loaded by
// the caller (scs LoadAndSave).
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Public renders
		r.Group(func(r chi.Router) {
			r.Use(h.rateLimiter())
			r.Get("/public/{"+paramOrgSlug+"}/pages/{"+paramSlug+"}", h.PublicPage)
			r.Get("/preview/{"+paramToken+"}", h.Preview)
			r.Get("/preview/{"+paramToken+"}/validate", h.ValidatePreview)
		})

		r.With(h.loginProtection.Middleware()).Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.sessions, h.auth))
			r.Use(h.rateLimiter())

			r.Get("/auth/me", h.Me)

			r.Route(businessPattern, func(r chi.Router) {
				r.Use(middleware.RequireOrg(h.auth))
				h.businessRoutes(r)
			})
		})
	})
}

func (h *Handler) businessRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAction(model.ActionRead))

		r.Get("/dashboard", h.Dashboard)

		r.Get("/pages", h.ListPages)
		r.Get("/pages/{"+paramPage+"}", h.GetPage)
		r.Get("/pages/{"+paramPage+"}/render", h.RenderPage)
		r.Get("/pages/{"+paramPage+"}/sections", h.ListSections)
		r.Get("/sections/{"+paramSection+"}", h.GetSection)

		r.Get("/events", h.ListEvents)
		r.Get("/events/{"+paramEvent+"}", h.GetEvent)
		r.Get("/events/{"+paramEvent+"}/instances", h.ListInstances)

		r.Get("/bands", h.ListBands)
		r.Get("/bands/{"+paramBand+"}", h.GetBand)

		r.Get("/menus", h.ListMenus)
		r.Get("/menus/{"+paramMenu+"}", h.GetMenu)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAction(model.ActionWrite))

		r.Post("/pages", h.CreatePage)
		r.Put("/pages/{"+paramPage+"}", h.UpdatePage)
		r.Delete("/pages/{"+paramPage+"}", h.DeletePage)
		r.Post("/pages/{"+paramPage+"}/sections", h.CreateSection)

		r.Put("/sections/{"+paramSection+"}/draft", h.UpdateSectionDraft)
		r.Post("/sections/{"+paramSection+"}/discard", h.DiscardSection)
		r.Patch("/sections/{"+paramSection+"}", h.UpdateSection)
		r.Delete("/sections/{"+paramSection+"}", h.DeleteSection)

		r.Post("/preview-tokens", h.CreatePreviewToken)

		r.Post("/events", h.CreateEvent)
		r.Put("/events/{"+paramEvent+"}", h.UpdateEvent)
		r.Delete("/events/{"+paramEvent+"}", h.DeleteEvent)
		r.Post("/events/{"+paramEvent+"}/instances", h.GenerateInstances)

		r.Post("/bands", h.CreateBand)
		r.Put("/bands/{"+paramBand+"}", h.UpdateBand)
		r.Delete("/bands/{"+paramBand+"}", h.DeleteBand)

		r.Post("/menus", h.CreateMenu)
		r.Put("/menus/{"+paramMenu+"}", h.UpdateMenu)
		r.Delete("/menus/{"+paramMenu+"}", h.DeleteMenu)
		r.Post("/menus/{"+paramMenu+"}/categories", h.CreateMenuCategory)
		r.Post("/menus/{"+paramMenu+"}/items", h.CreateMenuItem)
		r.Put("/menu-items/{"+paramItem+"}", h.UpdateMenuItem)
		r.Delete("/menu-items/{"+paramItem+"}", h.DeleteMenuItem)
		r.Delete("/menu-categories/{"+paramCategory+"}", h.DeleteMenuCategory)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAction(model.ActionPublish))

		r.Post("/pages/{"+paramPage+"}/publish", h.PublishPage)
		r.Post("/sections/{"+paramSection+"}/publish", h.PublishSection)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAction(model.ActionAdmin))

		r.Get("/webhooks", h.ListWebhooks)
		r.Post("/webhooks", h.CreateWebhook)
		r.Delete("/webhooks/{"+paramWebhook+"}", h.DeleteWebhook)
		r.Get("/webhooks/{"+paramWebhook+"}/deliveries", h.ListDeliveries)

		r.Get("/api-keys", h.ListAPIKeys)
		r.Post("/api-keys", h.CreateAPIKey)
		r.Delete("/api-keys/{"+paramAPIKey+"}", h.DeleteAPIKey)

		r.Get("/activity", h.ListActivity)
	})
}

// rateLimiter returns a per-caller limiter, or a pass-through when rate
// limiting is disabled. Each call creates an independent limiter.
func (h *Handler) rateLimiter() func(http.Handler) http.Handler {
	if h.rateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	burst := h.rateBurst
	if burst <= 0 {
		burst = 1
	}
	return middleware.APIRateLimit(h.rateLimit, burst)
}
