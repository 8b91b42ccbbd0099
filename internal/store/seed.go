// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/olegiv/agencyhub/internal/auth"
)

//go:embed seed/demo.yaml
var demoFixture []byte

// SeedFixture is the YAML layout of the demo data set.
type SeedFixture struct {
	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"admin"`
	Businesses []SeedBusiness `yaml:"businesses"`
}

type SeedBusiness struct {
	Name   string      `yaml:"name"`
	Slug   string      `yaml:"slug"`
	Pages  []SeedPage  `yaml:"pages"`
	Bands  []SeedBand  `yaml:"bands"`
	Events []SeedEvent `yaml:"events"`
	Menus  []SeedMenu  `yaml:"menus"`
}

type SeedPage struct {
	Name     string        `yaml:"name"`
	Slug     string        `yaml:"slug"`
	Template string        `yaml:"template"`
	Sections []SeedSection `yaml:"sections"`
}

type SeedSection struct {
	Key       string         `yaml:"key"`
	Label     string         `yaml:"label"`
	Component string         `yaml:"component"`
	Content   map[string]any `yaml:"content"`
}

type SeedBand struct {
	Name    string `yaml:"name"`
	Genre   string `yaml:"genre"`
	Website string `yaml:"website"`
}

type SeedEvent struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	DayOfWeek   *int64 `yaml:"day_of_week"`
	StartsOn    string `yaml:"starts_on"`
	EndsOn      string `yaml:"ends_on"`
}

type SeedMenu struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Categories  []SeedMenuCategory `yaml:"categories"`
}

type SeedMenuCategory struct {
	Name  string         `yaml:"name"`
	Items []SeedMenuItem `yaml:"items"`
}

type SeedMenuItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PriceCents  int64  `yaml:"price_cents"`
}

// LoadDemoFixture parses the embedded demo fixture.
func LoadDemoFixture() (*SeedFixture, error) {
	var f SeedFixture
	if err := yaml.Unmarshal(demoFixture, &f); err != nil {
		return nil, fmt.Errorf("parsing demo fixture: %w", err)
	}
	return &f, nil
}

// Seed creates the admin user and the demo businesses on an empty database.
// It is a no-op when the admin user already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	fixture, err := LoadDemoFixture()
	if err != nil {
		return err
	}

	queries := New(db)
	_, err = queries.GetUserByEmail(ctx, fixture.Admin.Email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(fixture.Admin.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := queries.WithTx(tx)

	now := time.Now().UTC().Truncate(time.Second)
	admin, err := qtx.CreateUser(ctx, CreateUserParams{
		Email:        fixture.Admin.Email,
		PasswordHash: passwordHash,
		Name:         fixture.Admin.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	for _, b := range fixture.Businesses {
		if err := seedBusiness(ctx, qtx, admin.ID, b, now); err != nil {
			return fmt.Errorf("seeding business %q: %w", b.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("created default admin user",
		"id", admin.ID,
		"email", admin.Email,
		"password", fixture.Admin.Password,
	)
	return nil
}

func seedBusiness(ctx context.Context, q *Queries, ownerID int64, b SeedBusiness, now time.Time) error {
	biz, err := q.CreateBusiness(ctx, CreateBusinessParams{Name: b.Name, Slug: b.Slug, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return err
	}
	if _, err := q.CreateMembership(ctx, CreateMembershipParams{
		BusinessID: biz.ID,
		UserID:     ownerID,
		Role:       "owner",
		CreatedAt:  now,
	}); err != nil {
		return err
	}

	for _, p := range b.Pages {
		template := p.Template
		if template == "" {
			template = "default"
		}
		page, err := q.CreatePage(ctx, CreatePageParams{
			OrgID:     biz.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Template:  template,
			Status:    "draft",
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("page %q: %w", p.Slug, err)
		}
		for pos, s := range p.Sections {
			content, err := json.Marshal(s.Content)
			if err != nil {
				return fmt.Errorf("section %q: %w", s.Key, err)
			}
			sec, err := q.CreateSection(ctx, CreateSectionParams{
				PageID:       page.ID,
				OrgID:        biz.ID,
				Key:          s.Key,
				Label:        s.Label,
				Component:    s.Component,
				Position:     int64(pos),
				DraftContent: string(content),
				Status:       "dirty",
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("section %q: %w", s.Key, err)
			}
			if _, err := q.PublishSection(ctx, sec.ID, now); err != nil {
				return fmt.Errorf("publishing section %q: %w", s.Key, err)
			}
		}
		if err := q.MarkPagePublished(ctx, MarkPagePublishedParams{
			PublishedAt: now,
			UpdatedAt:   now,
			ID:          page.ID,
		}); err != nil {
			return fmt.Errorf("publishing page %q: %w", p.Slug, err)
		}
	}

	for _, band := range b.Bands {
		if _, err := q.CreateBand(ctx, CreateBandParams{
			OrgID:     biz.ID,
			Name:      band.Name,
			Genre:     band.Genre,
			Website:   band.Website,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("band %q: %w", band.Name, err)
		}
	}

	for _, e := range b.Events {
		params := CreateEventParams{
			OrgID:       biz.ID,
			Title:       e.Title,
			Description: e.Description,
			StartsOn:    sql.NullString{String: e.StartsOn, Valid: e.StartsOn != ""},
			EndsOn:      sql.NullString{String: e.EndsOn, Valid: e.EndsOn != ""},
			Status:      "published",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if e.DayOfWeek != nil {
			params.DayOfWeek = sql.NullInt64{Int64: *e.DayOfWeek, Valid: true}
		}
		if _, err := q.CreateEvent(ctx, params); err != nil {
			return fmt.Errorf("event %q: %w", e.Title, err)
		}
	}

	for mpos, m := range b.Menus {
		menu, err := q.CreateMenu(ctx, CreateMenuParams{
			OrgID:       biz.ID,
			Name:        m.Name,
			Description: m.Description,
			Position:    int64(mpos),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("menu %q: %w", m.Name, err)
		}
		for cpos, c := range m.Categories {
			cat, err := q.CreateMenuCategory(ctx, CreateMenuCategoryParams{
				MenuID:   menu.ID,
				OrgID:    biz.ID,
				Name:     c.Name,
				Position: int64(cpos),
			})
			if err != nil {
				return fmt.Errorf("category %q: %w", c.Name, err)
			}
			for ipos, it := range c.Items {
				if _, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
					MenuID:      menu.ID,
					CategoryID:  sql.NullInt64{Int64: cat.ID, Valid: true},
					OrgID:       biz.ID,
					Name:        it.Name,
					Description: it.Description,
					PriceCents:  it.PriceCents,
					Position:    int64(ipos),
					IsAvailable: true,
				}); err != nil {
					return fmt.Errorf("menu item %q: %w", it.Name, err)
				}
			}
		}
	}

	return nil
}
