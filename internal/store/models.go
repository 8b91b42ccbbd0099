// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	LastLoginAt  sql.NullTime `json:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Business struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Membership struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	UserID     int64     `json:"user_id"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

type ApiKey struct {
	ID         int64         `json:"id"`
	BusinessID int64         `json:"business_id"`
	Name       string        `json:"name"`
	KeyHash    string        `json:"-"`
	KeyPrefix  string        `json:"key_prefix"`
	IsActive   bool          `json:"is_active"`
	ExpiresAt  sql.NullTime  `json:"expires_at"`
	LastUsedAt sql.NullTime  `json:"last_used_at"`
	CreatedBy  sql.NullInt64 `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Page struct {
	ID          int64        `json:"id"`
	OrgID       int64        `json:"org_id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Template    string       `json:"template"`
	Status      string       `json:"status"`
	PublishedAt sql.NullTime `json:"published_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PageSection is a row of page_sections_v2. DraftContent and
// PublishedContent hold raw JSON; PublishedContent is NULL until the
// first publish.
type PageSection struct {
	ID               int64          `json:"id"`
	PageID           int64          `json:"page_id"`
	OrgID            int64          `json:"org_id"`
	Key              string         `json:"key"`
	Label            string         `json:"label"`
	Component        string         `json:"component"`
	Position         int64          `json:"position"`
	DraftContent     string         `json:"draft_content"`
	PublishedContent sql.NullString `json:"published_content"`
	Status           string         `json:"status"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type PreviewToken struct {
	ID        string        `json:"id"`
	OrgID     int64         `json:"org_id"`
	PageID    int64         `json:"page_id"`
	SectionID sql.NullInt64 `json:"section_id"`
	UserID    sql.NullInt64 `json:"user_id"`
	ExpiresAt time.Time     `json:"expires_at"`
	CreatedAt time.Time     `json:"created_at"`
}

type Event struct {
	ID          int64          `json:"id"`
	OrgID       int64          `json:"org_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DayOfWeek   sql.NullInt64  `json:"day_of_week"`
	StartsOn    sql.NullString `json:"starts_on"`
	EndsOn      sql.NullString `json:"ends_on"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type EventInstance struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"event_id"`
	InstanceDate string    `json:"instance_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Band struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Menu struct {
	ID          int64     `json:"id"`
	OrgID       int64     `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int64     `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MenuCategory struct {
	ID       int64  `json:"id"`
	MenuID   int64  `json:"menu_id"`
	OrgID    int64  `json:"org_id"`
	Name     string `json:"name"`
	Position int64  `json:"position"`
}

type MenuItem struct {
	ID          int64         `json:"id"`
	MenuID      int64         `json:"menu_id"`
	CategoryID  sql.NullInt64 `json:"category_id"`
	OrgID       int64         `json:"org_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"price_cents"`
	Position    int64         `json:"position"`
	IsAvailable bool          `json:"is_available"`
}

type ActivityLog struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	OrgID     sql.NullInt64 `json:"org_id"`
	Metadata  string        `json:"metadata"`
	IpAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
}

type Webhook struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	Url       string    `json:"url"`
	Secret    string    `json:"-"`
	Events    string    `json:"events"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WebhookDelivery struct {
	ID           int64         `json:"id"`
	WebhookID    int64         `json:"webhook_id"`
	Event        string        `json:"event"`
	Payload      string        `json:"payload"`
	Status       string        `json:"status"`
	Attempts     int64         `json:"attempts"`
	ResponseCode sql.NullInt64 `json:"response_code"`
	ResponseBody string        `json:"response_body"`
	LastError    string        `json:"last_error"`
	NextRetryAt  sql.NullTime  `json:"next_retry_at"`
	DeliveredAt  sql.NullTime  `json:"delivered_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
