// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/imaging"
	"github.com/olegiv/diocese-go/internal/model"
)

// SettingsForm is the posted site settings editor.
type SettingsForm struct {
	SiteTitle       string `schema:"site_title" validate:"required,max=200"`
	SiteDescription string `schema:"site_description" validate:"max=500"`
	AboutDiocese    string `schema:"about_diocese" validate:"max=20000"`
	ContactAddress  string `schema:"contact_address" validate:"max=300"`
	ContactPhone    string `schema:"contact_phone" validate:"max=50"`
	ContactEmail    string `schema:"contact_email" validate:"omitempty,email"`
	SocialFacebook  string `schema:"social_facebook" validate:"omitempty,http_url"`
	SocialInstagram string `schema:"social_instagram" validate:"omitempty,http_url"`
	SocialYouTube   string `schema:"social_youtube" validate:"omitempty,http_url"`
	SocialTwitter   string `schema:"social_twitter" validate:"omitempty,http_url"`
	RemoveLogo      bool   `schema:"remove_logo"`
}

// DecodeSettingsForm reads a SettingsForm from posted values.
func DecodeSettingsForm(form url.Values) (SettingsForm, error) {
	var f SettingsForm
	err := decodeForm(&f, form)
	for _, s := range []*string{
		&f.SiteTitle, &f.SiteDescription, &f.ContactAddress, &f.ContactPhone,
		&f.ContactEmail, &f.SocialFacebook, &f.SocialInstagram, &f.SocialYouTube, &f.SocialTwitter,
	} {
		*s = strings.TrimSpace(*s)
	}
	return f, err
}

// SettingsFormFrom fills the editor with the current settings.
func SettingsFormFrom(s model.SiteSettings) SettingsForm {
	return SettingsForm{
		SiteTitle:       s.SiteTitle,
		SiteDescription: s.SiteDescription,
		AboutDiocese:    s.AboutDiocese,
		ContactAddress:  s.Contact.Address,
		ContactPhone:    s.Contact.Phone,
		ContactEmail:    s.Contact.Email,
		SocialFacebook:  s.Social.Facebook,
		SocialInstagram: s.Social.Instagram,
		SocialYouTube:   s.Social.YouTube,
		SocialTwitter:   s.Social.Twitter,
	}
}

// SaveSettings stores the site settings. logo is the uploaded logo or nil
// to keep the current one. Only admins may change settings.
func (e *Editor) SaveSettings(ctx context.Context, st identity.State, f SettingsForm, logo io.Reader) error {
	if err := requireRole(st, model.RoleAdmin); err != nil {
		return err
	}
	if ve := check(f); ve != nil {
		return ve
	}

	current, err := e.content.Settings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	logoURL := current.LogoURL
	var uploaded string
	switch {
	case logo != nil:
		res, err := e.images.Save(logo, imaging.KindLogo)
		if err != nil {
			if errors.Is(err, imaging.ErrUnsupportedFormat) || errors.Is(err, imaging.ErrTooLarge) {
				return &ValidationError{Fields: map[string]string{"logo": logoMessage(err)}}
			}
			return fmt.Errorf("storing logo: %w", err)
		}
		uploaded = res.URL
		logoURL = res.URL
	case f.RemoveLogo:
		logoURL = ""
	}

	row := backend.Row{
		"logo_url":         logoURL,
		"site_title":       f.SiteTitle,
		"site_description": f.SiteDescription,
		"about_diocese":    f.AboutDiocese,
		"contact_address":  f.ContactAddress,
		"contact_phone":    f.ContactPhone,
		"contact_email":    f.ContactEmail,
		"social_facebook":  f.SocialFacebook,
		"social_instagram": f.SocialInstagram,
		"social_youtube":   f.SocialYouTube,
		"social_twitter":   f.SocialTwitter,
		"updated_at":       e.now().UTC(),
	}
	if err := e.upsertSettings(ctx, row); err != nil {
		if uploaded != "" {
			if derr := e.images.Delete(uploaded); derr != nil {
				e.logger.Warn("failed to remove unused logo", "url", uploaded, "error", derr)
			}
		}
		return err
	}

	if logoURL != current.LogoURL && current.LogoURL != "" {
		if err := e.images.Delete(current.LogoURL); err != nil {
			e.logger.Warn("failed to remove previous logo", "url", current.LogoURL, "error", err)
		}
	}
	if err := e.content.InvalidateSettings(ctx); err != nil {
		e.logger.Warn("failed to invalidate settings cache", "error", err)
	}
	e.logger.Info("site settings saved", "user", st.Email())
	return nil
}

func (e *Editor) upsertSettings(ctx context.Context, row backend.Row) error {
	err := e.client.Update(ctx, backend.TableSiteSettings, model.SiteSettingsID, row)
	if errors.Is(err, backend.ErrNotFound) {
		row["id"] = model.SiteSettingsID
		_, err = e.client.Insert(ctx, backend.TableSiteSettings, row)
	}
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func logoMessage(err error) string {
	if errors.Is(err, imaging.ErrTooLarge) {
		return "A imagem excede o limite de 5 MB."
	}
	return "Envie uma imagem JPEG, PNG, GIF ou WebP."
}
