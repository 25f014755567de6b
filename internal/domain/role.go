package domain

import "strings"

// Role is the semantic position an image occupies inside a document
type Role string

const (
	RoleHero        Role = "hero"
	RoleBackground  Role = "background"
	RoleCarousel    Role = "carousel"
	RoleGallery     Role = "gallery"
	RoleAvatar      Role = "avatar"
	RoleIcon        Role = "icon"
	RoleLogo        Role = "logo"
	RoleVideoPoster Role = "video-poster"
	RoleOther       Role = "other"
)

// Roles lists every role in display order
var Roles = []Role{
	RoleHero, RoleBackground, RoleCarousel, RoleGallery,
	RoleAvatar, RoleIcon, RoleLogo, RoleVideoPoster, RoleOther,
}

// ParseRole converts a string to a Role, falling back to RoleOther
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Roles {
		if string(r) == s {
			return r
		}
	}
	return RoleOther
}

func (r Role) String() string {
	return string(r)
}

// widgetRoles maps widget-type keywords to roles, checked in order
var widgetRoles = []struct {
	keyword string
	role    Role
}{
	{"carousel", RoleCarousel},
	{"slider", RoleCarousel},
	{"slides", RoleCarousel},
	{"gallery", RoleGallery},
	{"testimonial", RoleAvatar},
	{"avatar", RoleAvatar},
	{"logo", RoleLogo},
	{"icon", RoleIcon},
	{"video", RoleVideoPoster},
	{"hero", RoleHero},
}

// fieldRoles maps keywords in single-image field names to roles
var fieldRoles = []struct {
	keyword string
	role    Role
}{
	{"testimonial", RoleAvatar},
	{"avatar", RoleAvatar},
	{"logo", RoleLogo},
	{"icon", RoleIcon},
	{"poster", RoleVideoPoster},
}

// ClassifyRole infers the role of an image from the field holding it, the
// enclosing widget type and the CSS class/id hints in scope.
func ClassifyRole(field, widgetType, hints string, list bool) Role {
	field = strings.ToLower(field)
	widgetType = strings.ToLower(widgetType)
	hints = strings.ToLower(hints)

	if list {
		if strings.Contains(field, "gallery") || strings.Contains(widgetType, "gallery") {
			return RoleGallery
		}
		return RoleCarousel
	}

	if strings.Contains(field, "background") || strings.HasPrefix(field, "bg_") {
		if strings.Contains(hints, "hero") {
			return RoleHero
		}
		return RoleBackground
	}

	for _, wr := range widgetRoles {
		if strings.Contains(widgetType, wr.keyword) {
			return wr.role
		}
	}

	for _, fr := range fieldRoles {
		if strings.Contains(field, fr.keyword) {
			return fr.role
		}
	}

	if strings.Contains(hints, "hero") {
		return RoleHero
	}
	return RoleOther
}

// preferredVariants is the role -> preferred variant name list used for preselection
var preferredVariants = map[Role][]string{
	RoleHero:       {"hero"},
	RoleBackground: {"hero", "page-background"},
	RoleCarousel:   {"carousel-photo"},
	RoleGallery:    {"carousel-photo"},
	RoleAvatar:     {"teaser-photo"},
	RoleIcon:       {"teaser-photo"},
	RoleLogo:       {"teaser-photo"},
}

var defaultPreferredVariants = []string{"standard-page-photo", "teaser-photo"}

// PreferredVariants returns the ordered preference list for a role
func PreferredVariants(role Role) []string {
	if names, ok := preferredVariants[role]; ok {
		return names
	}
	return defaultPreferredVariants
}

// PreselectVariant picks a default variant for a role among the asset's
// available variants. ok is false when nothing fits; callers must then ask
// for an explicit non-standard choice instead of guessing.
func PreselectVariant(role Role, available []string) (name string, ok bool) {
	have := make(map[string]bool, len(available))
	for _, a := range available {
		have[a] = true
	}

	for _, pref := range PreferredVariants(role) {
		if have[pref] {
			return pref, true
		}
	}

	r := strings.ToLower(string(role))
	for _, a := range available {
		v := strings.ToLower(a)
		if v == "" {
			continue
		}
		if strings.Contains(v, r) || strings.Contains(r, v) {
			return a, true
		}
	}

	return "", false
}
