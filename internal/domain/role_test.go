package domain

import "testing"

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		widgetType string
		hints      string
		list       bool
		want       Role
	}{
		{name: "carousel list", field: "carousel", widgetType: "image-carousel", list: true, want: RoleCarousel},
		{name: "gallery list", field: "gallery", widgetType: "", list: true, want: RoleGallery},
		{name: "slides in gallery widget", field: "slides", widgetType: "media-gallery", list: true, want: RoleGallery},
		{name: "background", field: "background_image", want: RoleBackground},
		{name: "bg prefix", field: "bg_image", want: RoleBackground},
		{name: "hero background", field: "background_image", hints: "section hero-banner", want: RoleHero},
		{name: "testimonial widget", field: "testimonial_image", widgetType: "testimonial", want: RoleAvatar},
		{name: "logo widget", field: "image", widgetType: "site-logo", want: RoleLogo},
		{name: "icon field", field: "icon_image", want: RoleIcon},
		{name: "video poster", field: "poster", widgetType: "", want: RoleVideoPoster},
		{name: "video widget", field: "image", widgetType: "video", want: RoleVideoPoster},
		{name: "plain image with hero hint", field: "image", widgetType: "image", hints: "hero", want: RoleHero},
		{name: "hero substring in class", field: "image", widgetType: "image", hints: "superhero-quote", want: RoleHero},
		{name: "plain image", field: "image", widgetType: "image", want: RoleOther},
		{name: "ribbon", field: "ribbon_image", want: RoleOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyRole(tt.field, tt.widgetType, tt.hints, tt.list)
			if got != tt.want {
				t.Errorf("ClassifyRole(%q, %q, %q, %v) = %q, want %q", tt.field, tt.widgetType, tt.hints, tt.list, got, tt.want)
			}
		})
	}
}

func TestPreselectVariant(t *testing.T) {
	tests := []struct {
		name      string
		role      Role
		available []string
		want      string
		wantOK    bool
	}{
		{name: "hero direct", role: RoleHero, available: []string{"hero", "teaser-photo"}, want: "hero", wantOK: true},
		{name: "background prefers hero", role: RoleBackground, available: []string{"page-background", "hero"}, want: "hero", wantOK: true},
		{name: "background falls back", role: RoleBackground, available: []string{"page-background"}, want: "page-background", wantOK: true},
		{name: "gallery uses carousel photo", role: RoleGallery, available: []string{"carousel-photo"}, want: "carousel-photo", wantOK: true},
		{name: "avatar teaser", role: RoleAvatar, available: []string{"teaser-photo"}, want: "teaser-photo", wantOK: true},
		{name: "default list", role: RoleOther, available: []string{"teaser-photo", "standard-page-photo"}, want: "standard-page-photo", wantOK: true},
		{name: "substring variant contains role", role: RoleLogo, available: []string{"footer-logo"}, want: "footer-logo", wantOK: true},
		{name: "substring role contains variant", role: RoleVideoPoster, available: []string{"video"}, want: "video", wantOK: true},
		{name: "no match", role: RoleHero, available: []string{"thumbnail"}, want: "", wantOK: false},
		{name: "nothing available", role: RoleCarousel, available: nil, want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PreselectVariant(tt.role, tt.available)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PreselectVariant(%q, %v) = (%q, %v), want (%q, %v)", tt.role, tt.available, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole(" Hero "); got != RoleHero {
		t.Errorf("expected hero, got %q", got)
	}
	if got := ParseRole("video-poster"); got != RoleVideoPoster {
		t.Errorf("expected video-poster, got %q", got)
	}
	if got := ParseRole("banner"); got != RoleOther {
		t.Errorf("expected other, got %q", got)
	}
}
