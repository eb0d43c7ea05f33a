package content

import (
	"content-hub/internal/discovery"
	"content-hub/internal/domain"
)

// Modes reported by SourceStatus.
const (
	ModeHybrid       = "hybrid"
	ModeSupabaseOnly = "supabase-only"
	ModeLocalOnly    = "local-only"
	ModeOffline      = "offline"
)

type SourceStatus struct {
	Supabase       bool   `json:"supabase"`
	Local          bool   `json:"local"`
	Discovered     bool   `json:"discovered"`
	Mode           string `json:"mode"`
	RemoteReason   string `json:"remoteReason,omitempty"`
	StaticPath     string `json:"staticPath,omitempty"`
	DiscoveredApps int    `json:"discoveredApps"`
}

type pather interface {
	Path() string
}

// SourceStatus reports which leaves can currently supply data. The static
// file is checked on every call since it may appear or vanish.
func (p *Provider) SourceStatus() SourceStatus {
	st := SourceStatus{RemoteReason: p.remoteReason}
	for _, leaf := range p.leaves {
		switch leaf.Name() {
		case domain.SourceSupabase:
			st.Supabase = true
		case domain.SourceLocal:
			if pp, ok := leaf.(pather); ok {
				st.StaticPath = pp.Path()
				st.Local = st.StaticPath != ""
			} else {
				st.Local = true
			}
		case domain.SourceDiscovered:
			st.Discovered = p.meta.TotalFilesFound > 0
		}
	}
	for _, s := range p.meta.Sources {
		if s.FileCount > 0 {
			st.DiscoveredApps++
		}
	}

	fallback := st.Local || st.Discovered
	switch {
	case st.Supabase && fallback:
		st.Mode = ModeHybrid
	case st.Supabase:
		st.Mode = ModeSupabaseOnly
	case fallback:
		st.Mode = ModeLocalOnly
	default:
		st.Mode = ModeOffline
	}
	return st
}

// DiscoveryMetadata is what the scan found when the provider was built.
func (p *Provider) DiscoveryMetadata() discovery.Metadata {
	return p.meta
}
