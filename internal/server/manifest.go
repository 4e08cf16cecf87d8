package server

import (
	"indcat/internal/core"
	"indcat/internal/languages"
	"indcat/internal/userconfig"
)

// Addon identity served in every manifest.
const (
	addonID          = "org.indcat"
	addonVersion     = "1.0.0"
	addonName        = "IndCat"
	addonDescription = "Indian OTT Movies Catalog"
)

// Manifest is the addon manifest consumed by the media-center client.
type Manifest struct {
	ID            string        `json:"id"`
	Version       string        `json:"version"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Resources     []string      `json:"resources"`
	Types         []string      `json:"types"`
	Catalogs      []CatalogDef  `json:"catalogs"`
	IDPrefixes    []string      `json:"idPrefixes,omitempty"`
	BehaviorHints BehaviorHints `json:"behaviorHints"`
}

// CatalogDef describes one catalog offered by the addon.
type CatalogDef struct {
	Type  string       `json:"type"`
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Extra []ExtraField `json:"extra"`
}

// ExtraField declares an optional catalog request parameter.
type ExtraField struct {
	Name       string `json:"name"`
	IsRequired bool   `json:"isRequired"`
}

// BehaviorHints flags addon capabilities to the client.
type BehaviorHints struct {
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired,omitempty"`
}

// defaultManifest is served at /manifest.json before any configuration: it
// only points the client at the configure flow.
func defaultManifest() Manifest {
	return Manifest{
		ID:          addonID,
		Version:     addonVersion,
		Name:        addonName,
		Description: "Please configure this addon with your TMDB API key",
		Resources:   []string{},
		Types:       []string{},
		Catalogs:    []CatalogDef{},
		BehaviorHints: BehaviorHints{
			Configurable:          true,
			ConfigurationRequired: true,
		},
	}
}

// manifestFor builds the manifest for a decoded user configuration, with
// one movie catalog per configured language.
func manifestFor(cfg *userconfig.UserConfig, registry *languages.Registry) Manifest {
	catalogs := make([]CatalogDef, 0, len(cfg.Languages))
	for _, code := range cfg.Languages {
		catalogs = append(catalogs, CatalogDef{
			Type: "movie",
			ID:   code,
			Name: registry.Name(code),
			Extra: []ExtraField{
				{Name: "skip", IsRequired: false},
			},
		})
	}

	return Manifest{
		ID:          addonID,
		Version:     addonVersion,
		Name:        addonName,
		Description: addonDescription,
		Resources:   []string{"catalog"},
		Types:       []string{"movie"},
		Catalogs:    catalogs,
		IDPrefixes:  []string{core.ExternalIDPrefix},
		BehaviorHints: BehaviorHints{
			Configurable: true,
		},
	}
}
