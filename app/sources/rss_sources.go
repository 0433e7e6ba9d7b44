package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/osinthq/intake/app/normalize"
)

var (
	cvePattern    = regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,}`)
	magnetPattern = regexp.MustCompile(`xt=urn:btih:([a-fA-F0-9]{40}|[A-Za-z2-7]{32})`)
	allCapsSlug   = regexp.MustCompile(`^[A-Z0-9_\-]+$`)
)

// feedSource describes one RSS/Atom-backed upstream: the static
// record defaults plus the hooks the generic normalizer applies.
type feedSource struct {
	ID          string
	Description string
	Config      normalize.SourceConfig
}

// feedSources builds the RSS-backed source set. Priority tables come
// from the (possibly overridden) rule tables; everything else is
// static per-source configuration.
func feedSources(tables *Tables) []feedSource {
	configured := func(id string, cfg normalize.SourceConfig) normalize.SourceConfig {
		cfg.Rules = tables.Get(id)
		return cfg
	}

	return []feedSource{
		{
			ID:          "defense-news",
			Description: "Defense and military affairs reporting",
			Config: configured("defense-news", normalize.SourceConfig{
				Source:       "Defense News",
				Category:     "defense",
				BaseTags:     []string{"defense", "military"},
				TrustRating:  80,
				Verification: normalize.VerificationVerified,
				DataQuality:  80,
			}),
		},
		{
			ID:          "geopolitics",
			Description: "Geopolitical analysis and diplomacy coverage",
			Config: configured("geopolitics", normalize.SourceConfig{
				Source:       "Geopolitical Monitor",
				Category:     "geopolitics",
				BaseTags:     []string{"geopolitics", "international"},
				TrustRating:  75,
				Verification: normalize.VerificationVerified,
				DataQuality:  75,
			}),
		},
		{
			ID:          "investigative-journalism",
			Description: "Open-source investigative reporting",
			Config: configured("investigative-journalism", normalize.SourceConfig{
				Source:       "Bellingcat",
				Category:     "investigative",
				BaseTags:     []string{"investigative", "osint"},
				TrustRating:  85,
				Verification: normalize.VerificationVerified,
				DataQuality:  90,
				AdditionalTags: func(ctx normalize.Context) []string {
					var tags []string
					text := ctx.Text()
					if strings.Contains(text, "satellite") || strings.Contains(text, "imagery") {
						tags = append(tags, "geospatial")
					}
					if strings.Contains(text, "geolocat") {
						tags = append(tags, "geolocation")
					}
					return tags
				},
			}),
		},
		{
			ID:          "climate-monitor",
			Description: "Climate science and extreme weather coverage",
			Config: configured("climate-monitor", normalize.SourceConfig{
				Source:       "Climate Monitor",
				Category:     "climate",
				BaseTags:     []string{"climate", "environment"},
				TrustRating:  85,
				Verification: normalize.VerificationVerified,
				DataQuality:  85,
			}),
		},
		{
			ID:          "ai-governance",
			Description: "AI policy, safety and governance news",
			Config: configured("ai-governance", normalize.SourceConfig{
				Source:       "AI Governance Digest",
				Category:     "ai-governance",
				BaseTags:     []string{"ai", "governance", "policy"},
				TrustRating:  70,
				Verification: normalize.VerificationVerified,
				DataQuality:  75,
			}),
		},
		{
			ID:          "privacy-watch",
			Description: "Digital privacy and surveillance reporting",
			Config: configured("privacy-watch", normalize.SourceConfig{
				Source:       "Privacy Watch",
				Category:     "privacy",
				BaseTags:     []string{"privacy", "surveillance"},
				TrustRating:  80,
				Verification: normalize.VerificationVerified,
				DataQuality:  80,
			}),
		},
		{
			ID:          "financial-transparency",
			Description: "Financial crime and transparency reporting",
			Config: configured("financial-transparency", normalize.SourceConfig{
				Source:       "Transparency Desk",
				Category:     "financial-transparency",
				BaseTags:     []string{"finance", "transparency"},
				TrustRating:  80,
				Verification: normalize.VerificationVerified,
				DataQuality:  80,
			}),
		},
		{
			ID:          "security-advisories",
			Description: "Official security advisories and alerts",
			Config: configured("security-advisories", normalize.SourceConfig{
				Source:       "CISA Advisories",
				Category:     "security",
				BaseTags:     []string{"security", "advisory"},
				TrustRating:  98,
				Verification: normalize.VerificationOfficial,
				DataQuality:  95,
				AdditionalTags: func(ctx normalize.Context) []string {
					if cvePattern.MatchString(ctx.Title + " " + ctx.Summary) {
						return []string{"cve"}
					}
					return nil
				},
				EnrichMetadata: func(ctx normalize.Context) map[string]any {
					if id := cvePattern.FindString(ctx.Title + " " + ctx.Summary); id != "" {
						return map[string]any{"cveId": strings.ToUpper(id)}
					}
					return nil
				},
			}),
		},
		{
			ID:          "cyber-research",
			Description: "Threat intelligence and malware research",
			Config: configured("cyber-research", normalize.SourceConfig{
				Source:       "Threat Research Wire",
				Category:     "security",
				BaseTags:     []string{"security", "threat-intel"},
				TrustRating:  80,
				Verification: normalize.VerificationVerified,
				DataQuality:  85,
			}),
		},
		{
			ID:          "osint-community",
			Description: "OSINT community posts and tooling updates",
			Config: configured("osint-community", normalize.SourceConfig{
				Source:       "OSINT Community",
				Category:     "osint",
				BaseTags:     []string{"osint", "community"},
				TrustRating:  55,
				Verification: normalize.VerificationUnverified,
				DataQuality:  60,
			}),
		},
		{
			ID:          "energy-infrastructure",
			Description: "Energy grid and infrastructure monitoring",
			Config: configured("energy-infrastructure", normalize.SourceConfig{
				Source:       "Energy Infrastructure Brief",
				Category:     "infrastructure",
				BaseTags:     []string{"energy", "infrastructure"},
				TrustRating:  75,
				Verification: normalize.VerificationVerified,
				DataQuality:  75,
			}),
		},
		{
			ID:          "health-surveillance",
			Description: "Disease outbreak and public health surveillance",
			Config: configured("health-surveillance", normalize.SourceConfig{
				Source:       "Health Surveillance Network",
				Category:     "health",
				BaseTags:     []string{"health", "epidemiology"},
				TrustRating:  85,
				Verification: normalize.VerificationVerified,
				DataQuality:  85,
			}),
		},
		{
			ID:          "leak-archive",
			Description: "Published leak collections and data releases",
			Config: configured("leak-archive", normalize.SourceConfig{
				Source:       "Leak Archive",
				Category:     "financial-transparency",
				BaseTags:     []string{"leaks", "data-release"},
				TrustRating:  60,
				Verification: normalize.VerificationUnverified,
				DataQuality:  70,
				TransformURL: rewriteMagnetLink,
			}),
		},
		{
			ID:          "mission-updates",
			Description: "Deep-space mission status updates",
			Config: configured("mission-updates", normalize.SourceConfig{
				Source:         "Mission Updates",
				Category:       "space-operations",
				BaseTags:       []string{"space", "missions"},
				TrustRating:    95,
				Verification:   normalize.VerificationOfficial,
				DataQuality:    90,
				TransformTitle: humanizeSlugTitle,
			}),
		},
	}
}

// rewriteMagnetLink redirects non-browsable magnet links to the
// archive's search page for the release, keyed by display name, and
// records the info-hash for traceability.
func rewriteMagnetLink(ctx normalize.Context, link string) (string, []string, map[string]any) {
	if !strings.HasPrefix(link, "magnet:") {
		return link, nil, nil
	}

	metadata := map[string]any{}
	tags := []string{"torrent"}

	if m := magnetPattern.FindStringSubmatch(link); m != nil {
		metadata["infoHash"] = strings.ToLower(m[1])
	}
	metadata["magnetUri"] = link

	query := ctx.Title
	if parsed, err := url.Parse(link); err == nil {
		if dn := parsed.Query().Get("dn"); dn != "" {
			query = dn
		}
	}

	companion := fmt.Sprintf("https://search.leakarchive.net/?q=%s", url.QueryEscape(query))
	return companion, tags, metadata
}

// humanizeSlugTitle rewrites all-caps upstream slugs ("DSN_ANTENNA_
// UPGRADE") into readable titles; regular titles pass through.
func humanizeSlugTitle(_ normalize.Context, title string) string {
	if len(title) > 3 && allCapsSlug.MatchString(title) && strings.ContainsAny(title, "_-") {
		return normalize.HumanizeSlug(title)
	}
	return title
}
