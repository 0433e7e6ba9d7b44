package sources

// Upstream describes where and how the host fetches one source's raw
// payload. Fetching is a host concern: the pipeline itself never
// performs I/O, the scheduler hands it whatever these endpoints
// return.
type Upstream struct {
	PluginID string
	Name     string
	URL      string
	// Kind selects how the response body is wrapped before it enters
	// the pipeline: "json" is decoded as-is, "feed" and "html" are
	// passed through as a {contents: ...} proxy envelope.
	Kind            string
	RefreshInterval int // seconds
	ExtractContent  bool
}

// Upstreams is the host's fetch catalog, one entry per plugin that
// has a public endpoint.
func Upstreams() []Upstream {
	return []Upstream{
		{PluginID: "defense-news", Name: "Defense News", URL: "https://www.defensenews.com/arc/outboundfeeds/rss/", Kind: "feed", RefreshInterval: 900},
		{PluginID: "geopolitics", Name: "Geopolitical Monitor", URL: "https://www.geopoliticalmonitor.com/feed/", Kind: "feed", RefreshInterval: 1800},
		{PluginID: "investigative-journalism", Name: "Bellingcat", URL: "https://www.bellingcat.com/feed/", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "climate-monitor", Name: "Climate Monitor", URL: "https://www.carbonbrief.org/feed/", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "ai-governance", Name: "AI Governance Digest", URL: "https://www.aisnakeoil.com/feed", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "privacy-watch", Name: "Privacy Watch", URL: "https://www.eff.org/rss/updates.xml", Kind: "feed", RefreshInterval: 1800},
		{PluginID: "financial-transparency", Name: "Transparency Desk", URL: "https://www.transparency.org/en/rss", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "security-advisories", Name: "CISA Advisories", URL: "https://www.cisa.gov/cybersecurity-advisories/all.xml", Kind: "feed", RefreshInterval: 900},
		{PluginID: "cyber-research", Name: "Threat Research Wire", URL: "https://feeds.feedburner.com/TheHackersNews", Kind: "feed", RefreshInterval: 900},
		{PluginID: "osint-community", Name: "OSINT Community", URL: "https://osintframework.com/feed.xml", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "energy-infrastructure", Name: "Energy Infrastructure Brief", URL: "https://www.utilitydive.com/feeds/news/", Kind: "feed", RefreshInterval: 1800},
		{PluginID: "health-surveillance", Name: "Health Surveillance Network", URL: "https://www.cidrap.umn.edu/news/rss.xml", Kind: "feed", RefreshInterval: 1800},
		{PluginID: "leak-archive", Name: "Leak Archive", URL: "https://leakarchive.net/releases/rss", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "mission-updates", Name: "Mission Updates", URL: "https://www.nasa.gov/news-release/feed/", Kind: "feed", RefreshInterval: 3600},
		{PluginID: "weather-alerts", Name: "National Weather Service", URL: "https://api.weather.gov/alerts/active", Kind: "json", RefreshInterval: 600},
		{PluginID: "nasa-apod", Name: "NASA APOD", URL: "https://api.nasa.gov/planetary/apod?api_key=DEMO_KEY", Kind: "json", RefreshInterval: 43200},
		{PluginID: "usgs-seismic", Name: "USGS Earthquake Hazards", URL: "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_day.geojson", Kind: "json", RefreshInterval: 600},
		{PluginID: "social-pulse", Name: "Social Pulse", URL: "https://www.reddit.com/r/geopolitics/hot.json?limit=25", Kind: "json", RefreshInterval: 900},
		{PluginID: "market-data", Name: "Market Data", URL: "https://query1.finance.yahoo.com/v7/finance/quote?symbols=SPY,QQQ,GLD,USO", Kind: "json", RefreshInterval: 900},
		{PluginID: "financial-sentiment", Name: "Financial Sentiment", URL: "https://finnhub.io/api/v1/news?category=general", Kind: "json", RefreshInterval: 1800},
		{PluginID: "launch-schedule", Name: "Launch Schedule", URL: "https://ll.thespacedevs.com/2.2.0/launch/upcoming/?limit=20", Kind: "json", RefreshInterval: 3600},
		{PluginID: "dsn-telemetry", Name: "Deep Space Network", URL: "https://eyes.nasa.gov/dsn/data/dsn.json", Kind: "json", RefreshInterval: 300},
		{PluginID: "occrp-investigations", Name: "OCCRP", URL: "https://www.occrp.org/en/investigations", Kind: "html", RefreshInterval: 7200, ExtractContent: true},
		{PluginID: "icij-investigations", Name: "ICIJ", URL: "https://www.icij.org/investigations/", Kind: "html", RefreshInterval: 7200, ExtractContent: true},
	}
}
