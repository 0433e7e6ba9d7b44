package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/osinthq/intake/app/normalize"
)

// Built-in keyword tables, one per RSS-backed source. Tables are
// ordered: the first matching pattern decides the tier. They live
// here as data, separate from the pipeline, so tiers and keyword
// lists can be tuned and unit-tested per source.

func rule(pattern string, priority normalize.Priority) normalize.PriorityRule {
	return normalize.CompileRule(pattern, priority)
}

var builtinTables = map[string]normalize.PriorityTable{
	"defense-news": {
		rule(`nuclear|invasion|declaration of war|mobilization`, normalize.PriorityCritical),
		rule(`missile|airstrike|drone strike|troop deployment|escalation`, normalize.PriorityHigh),
		rule(`military|defense|weapons|exercise|procurement`, normalize.PriorityMedium),
	},
	"geopolitics": {
		rule(`coup|regime collapse|state of emergency|martial law`, normalize.PriorityCritical),
		rule(`sanctions|treaty withdrawal|border clash|expulsion`, normalize.PriorityHigh),
		rule(`election|summit|diplomac|negotiation`, normalize.PriorityMedium),
	},
	"investigative-journalism": {
		rule(`war crime|mass grave|chemical weapon`, normalize.PriorityCritical),
		rule(`exposed|uncovered|identified|geolocated`, normalize.PriorityHigh),
		rule(`investigation|analysis|open source`, normalize.PriorityMedium),
	},
	"climate-monitor": {
		rule(`collapse|tipping point|unprecedented|record high`, normalize.PriorityCritical),
		rule(`extreme|heatwave|wildfire|flooding|drought`, normalize.PriorityHigh),
		rule(`climate|emissions|warming|glacier`, normalize.PriorityMedium),
	},
	"ai-governance": {
		rule(`ban|moratorium|existential`, normalize.PriorityHigh),
		rule(`regulation|oversight|safety|alignment|audit`, normalize.PriorityMedium),
	},
	"privacy-watch": {
		rule(`mass surveillance|spyware|stalkerware|backdoor`, normalize.PriorityCritical),
		rule(`data breach|tracking|biometric|facial recognition`, normalize.PriorityHigh),
		rule(`privacy|encryption|gdpr|data protection`, normalize.PriorityMedium),
	},
	"financial-transparency": {
		rule(`panama papers|pandora papers|massive fraud`, normalize.PriorityCritical),
		rule(`money laundering|shell compan|offshore|embezzlement`, normalize.PriorityHigh),
		rule(`corruption|tax haven|beneficial owner`, normalize.PriorityMedium),
	},
	"security-advisories": {
		rule(`actively exploited|zero.?day|emergency directive`, normalize.PriorityCritical),
		rule(`critical vulnerabilit|remote code execution|exploit`, normalize.PriorityHigh),
		rule(`advisory|vulnerability|patch|update`, normalize.PriorityMedium),
	},
	"cyber-research": {
		rule(`ransomware outbreak|supply.?chain attack|wiper`, normalize.PriorityCritical),
		rule(`apt|malware|botnet|phishing campaign|c2`, normalize.PriorityHigh),
		rule(`threat|research|analysis|ioc`, normalize.PriorityMedium),
	},
	"osint-community": {
		rule(`verified|geolocated|confirmed`, normalize.PriorityHigh),
		rule(`imagery|satellite|flight tracking|tooling`, normalize.PriorityMedium),
	},
	"energy-infrastructure": {
		rule(`blackout|grid failure|pipeline explosion|sabotage`, normalize.PriorityCritical),
		rule(`outage|shortage|curtailment|attack`, normalize.PriorityHigh),
		rule(`energy|grid|pipeline|refinery|reactor`, normalize.PriorityMedium),
	},
	"health-surveillance": {
		rule(`pandemic|public health emergency|h5n1`, normalize.PriorityCritical),
		rule(`outbreak|epidemic|novel (virus|pathogen)|cluster`, normalize.PriorityHigh),
		rule(`surveillance|cases|vaccination|who`, normalize.PriorityMedium),
	},
	"leak-archive": {
		rule(`government|military|intelligence agency`, normalize.PriorityHigh),
		rule(`bank|corporation|police|emails`, normalize.PriorityMedium),
	},
	"mission-updates": {
		rule(`failure|anomaly|loss of signal|aborted`, normalize.PriorityCritical),
		rule(`launch|landing|flyby|orbit insertion|deployment`, normalize.PriorityHigh),
		rule(`mission|spacecraft|instrument|test`, normalize.PriorityMedium),
	},
	"launch-schedule": {
		rule(`scrub|abort|delay|hold|failure`, normalize.PriorityCritical),
		rule(`launch|liftoff|ignition|go for launch`, normalize.PriorityHigh),
		rule(`payload|mission|rocket|crew`, normalize.PriorityMedium),
	},
	"occrp-investigations": {
		rule(`cartel|assassination|state capture`, normalize.PriorityCritical),
		rule(`laundering|smuggling|bribery|oligarch`, normalize.PriorityHigh),
		rule(`crime|corruption|investigation`, normalize.PriorityMedium),
	},
	"icij-investigations": {
		rule(`papers|leak|files`, normalize.PriorityHigh),
		rule(`offshore|investigation|records`, normalize.PriorityMedium),
	},
}

// Table returns the priority table for a source id, with an override
// from the rules directory taking precedence over the built-in one.
type Tables struct {
	overrides map[string]normalize.PriorityTable
}

func (t *Tables) Get(sourceID string) normalize.PriorityTable {
	if t != nil {
		if table, ok := t.overrides[sourceID]; ok {
			return table
		}
	}
	return builtinTables[sourceID]
}

// ruleFile is the YAML shape of one per-source override file. The
// file name (without extension) is the source id, mirroring how feed
// configs are keyed by file name.
type ruleFile struct {
	Rules []struct {
		Pattern  string `yaml:"pattern"`
		Priority string `yaml:"priority"`
	} `yaml:"rules"`
}

// LoadTables loads optional per-source priority-rule overrides from
// *.yml files in dir. A missing directory is not an error; an invalid
// file is.
func LoadTables(dir string) (*Tables, error) {
	tables := &Tables{overrides: make(map[string]normalize.PriorityTable)}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return tables, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find rule files: %w", err)
	}

	for _, file := range files {
		sourceID := strings.TrimSuffix(filepath.Base(file), ".yml")

		table, err := loadRuleFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		tables.overrides[sourceID] = table
		slog.Debug("Priority rules loaded", "source", sourceID, "rules", len(table))
	}

	return tables, nil
}

func loadRuleFile(path string) (normalize.PriorityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var parsed ruleFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	table := make(normalize.PriorityTable, 0, len(parsed.Rules))
	for i, entry := range parsed.Rules {
		priority := normalize.Priority(entry.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("rule %d: invalid priority %q", i, entry.Priority)
		}
		compiled, err := normalize.PriorityRule{Pattern: entry.Pattern, Priority: priority}.Compile()
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i, entry.Pattern, err)
		}
		table = append(table, compiled)
	}

	return table, nil
}
