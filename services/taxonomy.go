package services

import (
	"errors"
	"fmt"
	"strings"

	"conference-api/config"
	"conference-api/models"
)

// Taxonomy is the immutable track/topic registry used to classify abstracts.
type Taxonomy struct {
	tracks []models.Track
	themes []string
	byKey  map[string]int
}

// NewTaxonomy copies tracks and themes into a registry. Track values and names
// must be unique and every track needs at least one topic.
func NewTaxonomy(tracks []models.Track, themes []string) (*Taxonomy, error) {
	if len(tracks) == 0 {
		return nil, errors.New("taxonomy needs at least one track")
	}
	t := &Taxonomy{
		tracks: make([]models.Track, 0, len(tracks)),
		themes: append([]string(nil), themes...),
		byKey:  make(map[string]int, len(tracks)*2),
	}
	for _, tr := range tracks {
		value := strings.TrimSpace(tr.Value)
		name := strings.TrimSpace(tr.Name)
		if value == "" || name == "" {
			return nil, fmt.Errorf("track %q: value and name are required", tr.Value)
		}
		if len(tr.Topics) == 0 {
			return nil, fmt.Errorf("track %q has no topics", value)
		}
		keys := []string{value}
		if name != value {
			keys = append(keys, name)
		}
		for _, key := range keys {
			if _, dup := t.byKey[key]; dup {
				return nil, fmt.Errorf("duplicate track identifier %q", key)
			}
			t.byKey[key] = len(t.tracks)
		}
		t.tracks = append(t.tracks, models.Track{
			Name:   name,
			Value:  value,
			Topics: append([]string(nil), tr.Topics...),
		})
	}
	return t, nil
}

// DefaultTaxonomy returns the built-in conference tracks.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(defaultTracks, defaultCrossCuttingThemes)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTaxonomy reads a YAML override, or returns the defaults when path is
// empty. A file without themes keeps the built-in themes.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTaxonomy(), nil
	}
	doc, err := config.LoadTaxonomyFile(path)
	if err != nil {
		return nil, err
	}
	themes := doc.CrossCuttingThemes
	if len(themes) == 0 {
		themes = defaultCrossCuttingThemes
	}
	return NewTaxonomy(doc.Tracks, themes)
}

// Tracks returns a copy of the registered tracks in display order.
func (t *Taxonomy) Tracks() []models.Track {
	out := make([]models.Track, len(t.tracks))
	for i, tr := range t.tracks {
		out[i] = models.Track{Name: tr.Name, Value: tr.Value, Topics: append([]string(nil), tr.Topics...)}
	}
	return out
}

// CrossCuttingThemes returns a copy of the theme list.
func (t *Taxonomy) CrossCuttingThemes() []string {
	return append([]string(nil), t.themes...)
}

// ResolveTrack finds a track by its stable value or its display name.
func (t *Taxonomy) ResolveTrack(identifier string) (models.Track, bool) {
	idx, ok := t.byKey[strings.TrimSpace(identifier)]
	if !ok {
		return models.Track{}, false
	}
	return t.tracks[idx], true
}

// IsValidSubcategory reports whether subcategory is one of track's topics.
func (t *Taxonomy) IsValidSubcategory(track models.Track, subcategory string) bool {
	subcategory = strings.TrimSpace(subcategory)
	for _, topic := range track.Topics {
		if topic == subcategory {
			return true
		}
	}
	return false
}

// IsValidTheme reports whether theme is a registered cross-cutting theme.
func (t *Taxonomy) IsValidTheme(theme string) bool {
	theme = strings.TrimSpace(theme)
	for _, v := range t.themes {
		if v == theme {
			return true
		}
	}
	return false
}

var defaultTracks = []models.Track{
	{
		Name:  "Integrated Diagnostics, AMR, and Epidemic Readiness",
		Value: "track_1",
		Topics: []string{
			"Optimizing Laboratory Diagnostics in Integrated Health Systems",
			"Quality management systems in Multi-Disease Diagnostics",
			"Leveraging Point-of-Care Testing to Enhance Integrated Service Delivery",
			"Combatting Antimicrobial Resistance (AMR) Through Diagnostics",
			"Strengthening surveillance systems for drug resistance across TB, malaria, HIV, and bacterial infections",
			"Linking diagnostics to resistance monitoring: From lab to real-time policy response",
			"Role of Diagnostics in Early Warning Systems: lessons from recent outbreaks",
			"Expanding access to radiological services: Affordable imaging in low-resource settings",
		},
	},
	{
		Name:  "Digital Health, Data, and Innovation",
		Value: "track_2",
		Topics: []string{
			"AI-powered diagnostics: Innovations and governance for TB, HIV, and cervical cancer",
			"Digital platforms for surveillance, early detection, and outbreak prediction",
			"Data interoperability and health information exchange: service delivery Integration and data/information systems, Gaps, ethics, and governance",
			"Community-led digital health: Mobile tools, and digital village health teams (VHTs)",
			"Localized health information systems: Capturing/collection, use of data at grass root and higher levels for fast action.",
			"Leveraging digital equity in urban and peri-urban health responses",
		},
	},
	{
		Name:  "Community Engagement for Disease Prevention and Elimination",
		Value: "track_3",
		Topics: []string{
			"Catalyzing youth, community health extension workers (CHEWs), and grassroots champions for health innovation",
			"Integrating preventive services for communicable and non-communicable diseases, and mental health at household level",
			"Scaling community-led elimination efforts: Malaria, TB, neglected tropical diseases (NTDs), and leprosy and improving vaccine uptake",
			"Participatory planning, implementation, monitoring for behavior change, and social accountability",
		},
	},
	{
		Name:  "Health System Resilience and Emergency Preparedness and Response",
		Value: "track_4",
		Topics: []string{
			"Sepsis and emergency triage protocols in fragile health systems",
			"Strengthening infection prevention and control (IPC) in primary care; including ready to use isolation facilities.",
			"Local vaccine and therapeutics; access, and emergency stockpiling",
			"Health workforce preparedness; Training multidisciplinary rapid response teams",
			"Continuity of care: Protecting essential health services during crises",
		},
	},
	{
		Name:  "Policy, Financing and Cross-Sector Integration",
		Value: "track_5",
		Topics: []string{
			"Integrated financing models for chronic and infectious disease burdens",
			"Social determinant-sensitive policymaking: Urban health, empowering young people for improved health through education and intersectoral action",
			"National accountability frameworks for health performance",
			"Scaling UHC through service integration at the primary level",
			"Policy instruments for embedding health equity in national planning",
			"Implementation science and translation of results into policy",
		},
	},
	{
		Name:  "One Health",
		Value: "track_6",
		Topics: []string{
			"Early warning systems and multi-sector coordination for zoonotic outbreaks",
			"Localizing One Health strategies: Successes and challenges at district level",
			"Public-private partnerships; Insurance, vouchers, and demand-side financing to reduce out-of-pocket expenditure",
			"Data harmonization between human and animal health sectors",
			"Nutrition and lifestyle for health",
			"Wildlife trade, food systems, and emerging health risks",
			"Preparing for climate-sensitive disease patterns and spillover threats",
			"Strengthening Biosafety and Biosecurity Systems to Prevent Zoonotic Spillovers",
			"Confronting Insecticide Resistance in Vectors: A One Health approach to sustaining vector control gains",
		},
	},
	{
		Name:  "Care, Treatment & Rehabilitation",
		Value: "track_7",
		Topics: []string{
			"Innovations in equitable health services for acute and chronic diseases care delivery across primary levels",
			"Interface of communicable and non-communicable diseases (NCDs): Integrated models",
			"Role of traditional medicine in continuum of care",
			"Enhancing community trust and treatment adherence through culturally embedded care",
			"Digital decision-support tools for frontline clinicians in NCD and infectious disease management",
		},
	},
}

var defaultCrossCuttingThemes = []string{
	"Health equity and inclusion in marginalized and urbanizing populations",
	"Urban health, infrastructure, and health service delivery adaptations",
	"Gender and youth empowerment in policy and practice",
	"Evidence translation from research to policy implementation",
	"South-South collaboration and regional leadership in innovation",
	"Health professionals education including transformative teaching methods and competency-based training",
}
