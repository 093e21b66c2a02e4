package intel

import (
	"encoding/json"
	"fmt"
)

// payloadVersion is the current analysis payload contract. Bump when
// the section shapes change; reconstruction rejects other versions.
const payloadVersion = 1

// Offer captures what the analyzed page is selling and how.
type Offer struct {
	Products     []string `json:"products"`
	PricingModel string   `json:"pricing_model"`
	ValueProps   []string `json:"value_props"`
	Guarantees   []string `json:"guarantees"`
}

// Competitive captures market positioning extracted from the page.
type Competitive struct {
	Advantages  []string `json:"advantages"`
	Gaps        []string `json:"gaps"`
	Positioning string   `json:"positioning"`
}

// Psychology captures the persuasion profile of the page.
type Psychology struct {
	EmotionalTriggers []string `json:"emotional_triggers"`
	PainPoints        []string `json:"pain_points"`
	Objections        []string `json:"objections"`
	PersuasionAngle   string   `json:"persuasion_angle"`
}

// Analysis is the structured payload of one intelligence entry.
type Analysis struct {
	Offer       Offer       `json:"offer"`
	Competitive Competitive `json:"competitive"`
	Psychology  Psychology  `json:"psychology"`
}

// marshalAnalysis encodes the three sections into their storage columns.
func marshalAnalysis(a Analysis) (offer, competitive, psychology string, err error) {
	offerJSON, err := json.Marshal(a.Offer)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal offer: %w", err)
	}
	competitiveJSON, err := json.Marshal(a.Competitive)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal competitive: %w", err)
	}
	psychologyJSON, err := json.Marshal(a.Psychology)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal psychology: %w", err)
	}
	return string(offerJSON), string(competitiveJSON), string(psychologyJSON), nil
}

// reconstructAnalysis rebuilds a typed payload from storage columns,
// enforcing the version contract.
func reconstructAnalysis(version int, offer, competitive, psychology string) (Analysis, error) {
	var a Analysis
	if version != payloadVersion {
		return a, fmt.Errorf("unsupported payload version %d (expected %d)", version, payloadVersion)
	}
	if err := json.Unmarshal([]byte(offer), &a.Offer); err != nil {
		return a, fmt.Errorf("reconstruct offer: %w", err)
	}
	if err := json.Unmarshal([]byte(competitive), &a.Competitive); err != nil {
		return a, fmt.Errorf("reconstruct competitive: %w", err)
	}
	if err := json.Unmarshal([]byte(psychology), &a.Psychology); err != nil {
		return a, fmt.Errorf("reconstruct psychology: %w", err)
	}
	return a, nil
}
