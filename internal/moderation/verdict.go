package moderation

import (
	"encoding/json"
	"strings"
)

// Likelihood is the ordered risk scale returned by the SafeSearch endpoint.
type Likelihood int

const (
	Unknown Likelihood = iota
	VeryUnlikely
	Unlikely
	Possible
	Likely
	VeryLikely
)

var likelihoodNames = map[Likelihood]string{
	Unknown:      "UNKNOWN",
	VeryUnlikely: "VERY_UNLIKELY",
	Unlikely:     "UNLIKELY",
	Possible:     "POSSIBLE",
	Likely:       "LIKELY",
	VeryLikely:   "VERY_LIKELY",
}

func (l Likelihood) String() string {
	if name, ok := likelihoodNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

func (l Likelihood) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

func (l *Likelihood) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = ParseLikelihood(s)
	return nil
}

// ParseLikelihood maps a gate-defined label onto the ordered scale. Labels the
// gate has not documented collapse to Unknown rather than erroring.
func ParseLikelihood(s string) Likelihood {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VERY_UNLIKELY":
		return VeryUnlikely
	case "UNLIKELY":
		return Unlikely
	case "POSSIBLE":
		return Possible
	case "LIKELY":
		return Likely
	case "VERY_LIKELY":
		return VeryLikely
	default:
		return Unknown
	}
}

// Verdict holds the three independent risk categories for one image. It is
// ephemeral: consumed once to gate an upload, never persisted.
type Verdict struct {
	Adult    Likelihood `json:"adult"`
	Violence Likelihood `json:"violence"`
	Racy     Likelihood `json:"racy"`
}

// Blocked reports whether any category is at or above Likely.
func (v Verdict) Blocked() bool {
	return v.Adult >= Likely || v.Violence >= Likely || v.Racy >= Likely
}
