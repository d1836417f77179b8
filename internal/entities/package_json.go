package entities

import (
	"encoding/json"
	"strconv"
)

// legacyStamp старые ревизии присылали номер числом.
type legacyStamp struct {
	Code json.RawMessage `json:"code"`
	Text string          `json:"text,omitempty"`
}

type legacyStampsSummary struct {
	GreenNumbers     []legacyStamp `json:"green_numbers"`
	DestinationQuery string        `json:"destination_query"`
}

// UnmarshalJSON приводит все известные формы stamps к каноничной stampsSummary:
//
//	stampsSummary{greenNumbers, destinationQuery}  - каноничная
//	stamps_summary{green_numbers, destination_query}
//	green_numbers / destination_query на верхнем уровне
//
// Если присутствует несколько форм, побеждает каноничная.
func (p *Package) UnmarshalJSON(data []byte) error {
	type plain Package
	aux := struct {
		*plain
		LegacySummary    *legacyStampsSummary `json:"stamps_summary"`
		FlatGreenNumbers []legacyStamp        `json:"green_numbers"`
		FlatDestQuery    string               `json:"destination_query"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if p.Stamps != nil {
		return nil
	}

	switch {
	case aux.LegacySummary != nil:
		p.Stamps = &StampsSummary{
			GreenNumbers:     convertLegacyStamps(aux.LegacySummary.GreenNumbers),
			DestinationQuery: aux.LegacySummary.DestinationQuery,
		}
	case len(aux.FlatGreenNumbers) > 0 || aux.FlatDestQuery != "":
		p.Stamps = &StampsSummary{
			GreenNumbers:     convertLegacyStamps(aux.FlatGreenNumbers),
			DestinationQuery: aux.FlatDestQuery,
		}
	}
	return nil
}

func convertLegacyStamps(in []legacyStamp) []Stamp {
	if len(in) == 0 {
		return nil
	}
	out := make([]Stamp, 0, len(in))
	for _, s := range in {
		code := stampCode(s.Code)
		if code == "" {
			continue
		}
		out = append(out, Stamp{Code: code, Text: s.Text})
	}
	return out
}

func stampCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
