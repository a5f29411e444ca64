package ares

import (
	"encoding/json"
)

// VRPayload is the subset of the ARES "veřejný rejstřík" response the engine
// consumes. Cached definitive-absence records (HTTP 400/404) carry Error and
// no Zaznamy.
type VRPayload struct {
	ICOID   string   `json:"icoId"`
	Zaznamy []Zaznam `json:"zaznamy"`

	Error string `json:"_error,omitempty"`
	URL   string `json:"_url,omitempty"`
}

// IsError reports whether this is a cached error-record rather than data.
func (p *VRPayload) IsError() bool { return p != nil && p.Error != "" }

// Zaznam is one historical record of the entity in the register.
type Zaznam struct {
	PrimarniZaznam bool             `json:"primarniZaznam"`
	ObchodniJmeno  []HistoricValue  `json:"obchodniJmeno"`
	Spolecnici     []SpolecniciBlok `json:"spolecnici"`
	Akcionari      []AkcionariBlok  `json:"akcionari"`
}

// HistoricValue is a dated value from a history-aware list. An entry is
// active iff DatumVymazu (deleted-on) is absent.
type HistoricValue struct {
	Hodnota     string `json:"hodnota"`
	DatumVymazu string `json:"datumVymazu,omitempty"`
}

// Active reports whether the entry has not been deleted.
func (h HistoricValue) Active() bool { return h.DatumVymazu == "" }

// SpolecniciBlok is an s.r.o.-style members group.
type SpolecniciBlok struct {
	DatumVymazu string      `json:"datumVymazu,omitempty"`
	NazevOrganu string      `json:"nazevOrganu"`
	Spolecnik   []Spolecnik `json:"spolecnik"`
}

// Spolecnik is one member within a members group.
type Spolecnik struct {
	DatumVymazu string  `json:"datumVymazu,omitempty"`
	DatumZapisu string  `json:"datumZapisu,omitempty"`
	Osoba       *Osoba  `json:"osoba,omitempty"`
	Podil       []Podil `json:"podil"`
}

// AkcionariBlok is an a.s.-style shareholders section.
type AkcionariBlok struct {
	DatumVymazu   string       `json:"datumVymazu,omitempty"`
	NazevOrganu   string       `json:"nazevOrganu"`
	ClenoveOrganu []ClenOrganu `json:"clenoveOrganu"`
}

// ClenOrganu is one shareholder entry; the person is embedded directly.
type ClenOrganu struct {
	DatumVymazu    string          `json:"datumVymazu,omitempty"`
	DatumZapisu    string          `json:"datumZapisu,omitempty"`
	FyzickaOsoba   *FyzickaOsoba   `json:"fyzickaOsoba,omitempty"`
	PravnickaOsoba *PravnickaOsoba `json:"pravnickaOsoba,omitempty"`
	Podil          []Podil         `json:"podil,omitempty"`
}

// Osoba holds either a natural or a legal person.
type Osoba struct {
	FyzickaOsoba   *FyzickaOsoba   `json:"fyzickaOsoba,omitempty"`
	PravnickaOsoba *PravnickaOsoba `json:"pravnickaOsoba,omitempty"`
}

// FyzickaOsoba is a natural person.
type FyzickaOsoba struct {
	TitulPredJmenem string `json:"titulPredJmenem,omitempty"`
	Jmeno           string `json:"jmeno,omitempty"`
	Prijmeni        string `json:"prijmeni,omitempty"`
}

// PravnickaOsoba is a legal person.
type PravnickaOsoba struct {
	ICO           string `json:"ico,omitempty"`
	ObchodniJmeno string `json:"obchodniJmeno,omitempty"`
	Nazev         string `json:"nazev,omitempty"`
}

// Podil is one share entry on a member.
type Podil struct {
	DatumVymazu    string `json:"datumVymazu,omitempty"`
	VelikostPodilu *Obnos `json:"velikostPodilu,omitempty"`
	Vklad          *Obnos `json:"vklad,omitempty"`
	Splaceni       *Obnos `json:"splaceni,omitempty"`
}

// Active reports whether the share entry has not been deleted.
func (p Podil) Active() bool { return p.DatumVymazu == "" }

// Obnos is a typed amount; Hodnota arrives either as a JSON string or a bare
// number depending on TypObnos.
type Obnos struct {
	TypObnos string     `json:"typObnos,omitempty"`
	Hodnota  FlexString `json:"hodnota,omitempty"`
}

// FlexString decodes both JSON strings and numbers into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// String returns the underlying text.
func (f FlexString) String() string { return string(f) }
