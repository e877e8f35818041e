package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/tradedoc-cli/internal/model"
)

// Candidate is a value one layer proposes for a field, with the layer's
// confidence. A nil/absent candidate means no_match, which is a normal
// outcome rather than an error.
type Candidate struct {
	Value      string
	Confidence float64
}

// kindSpec is the normalizer/validator strategy for one value kind. The
// catalog entry selects the strategy; extraction logic stays kind-agnostic.
type kindSpec struct {
	// anchorConfidence is the Layer A confidence for an alias-anchored match.
	anchorConfidence float64
	// normalize converts matched text into canonical form; ok=false means the
	// candidate is not type-conformant and the layer treats it as no_match.
	normalize func(string) (string, bool)
	// plausible gates Layer B whole-text hits that are individually
	// conformant but contextually unlikely (e.g. a date far out of range).
	plausible func(string) bool
	// contextPattern is the broad whole-text pattern Layer B falls back to
	// when no alias is even present in the document.
	contextPattern *regexp.Regexp
}

var wsRun = regexp.MustCompile(`\s+`)

// normalizeSpaces collapses whitespace runs and strips separator punctuation
// left over from label anchoring.
func normalizeSpaces(s string) string {
	return strings.Trim(wsRun.ReplaceAllString(s, " "), " :-\t")
}

var kindSpecs = map[model.ValueKind]kindSpec{
	model.KindString: {
		anchorConfidence: 0.86,
		normalize:        normalizeString,
		plausible:        func(string) bool { return true },
	},
	model.KindIdentifier: {
		anchorConfidence: 0.95,
		normalize:        normalizeIdentifier,
		plausible:        func(string) bool { return true },
	},
	model.KindDate: {
		anchorConfidence: 0.93,
		normalize:        normalizeDate,
		plausible:        plausibleDate,
		contextPattern:   regexp.MustCompile(`\b([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})\b`),
	},
	model.KindMoney: {
		anchorConfidence: 0.92,
		normalize:        normalizeAmount,
		plausible:        func(string) bool { return true },
	},
	model.KindWeight: {
		anchorConfidence: 0.90,
		normalize:        normalizeWeight,
		plausible:        func(string) bool { return true },
	},
	model.KindCount: {
		anchorConfidence: 0.90,
		normalize:        normalizeCount,
		plausible:        func(string) bool { return true },
	},
	model.KindCountry: {
		anchorConfidence: 0.90,
		normalize:        normalizeCountry,
		plausible:        func(string) bool { return true },
		contextPattern:   regexp.MustCompile(`\b([A-Za-z]{3,}(?:\s+[A-Za-z]{2,}){0,3})\b`),
	},
}

func normalizeString(s string) (string, bool) {
	v := normalizeSpaces(s)
	return v, len(v) >= 3
}

func normalizeIdentifier(s string) (string, bool) {
	v := strings.ToUpper(normalizeSpaces(s))
	return v, v != ""
}

// normalizeDate canonicalizes a separator-delimited date into ISO form.
// Ambiguous day/month order defaults to day-first, which matches the
// Brazilian paperwork this tool mostly sees.
func normalizeDate(s string) (string, bool) {
	v := normalizeSpaces(s)
	parts := regexp.MustCompile(`[./\-]`).Split(v, -1)
	if len(parts) != 3 {
		return "", false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", false
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case len(parts[0]) == 4:
		year, month, day = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4:
		day, month, year = nums[0], nums[1], nums[2]
		if month > 12 && day <= 12 {
			day, month = month, day
		}
	default:
		// Two-digit year: assume day-first, 2000s.
		day, month, year = nums[0], nums[1], nums[2]+2000
		if month > 12 && day <= 12 {
			day, month = month, day
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// plausibleDate rejects normalized dates outside a sane shipping window.
func plausibleDate(iso string) bool {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return false
	}
	return t.Year() >= 1990 && t.Year() <= 2100
}

var nonAmount = regexp.MustCompile(`[^\d.,]`)

// normalizeAmount parses a money-like token into a canonical dotted decimal.
// Both "1.234,56" and "1,234.56" grouping conventions occur in the wild.
func normalizeAmount(s string) (string, bool) {
	raw := nonAmount.ReplaceAllString(s, "")
	if raw == "" {
		return "", false
	}

	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	var intPart, fracPart string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Rightmost separator is the decimal point.
		sep := lastDot
		if lastComma > lastDot {
			sep = lastComma
		}
		intPart, fracPart = raw[:sep], raw[sep+1:]
	case lastComma >= 0:
		// Lone comma: decimal when followed by exactly two digits.
		if len(raw)-lastComma-1 == 2 {
			intPart, fracPart = raw[:lastComma], raw[lastComma+1:]
		} else {
			intPart = raw
		}
	case lastDot >= 0:
		if len(raw)-lastDot-1 == 2 {
			intPart, fracPart = raw[:lastDot], raw[lastDot+1:]
		} else if tail := len(raw) - lastDot - 1; tail == 3 && strings.Count(raw, ".") > 0 && len(raw) > 4 {
			intPart = raw
		} else {
			intPart, fracPart = raw[:lastDot], raw[lastDot+1:]
		}
	default:
		intPart = raw
	}

	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	fracPart = strings.NewReplacer(".", "", ",", "").Replace(fracPart)
	if intPart == "" {
		intPart = "0"
	}

	n, err := strconv.ParseFloat(intPart+"."+padFrac(fracPart), 64)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%.2f", n), true
}

func padFrac(frac string) string {
	if frac == "" {
		return "00"
	}
	return frac
}

var weightToken = regexp.MustCompile(`^([\d.,]+)\s*([A-Za-z]{0,3})$`)

// normalizeWeight parses a numeric quantity with an optional short unit
// suffix (KG, MT, CBM, ...).
func normalizeWeight(s string) (string, bool) {
	m := weightToken.FindStringSubmatch(normalizeSpaces(s))
	if m == nil {
		return "", false
	}
	amount, ok := normalizeAmount(m[1])
	if !ok {
		return "", false
	}
	if unit := strings.ToUpper(m[2]); unit != "" {
		return amount + " " + unit, true
	}
	return amount, true
}

// normalizeCount parses an integer quantity, tolerating group separators.
func normalizeCount(s string) (string, bool) {
	amount, ok := normalizeAmount(s)
	if !ok {
		return "", false
	}
	n, err := strconv.ParseFloat(amount, 64)
	if err != nil || n != float64(int64(n)) {
		return "", false
	}
	return strconv.FormatInt(int64(n), 10), true
}

// normalizeCountry resolves a country name or code against the known-country
// table and canonicalizes to the ISO alpha-2 code. Unknown countries are not
// type-conformant; that keeps loose text from masquerading as a country.
func normalizeCountry(s string) (string, bool) {
	v := strings.ToLower(normalizeSpaces(s))
	if code, ok := countryTable[v]; ok {
		return code, true
	}
	return "", false
}

// countryTable maps lowercase English and Portuguese country names plus ISO
// codes to the canonical alpha-2 code. Coverage follows the trade lanes the
// reviewers actually see; the catalog override file can extend aliases but
// the comparison code is always the alpha-2 form.
var countryTable = map[string]string{
	"br": "BR", "bra": "BR", "brazil": "BR", "brasil": "BR",
	"us": "US", "usa": "US", "united states": "US", "united states of america": "US", "estados unidos": "US",
	"cn": "CN", "chn": "CN", "china": "CN",
	"de": "DE", "deu": "DE", "germany": "DE", "alemanha": "DE",
	"jp": "JP", "jpn": "JP", "japan": "JP", "japão": "JP", "japao": "JP",
	"kr": "KR", "kor": "KR", "south korea": "KR", "korea": "KR", "coreia do sul": "KR",
	"in": "IN", "ind": "IN", "india": "IN", "índia": "IN",
	"it": "IT", "ita": "IT", "italy": "IT", "itália": "IT", "italia": "IT",
	"fr": "FR", "fra": "FR", "france": "FR", "frança": "FR", "franca": "FR",
	"es": "ES", "esp": "ES", "spain": "ES", "espanha": "ES",
	"pt": "PT", "prt": "PT", "portugal": "PT",
	"gb": "GB", "gbr": "GB", "united kingdom": "GB", "uk": "GB", "reino unido": "GB",
	"nl": "NL", "nld": "NL", "netherlands": "NL", "holanda": "NL", "países baixos": "NL",
	"be": "BE", "bel": "BE", "belgium": "BE", "bélgica": "BE", "belgica": "BE",
	"ch": "CH", "che": "CH", "switzerland": "CH", "suíça": "CH", "suica": "CH",
	"ar": "AR", "arg": "AR", "argentina": "AR",
	"cl": "CL", "chl": "CL", "chile": "CL",
	"co": "CO", "col": "CO", "colombia": "CO", "colômbia": "CO",
	"mx": "MX", "mex": "MX", "mexico": "MX", "méxico": "MX",
	"ca": "CA", "can": "CA", "canada": "CA", "canadá": "CA",
	"au": "AU", "aus": "AU", "australia": "AU", "austrália": "AU",
	"ru": "RU", "rus": "RU", "russia": "RU", "rússia": "RU",
	"za": "ZA", "zaf": "ZA", "south africa": "ZA", "áfrica do sul": "ZA",
	"ae": "AE", "are": "AE", "united arab emirates": "AE", "emirados árabes unidos": "AE",
	"sg": "SG", "sgp": "SG", "singapore": "SG", "singapura": "SG",
	"hk": "HK", "hkg": "HK", "hong kong": "HK",
	"tw": "TW", "twn": "TW", "taiwan": "TW",
	"th": "TH", "tha": "TH", "thailand": "TH", "tailândia": "TH",
	"vn": "VN", "vnm": "VN", "vietnam": "VN", "vietnã": "VN",
	"id": "ID", "idn": "ID", "indonesia": "ID", "indonésia": "ID",
	"my": "MY", "mys": "MY", "malaysia": "MY", "malásia": "MY",
	"tr": "TR", "tur": "TR", "turkey": "TR", "turquia": "TR",
	"pl": "PL", "pol": "PL", "poland": "PL", "polônia": "PL",
	"se": "SE", "swe": "SE", "sweden": "SE", "suécia": "SE",
	"no": "NO", "nor": "NO", "norway": "NO", "noruega": "NO",
	"dk": "DK", "dnk": "DK", "denmark": "DK", "dinamarca": "DK",
	"fi": "FI", "fin": "FI", "finland": "FI", "finlândia": "FI",
	"at": "AT", "aut": "AT", "austria": "AT", "áustria": "AT",
	"py": "PY", "pry": "PY", "paraguay": "PY", "paraguai": "PY",
	"uy": "UY", "ury": "UY", "uruguay": "UY", "uruguai": "UY",
	"pe": "PE", "per": "PE", "peru": "PE",
	"bo": "BO", "bol": "BO", "bolivia": "BO", "bolívia": "BO",
}

// specFor returns the strategy for a field's kind. Catalog validation
// guarantees the kind is known.
func specFor(kind model.ValueKind) kindSpec {
	return kindSpecs[kind]
}

// conform normalizes a raw match for the field and applies the field's
// vocabulary restriction when one is configured.
func conform(def model.FieldDefinition, raw string) (string, bool) {
	v, ok := specFor(def.Kind).normalize(raw)
	if !ok {
		return "", false
	}
	if len(def.Vocabulary) > 0 {
		for _, allowed := range def.Vocabulary {
			if strings.EqualFold(v, allowed) {
				return strings.ToUpper(allowed), true
			}
		}
		return "", false
	}
	return v, true
}
