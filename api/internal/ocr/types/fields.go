package types

// Fields is the canonical poster schema every extraction strategy produces.
// A nil pointer or nil slice means the source gave no signal for the field.
type Fields struct {
	Title          *string  `json:"title,omitempty"`
	Region         []string `json:"region,omitempty"`
	DanceType      *string  `json:"danceType,omitempty"`
	InstructorName *string  `json:"instructorName,omitempty"`
	ClassDays      []string `json:"classDays,omitempty"`
	StartDate      *string  `json:"startDate,omitempty"`
	EndDate        *string  `json:"endDate,omitempty"`
	Keywords       *string  `json:"keywords,omitempty"`
}

// Result is the outcome of one extraction request.
type Result struct {
	Fields     Fields `json:"fields"`
	Provenance string `json:"provenance"`
}

const ProvenanceOCR = "ocr"

const (
	RegionGangnam = "GANGNAM"
	RegionHongdae = "HONGDAE"
	RegionEtc     = "ETC"
)

const (
	DanceSalsa   = "SALSA"
	DanceBachata = "BACHATA"
	DanceZouk    = "ZOUK"
	DanceKizomba = "KIZOMBA"
	DanceEtc     = "ETC"
)

// Weekdays is the closed set of class day codes, Monday first.
var Weekdays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

func IsWeekday(code string) bool {
	for _, d := range Weekdays {
		if d == code {
			return true
		}
	}
	return false
}

func Ptr(s string) *string { return &s }

// Merge fills every field of dst that is still unset from src.
func Merge(dst, src Fields) Fields {
	if dst.Title == nil {
		dst.Title = src.Title
	}
	if dst.Region == nil {
		dst.Region = src.Region
	}
	if dst.DanceType == nil {
		dst.DanceType = src.DanceType
	}
	if dst.InstructorName == nil {
		dst.InstructorName = src.InstructorName
	}
	if dst.ClassDays == nil {
		dst.ClassDays = src.ClassDays
	}
	if dst.StartDate == nil {
		dst.StartDate = src.StartDate
	}
	if dst.EndDate == nil {
		dst.EndDate = src.EndDate
	}
	if dst.Keywords == nil {
		dst.Keywords = src.Keywords
	}
	return dst
}
