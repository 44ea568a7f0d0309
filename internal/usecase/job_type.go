package usecase

import "strings"

// JobType tags both assets and log entries. Stored values are free text, so
// a JobType may hold something outside the four known tags.
type JobType string

const (
	JobTypeInstallation JobType = "MONTAJ"
	JobTypeFault        JobType = "ARIZA"
	JobTypeMaintenance  JobType = "BAKIM"
	JobTypeSale         JobType = "SATIS"
)

// JobTypes in display order.
var JobTypes = []JobType{
	JobTypeInstallation,
	JobTypeFault,
	JobTypeMaintenance,
	JobTypeSale,
}

// ParseJobType normalises s onto a known tag, ignoring case and surrounding
// space. Unknown input comes back unchanged with ok == false.
func ParseJobType(s string) (JobType, bool) {
	n := JobType(strings.ToUpper(strings.TrimSpace(s)))
	for _, jt := range JobTypes {
		if n == jt {
			return jt, true
		}
	}
	return JobType(s), false
}

func (j JobType) Known() bool {
	_, ok := ParseJobType(string(j))
	return ok
}

func (j JobType) Label() string {
	jt, ok := ParseJobType(string(j))
	switch {
	case jt == JobTypeSale:
		return "EK ÜRÜN SATIŞI"
	case ok:
		return string(jt)
	case j == "":
		return "-"
	default:
		return string(j)
	}
}
