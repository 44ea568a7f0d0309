package usecase

import (
	"fmt"
	"time"
)

type WarrantyStatus string

const (
	WarrantyNoDate  WarrantyStatus = "NODATE"
	WarrantyExpired WarrantyStatus = "EXPIRED"
	WarrantyDue     WarrantyStatus = "DUE"
	WarrantyActive  WarrantyStatus = "ACTIVE"
)

// DueThresholds are the selectable "due soon" windows, in days.
var DueThresholds = []int{7, 15, 30, 60}

const DefaultDueDays = 30

type Warranty struct {
	Status   WarrantyStatus
	DaysLeft *int
	Label    string
}

// WarrantyDays counts whole calendar days from today to end, negative once
// end has passed. Time of day is ignored on both sides; each value is read
// as a date in its own zone.
func WarrantyDays(end, today time.Time) int {
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

func ClassifyWarranty(end *time.Time, dueDays int, today time.Time) Warranty {
	if end == nil {
		return Warranty{Status: WarrantyNoDate, Label: "Tarih yok"}
	}

	days := WarrantyDays(*end, today)
	switch {
	case days < 0:
		return Warranty{Status: WarrantyExpired, DaysLeft: &days, Label: "GARANTİ BİTTİ"}
	case days <= dueDays:
		return Warranty{Status: WarrantyDue, DaysLeft: &days, Label: fmt.Sprintf("%d gün kaldı", days)}
	default:
		return Warranty{Status: WarrantyActive, DaysLeft: &days, Label: "Aktif"}
	}
}

type WarrantyStats struct {
	Total   int
	Expired int
	Due     int
	Active  int
	NoDate  int
}

func CountWarranty(assets []Asset, dueDays int, today time.Time) WarrantyStats {
	s := WarrantyStats{Total: len(assets)}
	for _, a := range assets {
		switch ClassifyWarranty(a.WarrantyEnd, dueDays, today).Status {
		case WarrantyNoDate:
			s.NoDate++
		case WarrantyExpired:
			s.Expired++
		case WarrantyDue:
			s.Due++
		case WarrantyActive:
			s.Active++
		}
	}
	return s
}
