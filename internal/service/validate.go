package service

import (
	"kojen-data/internal/dateutil"
	"kojen-data/internal/domain"
)

// validate runs the basic shape checks a candidate must pass before any write
// is attempted. Failures are user errors, never programming errors.
func validate(r domain.Record) error {
	switch rec := r.(type) {
	case *domain.SteamRecord:
		if _, ok := dateutil.ParseDate(rec.Date); !ok {
			return domain.Validationf("tarih alanı zorunludur")
		}
		if rec.Time == "" {
			return domain.Validationf("saat alanı zorunludur")
		}
		if rec.Amount < 0 {
			return domain.Validationf("buhar miktarı negatif olamaz")
		}
	case *domain.HourlyEnergyRecord:
		if _, ok := dateutil.ParseDate(rec.Date); !ok {
			return domain.Validationf("tarih alanı zorunludur")
		}
		if !domain.ValidShift(rec.Shift) {
			return domain.Validationf("geçersiz vardiya: %s", rec.Shift)
		}
		if rec.Hour == "" {
			return domain.Validationf("saat dilimi zorunludur")
		}
		if rec.Aktif < 0 || rec.Reaktif < 0 || rec.AydemAktif < 0 || rec.AydemReaktif < 0 {
			return domain.Validationf("enerji değerleri negatif olamaz")
		}
	case *domain.MaintenanceRecord:
		if _, ok := dateutil.ParseDate(rec.Date); !ok {
			return domain.Validationf("tarih alanı zorunludur")
		}
		if rec.Motor == "" || rec.Status == "" {
			return domain.Validationf("motor ve durum alanları zorunludur")
		}
	case *domain.FaultRecord:
		if _, ok := dateutil.ParseDate(rec.Date); !ok {
			return domain.Validationf("tarih alanı zorunludur")
		}
		if rec.Motor == "" || rec.FaultType == "" || rec.Description == "" {
			return domain.Validationf("motor, arıza türü ve açıklama alanları zorunludur")
		}
	case *domain.ShiftRecord:
		if _, ok := dateutil.ParseDate(rec.Date); !ok {
			return domain.Validationf("tarih alanı zorunludur")
		}
		if !domain.ValidShift(rec.Shift) {
			return domain.Validationf("geçersiz vardiya: %s", rec.Shift)
		}
		if rec.Personnel == "" {
			return domain.Validationf("sorumlu personel zorunludur")
		}
	default:
		return domain.Validationf("bilinmeyen kayıt türü")
	}
	return nil
}

// operatorOf picks the submitter identity out of the flat field view; the
// field name differs per kind.
func operatorOf(fields map[string]string) string {
	for _, name := range []string{"recordedBy", "operator", "personnel"} {
		if v := fields[name]; v != "" {
			return v
		}
	}
	return ""
}
