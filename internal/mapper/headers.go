// Package mapper translates between the spreadsheet's human-readable column
// headers and the internal field names, in both directions. The header text is
// owned by the backing sheets (operators see it), so it stays Turkish here and
// is configuration, not logic: per kind, one ordered header list and one
// header -> field table, total in both directions.
package mapper

import "kojen-data/internal/domain"

// SheetNames maps a record kind to the tab the web app writes it into.
var SheetNames = map[domain.Kind]string{
	domain.KindSteam:       "BuharVerileri",
	domain.KindHourly:      "SaatlikEnerjiVerileri",
	domain.KindMaintenance: "BakimVerileri",
	domain.KindFault:       "ArizaVerileri",
	domain.KindShift:       "VardiyaVerileri",
}

// headerTables: ordered column headers per kind, as currently deployed. The
// order only matters for export rendering; lookup is by name.
var headerTables = map[domain.Kind][]string{
	domain.KindSteam: {
		"ID", "Tarih", "Saat", "Buhar Miktarı (ton)", "Notlar", "Kaydeden",
		"Kayıt Zamanı", "Güncelleme Zamanı", "Güncelleyen",
		"Orijinal Kayıt Zamanı", "Orijinal Operator",
	},
	domain.KindHourly: {
		"ID", "Tarih", "Vardiya", "Saat", "Aktif Enerji (MWh)",
		"Reaktif Enerji (kVArh)", "Aydem Aktif", "Aydem Reaktif", "Operator",
		"Kayıt Zamanı", "Güncelleme Zamanı", "Güncelleyen",
		"Orijinal Kayıt Zamanı", "Orijinal Operator", "Değiştirilen Değerler",
	},
	domain.KindMaintenance: {
		"ID", "Tarih", "Motor", "Durum", "Öncelik", "Açıklama", "İşlemler",
		"Personel", "Bakım Türü", "Kayıt Zamanı",
	},
	domain.KindFault: {
		"ID", "Tarih", "Motor", "Arıza Türü", "Açıklama", "Çözüm", "Personel",
		"Durum", "Kayıt Zamanı",
	},
	domain.KindShift: {
		"ID", "Tarih", "Vardiya", "Sorumlu Personel", "Yapılan İşler",
		"Notlar", "Kayıt Zamanı",
	},
}

// fieldTables: header -> internal field name, per kind. "Saat" is the clock
// time on the steam sheet but the hour slot on the hourly sheet, which is why
// the tables are per kind in the first place.
var fieldTables = map[domain.Kind]map[string]string{
	domain.KindSteam: {
		"ID":                    "id",
		"Tarih":                 "date",
		"Saat":                  "time",
		"Buhar Miktarı (ton)":   "amount",
		"Notlar":                "notes",
		"Kaydeden":              "recordedBy",
		"Kayıt Zamanı":          "timestamp",
		"Güncelleme Zamanı":     "updatedAt",
		"Güncelleyen":           "editedBy",
		"Orijinal Kayıt Zamanı": "originalTimestamp",
		"Orijinal Operator":     "originalOperator",
	},
	domain.KindHourly: {
		"ID":                     "id",
		"Tarih":                  "date",
		"Vardiya":                "shift",
		"Saat":                   "hour",
		"Aktif Enerji (MWh)":     "aktif",
		"Reaktif Enerji (kVArh)": "reaktif",
		"Aydem Aktif":            "aydemAktif",
		"Aydem Reaktif":          "aydemReaktif",
		"Operator":               "operator",
		"Kayıt Zamanı":           "timestamp",
		"Güncelleme Zamanı":      "updatedAt",
		"Güncelleyen":            "editedBy",
		"Orijinal Kayıt Zamanı":  "originalTimestamp",
		"Orijinal Operator":      "originalOperator",
		"Değiştirilen Değerler":  "changes",
	},
	domain.KindMaintenance: {
		"ID":           "id",
		"Tarih":        "date",
		"Motor":        "motor",
		"Durum":        "status",
		"Öncelik":      "priority",
		"Açıklama":     "description",
		"İşlemler":     "actions",
		"Personel":     "personnel",
		"Bakım Türü":   "entryType",
		"Kayıt Zamanı": "timestamp",
	},
	domain.KindFault: {
		"ID":           "id",
		"Tarih":        "date",
		"Motor":        "motor",
		"Arıza Türü":   "faultType",
		"Açıklama":     "description",
		"Çözüm":        "resolution",
		"Personel":     "personnel",
		"Durum":        "status",
		"Kayıt Zamanı": "timestamp",
	},
	domain.KindShift: {
		"ID":               "id",
		"Tarih":            "date",
		"Vardiya":          "shift",
		"Sorumlu Personel": "personnel",
		"Yapılan İşler":    "tasks",
		"Notlar":           "notes",
		"Kayıt Zamanı":     "timestamp",
	},
}

// Headers returns the deployed header order for a kind.
func Headers(kind domain.Kind) []string {
	h := headerTables[kind]
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// FieldFor resolves a header to its internal field name. Unknown headers map
// to "" and are carried nowhere, matching how hand-added sheet columns are
// silently ignored.
func FieldFor(kind domain.Kind, header string) string {
	return fieldTables[kind][header]
}
