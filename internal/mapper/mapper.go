package mapper

import (
	"kojen-data/internal/dateutil"
	"kojen-data/internal/domain"
)

// Options injects the two ambient values outbound mapping may need to
// default: a fresh record ID and "now" in the display date-time format.
// Keeping them injected keeps both directions reproducible in tests.
type Options struct {
	NewID func() string
	Now   func() string
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return ""
}

func (o Options) now() string {
	if o.Now != nil {
		return o.Now()
	}
	return ""
}

// Outbound renders a record as one value per header, in header order. Fields
// the record does not define come out as empty strings; a missing ID is
// replaced with a freshly generated one and a missing creation timestamp with
// "now", mirroring what the web app would otherwise fill server-side.
func Outbound(r domain.Record, headers []string, opts Options) []string {
	fields := r.Fields()
	row := make([]string, len(headers))
	for i, h := range headers {
		name := FieldFor(r.Kind(), h)
		v := fields[name]
		switch name {
		case "id":
			if v == "" {
				v = opts.newID()
			}
		case "timestamp":
			if v == "" {
				v = opts.now()
			}
		}
		row[i] = v
	}
	return row
}

// Inbound converts one fetched row, already expanded into a header-keyed
// mapping, into a typed record. Date and time columns go through the
// normalizer (sheet serial artifacts and day-first shapes included), numeric
// columns parse leniently, and provenance columns carry through unchanged. A
// row can be arbitrarily incomplete without erroring.
func Inbound(kind domain.Kind, row map[string]string, opts Options) domain.Record {
	fields := make(map[string]string, len(row))
	for header, raw := range row {
		name := FieldFor(kind, header)
		if name == "" {
			continue
		}
		switch name {
		case "date":
			fields[name] = dateutil.ISODate(raw)
		case "time", "hour":
			fields[name] = dateutil.TimeOnly(raw)
		default:
			fields[name] = raw
		}
	}

	// The pages preferred the client-side timestamp, then the update time,
	// then "now" when redisplaying a fetched row.
	if fields["timestamp"] == "" {
		if fields["updatedAt"] != "" {
			fields["timestamp"] = fields["updatedAt"]
		} else {
			fields["timestamp"] = opts.now()
		}
	}

	return domain.FromFields(kind, fields)
}
