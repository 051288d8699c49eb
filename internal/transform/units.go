package transform

// Unit labels as they appear in the source spreadsheets.
const (
	// UnitStoppages counts sick-leave stoppages, canonical magnitude: thousands.
	UnitStoppages = "Nombre d'arrêts\n(en milliers)"

	// UnitDays counts compensated days, canonical magnitude: millions.
	UnitDays = "Nombre de jours d'arrêt\n(en millions)"

	// UnitAmount is the amount paid, canonical magnitude: billions of euros.
	UnitAmount = "Montant des IJ\n(en Md€)"
)

// unitDivisors maps a unit label to the divisor taking raw values to the
// canonical magnitude. It is the only place where raw and canonical scales
// are reconciled.
var unitDivisors = map[string]float64{
	UnitAmount:    1e9,
	UnitStoppages: 1e3,
	UnitDays:      1e6,
}

// Normalize converts a raw value to the canonical magnitude of unit.
// Unknown units pass through unchanged.
func Normalize(unit string, raw float64) float64 {
	if d, ok := unitDivisors[unit]; ok {
		return raw / d
	}
	return raw
}
