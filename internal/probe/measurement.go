// internal/probe/measurement.go
package probe

import (
	"time"
)

// Register block geometry.
// The probe exposes all channels as one contiguous holding register block.
const (
	RegisterStart uint16 = 0
	RegisterCount        = 13
)

// Register indices inside the block.
const (
	RegOxygenConcentration = iota
	RegOxygenSaturation
	RegTemperature
	RegPH
	RegConductivity
	RegSalinity
	RegDissolvedSolids
	RegSpecificGravity
	RegOxidationReductionPotential
	RegTurbidity
	RegHeight
	RegLatitude
	RegLongitude
)

const (
	celsiusToKelvin = 273.15

	// tdsFactor converts conductivity (uS/cm) into total dissolved solids (mg/L).
	// Applied to the PSS-78 conductivity, so TDS carries the same offset from
	// the probe's own dissolved solids value as Conductivity does.
	tdsFactor = 0.65
)

// Measurement is one decoded probe sample.
// Values are SI unless stated otherwise. It is a plain value: copy it freely.
type Measurement struct {
	Time time.Time `cbor:"1,keyasint" json:"time"`

	OxygenConcentration         float64 `cbor:"2,keyasint" json:"oxygen_concentration"` // kg/m3
	OxygenSaturation            float64 `cbor:"3,keyasint" json:"oxygen_saturation"`    // fraction
	Temperature                 float64 `cbor:"4,keyasint" json:"temperature"`          // K
	PH                          float64 `cbor:"5,keyasint" json:"ph"`
	RawConductivity             float64 `cbor:"6,keyasint" json:"raw_conductivity"`
	Conductivity                float64 `cbor:"7,keyasint" json:"conductivity"` // S/m
	Salinity                    float64 `cbor:"8,keyasint" json:"salinity"`     // kg/kg
	RawDissolvedSolids          float64 `cbor:"9,keyasint" json:"raw_dissolved_solids"`
	DissolvedSolids             float64 `cbor:"10,keyasint" json:"dissolved_solids"` // kg/L
	SpecificGravity             float64 `cbor:"11,keyasint" json:"specific_gravity"`
	OxidationReductionPotential float64 `cbor:"12,keyasint" json:"oxidation_reduction_potential"` // V
	Turbidity                   float64 `cbor:"13,keyasint" json:"turbidity"`                     // NTU
	Height                      float64 `cbor:"14,keyasint" json:"height"`
	Latitude                    float64 `cbor:"15,keyasint" json:"latitude"`
	Longitude                   float64 `cbor:"16,keyasint" json:"longitude"`

	// Registers is the raw block as read from the device.
	Registers [RegisterCount]uint16 `cbor:"17,keyasint" json:"registers"`
}

// Decode converts a raw register block into a Measurement stamped with at.
// Registers are big-endian signed 16-bit values.
func Decode(regs [RegisterCount]uint16, at time.Time) Measurement {
	v := func(i int) float64 { return float64(int16(regs[i])) }

	temperatureC := v(RegTemperature) / 100
	salinityPPT := v(RegSalinity) / 100
	// Conductivity is derived from salinity and temperature with PSS-78, not
	// taken from the conductivity register. It reads about 1.8% above the
	// value the probe firmware reports for the same sample.
	conductivityMS := ConductivityFromSalinity(salinityPPT, temperatureC) // mS/cm
	conductivityUS := conductivityMS * 1e3

	return Measurement{
		Time: at,

		OxygenConcentration:         v(RegOxygenConcentration) / 100 * 1e-6 / 1e-3,
		OxygenSaturation:            v(RegOxygenSaturation) * 1e-4,
		Temperature:                 temperatureC + celsiusToKelvin,
		PH:                          v(RegPH) / 100,
		RawConductivity:             v(RegConductivity),
		Conductivity:                conductivityUS * 1e-6 / 1e-2,
		Salinity:                    salinityPPT * 1e-3,
		RawDissolvedSolids:          v(RegDissolvedSolids),
		DissolvedSolids:             conductivityUS * tdsFactor / 1e6,
		SpecificGravity:             v(RegSpecificGravity) / 100,
		OxidationReductionPotential: v(RegOxidationReductionPotential) * 1e-3,
		Turbidity:                   v(RegTurbidity),
		Height:                      v(RegHeight),
		Latitude:                    v(RegLatitude) / 100,
		Longitude:                   v(RegLongitude) / 100,

		Registers: regs,
	}
}

// Channels returns the named numeric channels of m.
// Used by sinks that publish one field per channel.
func (m Measurement) Channels() map[string]float64 {
	return map[string]float64{
		"oxygen_concentration":          m.OxygenConcentration,
		"oxygen_saturation":             m.OxygenSaturation,
		"temperature":                   m.Temperature,
		"ph":                            m.PH,
		"raw_conductivity":              m.RawConductivity,
		"conductivity":                  m.Conductivity,
		"salinity":                      m.Salinity,
		"raw_dissolved_solids":          m.RawDissolvedSolids,
		"dissolved_solids":              m.DissolvedSolids,
		"specific_gravity":              m.SpecificGravity,
		"oxidation_reduction_potential": m.OxidationReductionPotential,
		"turbidity":                     m.Turbidity,
		"height":                        m.Height,
		"latitude":                      m.Latitude,
		"longitude":                     m.Longitude,
	}
}

// unpackRegisters splits a big-endian payload into the register block.
func unpackRegisters(data []byte) ([RegisterCount]uint16, error) {
	var out [RegisterCount]uint16
	if len(data) < 2*RegisterCount {
		return out, &TransientError{Err: ErrShortResponse}
	}
	for i := 0; i < RegisterCount; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}
