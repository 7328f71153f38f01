package sim

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Profile holds the tunable parameters of a simulation run. A Lua script
// can override any of them; absent values keep the defaults.
type Profile struct {
	// DispenseRates maps 1-based cell id to grams dispensed per second
	// while the cell is dispensing.
	DispenseRates map[int]float64

	// GlueTypes maps 1-based cell id to the loaded adhesive product.
	GlueTypes map[int]string

	// RefillThresholdGrams triggers a simulated cartridge swap when a
	// cell's weight falls below it.
	RefillThresholdGrams float64

	// DispenseSeconds is how long a cell dispenses before going idle.
	DispenseSeconds float64

	// IdleSeconds is how long a cell idles between dispense cycles.
	IdleSeconds float64
}

// DefaultProfile returns the built-in simulation parameters.
func DefaultProfile() Profile {
	return Profile{
		DispenseRates:        map[int]float64{},
		GlueTypes:            map[int]string{},
		RefillThresholdGrams: 200,
		DispenseSeconds:      8,
		IdleSeconds:          4,
	}
}

// DispenseRate returns the dispense rate for a cell, defaulting to
// 25 g/s for cells the profile does not mention.
func (p Profile) DispenseRate(cellID int) float64 {
	if r, ok := p.DispenseRates[cellID]; ok {
		return r
	}
	return 25
}

// GlueType returns the adhesive for a cell, defaulting to a generic name.
func (p Profile) GlueType(cellID int) string {
	if g, ok := p.GlueTypes[cellID]; ok {
		return g
	}
	return fmt.Sprintf("SIM-%d", cellID)
}

// LoadProfile runs a Lua script and reads the profile it describes. The
// script sets globals:
//
//	dispense_rates = { [1] = 30, [2] = 12.5 }
//	glue_types = { [1] = "EP-310" }
//	refill_threshold = 150
//	dispense_seconds = 10
//	idle_seconds = 5
//
// Unset globals keep their defaults.
func LoadProfile(path string) (Profile, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return Profile{}, fmt.Errorf("running profile script %s: %w", path, err)
	}
	return readProfile(L)
}

// LoadProfileString runs an inline Lua script. Used by tests.
func LoadProfileString(script string) (Profile, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(script); err != nil {
		return Profile{}, fmt.Errorf("running profile script: %w", err)
	}
	return readProfile(L)
}

func readProfile(L *lua.LState) (Profile, error) {
	p := DefaultProfile()

	if tbl, ok := L.GetGlobal("dispense_rates").(*lua.LTable); ok {
		tbl.ForEach(func(k, v lua.LValue) {
			cell, cok := k.(lua.LNumber)
			rate, rok := v.(lua.LNumber)
			if cok && rok {
				p.DispenseRates[int(cell)] = float64(rate)
			}
		})
	}

	if tbl, ok := L.GetGlobal("glue_types").(*lua.LTable); ok {
		tbl.ForEach(func(k, v lua.LValue) {
			cell, cok := k.(lua.LNumber)
			glue, gok := v.(lua.LString)
			if cok && gok {
				p.GlueTypes[int(cell)] = string(glue)
			}
		})
	}

	if n, ok := L.GetGlobal("refill_threshold").(lua.LNumber); ok {
		p.RefillThresholdGrams = float64(n)
	}
	if n, ok := L.GetGlobal("dispense_seconds").(lua.LNumber); ok {
		p.DispenseSeconds = float64(n)
	}
	if n, ok := L.GetGlobal("idle_seconds").(lua.LNumber); ok {
		p.IdleSeconds = float64(n)
	}

	if p.RefillThresholdGrams < 0 || p.DispenseSeconds <= 0 || p.IdleSeconds <= 0 {
		return Profile{}, fmt.Errorf("profile script produced invalid timing values")
	}

	return p, nil
}
