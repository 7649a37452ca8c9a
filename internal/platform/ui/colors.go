// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Paleta "cielo": tonos de plumaje y cielo abierto

var (
	// TalonAmber - elementos principales, headers
	TalonAmber = pterm.NewRGB(242, 169, 59)

	// SkyCyan - resultados encontrados, acentos
	SkyCyan = pterm.NewRGB(0, 190, 214)

	// StormGray - texto secundario, fuentes sin resultado
	StormGray = pterm.NewRGB(110, 110, 110)

	// DuskRed - errores
	DuskRed = pterm.NewRGB(214, 52, 71)
)

// Estilos preconfigurados para diferentes contextos
var (
	StylePrimary   = TalonAmber.ToRGBStyle()
	StyleSuccess   = SkyCyan.ToRGBStyle()
	StyleSecondary = StormGray.ToRGBStyle()
	StyleError     = DuskRed.ToRGBStyle()
)
