package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Run opens a window configured by cfg and runs stage until it is destroyed
// or a frame fails. A normal end returns nil.
func Run(stage *Stage, cfg WindowConfig) error {
	applyWindowConfig(cfg)
	if cfg.Width > 0 && cfg.Height > 0 {
		stage.Resize(cfg.Width, cfg.Height)
	}

	err := ebiten.RunGameWithOptions(stage, &ebiten.RunGameOptions{
		ScreenTransparent: cfg.Transparent,
	})
	if err != nil && !IsTermination(err) {
		return err
	}
	return nil
}

func applyWindowConfig(cfg WindowConfig) {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowDecorated(!cfg.Undecorated)
	ebiten.SetWindowFloating(cfg.Floating)
	ebiten.SetWindowMousePassthrough(cfg.MousePassthrough)
}
