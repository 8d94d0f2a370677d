package game

// labelEase is the fraction of the remaining distance the hex label alpha
// covers each frame.
const labelEase = 0.15

// labelFader eases the hovered cell's label in. It belongs to the renderer;
// the board never sees it.
type labelFader struct {
	cell  string
	alpha float64
}

// Step advances one frame for the currently hovered cell ("" for none) and
// returns the alpha to draw its label with.
func (f *labelFader) Step(hovered string) float64 {
	if hovered != f.cell {
		f.cell = hovered
		f.alpha = 0
	}
	target := 0.0
	if hovered != "" {
		target = 1
	}
	f.alpha += (target - f.alpha) * labelEase
	return f.alpha
}
