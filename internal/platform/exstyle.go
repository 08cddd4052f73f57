package platform

// Extended window styles used for click-through on Windows
const (
	WS_EX_LAYERED     = 0x00080000
	WS_EX_TRANSPARENT = 0x00000020
)

// clickThroughExStyle returns the extended style for the requested input
// mode. WS_EX_TRANSPARENT only passes hits through on a layered window, so
// WS_EX_LAYERED is added and never removed. needsAlpha reports that the
// layered bit is new: a layered window is not drawn until its attributes
// are set.
func clickThroughExStyle(exStyle uintptr, clickThrough bool) (newStyle uintptr, needsAlpha bool) {
	newStyle = exStyle | WS_EX_LAYERED
	if clickThrough {
		newStyle |= WS_EX_TRANSPARENT
	} else {
		newStyle &^= WS_EX_TRANSPARENT
	}
	return newStyle, exStyle&WS_EX_LAYERED == 0
}
