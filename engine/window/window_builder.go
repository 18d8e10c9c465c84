package window

// WindowBuilderOption adjusts a window before it is opened.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) { w.title = title }
}

// WithWidth sets the requested width in screen coordinates. The framebuffer may end up larger on
// high-DPI displays.
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) { w.width = width }
}

// WithHeight sets the requested height in screen coordinates.
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) { w.height = height }
}

// WithMinSize bounds how small the user can drag the window.
//
// Parameters:
//   - width, height: the lower bound
//
// Returns:
//   - WindowBuilderOption: the option
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) { w.minWidth, w.minHeight = width, height }
}

// WithMaxSize bounds how large the user can drag the window.
//
// Parameters:
//   - width, height: the upper bound
//
// Returns:
//   - WindowBuilderOption: the option
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) { w.maxWidth, w.maxHeight = width, height }
}

// WithResizable turns user resizing on (the default) or off.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) { w.resizable = resizable }
}
